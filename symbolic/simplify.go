package symbolic

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

var (
	ErrNoClosedForm = errors.New("no closed-form antiderivative")
	ErrNoSolution   = errors.New("no solution")
	ErrNotLinear    = errors.New("equation is not linear in the unknown")
	ErrUndefined    = errors.New("expression is undefined (division by zero or non-real value)")
	ErrNotNumeric   = errors.New("expression has no numeric value")
)

// ============================================================
// Top-level convenience functions
// ============================================================

func String(e Expr) string { return e.String() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

// Simplify returns the smaller of the canonical and the expanded form of e.
// Ties keep the canonical form, which keeps quotients such as (C1 - x^4/4)/x intact.
func Simplify(e Expr) Expr {
	c := e.Simplify()
	x := Expand(c)
	if Complexity(x) < Complexity(c) {
		return x
	}
	return c
}

// Complexity counts the nodes of an expression tree.
func Complexity(e Expr) int {
	switch v := e.(type) {
	case *Add:
		n := 1
		for _, t := range v.terms {
			n += Complexity(t)
		}
		return n
	case *Mul:
		n := 1
		for _, f := range v.factors {
			n += Complexity(f)
		}
		return n
	case *Pow:
		return 1 + Complexity(v.base) + Complexity(v.exp)
	case *Func:
		return 1 + Complexity(v.arg)
	}
	return 1
}

// ============================================================
// Expansion
// ============================================================

const maxExpandPower = 12

func Expand(e Expr) Expr { return expandExpr(e.Simplify()).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return AddOf(terms...)
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := smallPositive(v.exp, maxExpandPower); ok {
			if _, isAdd := base.(*Add); isAdd {
				result := Expr(N(1))
				for i := int64(0); i < n; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(base, expandExpr(v.exp))
	case *Func:
		return funcOf(v.name, expandExpr(v.arg)).Simplify()
	}
	return e
}

// distribute multiplies two expanded expressions term by term. MulOf alone
// would fold equal sums back into a power.
func distribute(a, b Expr) Expr {
	at, bt := termsOf(a), termsOf(b)
	out := make([]Expr, 0, len(at)*len(bt))
	for _, p := range at {
		for _, q := range bt {
			out = append(out, expandExpr(MulOf(p, q)))
		}
	}
	return AddOf(out...)
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Power simplification
// ============================================================

// PowSimp combines powers aggressively: (b^e1)^e2 -> b^(e1*e2) and
// a^e * b^e -> (a*b)^e for non-integer e. Branch conditions are ignored.
func PowSimp(e Expr) Expr {
	switch v := e.Simplify().(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = PowSimp(t)
		}
		return AddOf(terms...)
	case *Pow:
		base := PowSimp(v.base)
		exp := PowSimp(v.exp)
		if inner, ok := base.(*Pow); ok {
			return PowOf(inner.base, MulOf(inner.exp, exp))
		}
		return PowOf(base, exp)
	case *Func:
		return funcOf(v.name, PowSimp(v.arg)).Simplify()
	case *Mul:
		type group struct {
			exp   Expr
			bases []Expr
		}
		groups := map[string]*group{}
		var order []string
		var others []Expr
		for _, f := range v.factors {
			f = PowSimp(f)
			p, ok := f.(*Pow)
			if !ok || isIntegerNum(p.exp) {
				others = append(others, f)
				continue
			}
			key := p.exp.String()
			g, seen := groups[key]
			if !seen {
				g = &group{exp: p.exp}
				groups[key] = g
				order = append(order, key)
			}
			g.bases = append(g.bases, p.base)
		}
		for _, key := range order {
			g := groups[key]
			if len(g.bases) == 1 {
				others = append(others, PowOf(g.bases[0], g.exp))
				continue
			}
			others = append(others, PowOf(MulOf(g.bases...), g.exp))
		}
		return MulOf(others...)
	default:
		return v
	}
}

func isIntegerNum(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsInteger()
}

// ============================================================
// Numeric evaluation
// ============================================================

// Round evaluates e numerically and rounds it to the given number of
// significant digits. The result renders as a decimal.
func Round(e Expr, digits int) (*Num, error) {
	if digits <= 0 {
		return nil, fmt.Errorf("round to %d digits: precision must be positive", digits)
	}
	v, ok := e.Eval()
	if !ok {
		return nil, fmt.Errorf("round %s: %w", e, ErrNotNumeric)
	}
	s := strconv.FormatFloat(v, 'g', digits, 64)
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("round %s: cannot represent %s", e, s)
	}
	return &Num{val: r, digits: digits}, nil
}

// Undefined reports whether e contains 0^k for k <= 0, a logarithm of a
// non-positive number, or an even root of a negative number.
func Undefined(e Expr) bool {
	switch v := e.(type) {
	case *Pow:
		if b, ok := v.base.(*Num); ok {
			if n, ok := v.exp.(*Num); ok {
				if b.IsZero() && !n.IsPositive() {
					return true
				}
				if b.IsNegative() && !n.IsInteger() {
					return true
				}
			}
		}
		return Undefined(v.base) || Undefined(v.exp)
	case *Func:
		if n, ok := v.arg.(*Num); ok && v.name == "ln" && !n.IsPositive() {
			return true
		}
		return Undefined(v.arg)
	case *Add:
		for _, t := range v.terms {
			if Undefined(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if Undefined(f) {
				return true
			}
		}
	}
	return false
}

// ============================================================
// Solvers
// ============================================================

// SolveLinear solves expr = 0 for varName, which must appear linearly.
func SolveLinear(expr Expr, varName string) (Expr, error) {
	expr = Simplify(expr)
	if Undefined(expr) {
		return nil, ErrUndefined
	}
	if !Has(expr, varName) {
		return nil, fmt.Errorf("%w: %s does not appear in %s = 0", ErrNoSolution, varName, expr)
	}
	a := Simplify(Diff(expr, varName))
	if Has(a, varName) {
		return nil, fmt.Errorf("%w: %s = 0", ErrNotLinear, expr)
	}
	if n, ok := a.(*Num); ok && n.IsZero() {
		return nil, fmt.Errorf("%w: %s = 0", ErrNoSolution, expr)
	}
	b := Sub(expr, varName, N(0))
	if Undefined(a) || Undefined(b) {
		return nil, ErrUndefined
	}
	return Simplify(MulOf(N(-1), b, PowOf(a, N(-1)))), nil
}
