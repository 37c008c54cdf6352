package symbolic

import (
	"fmt"
	"sort"
)

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) []string {
	set := map[string]struct{}{}
	collectSymbols(e, set)
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		if v.name != "pi" {
			out[v.name] = struct{}{}
		}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// Has reports whether the symbol varName occurs in e.
func Has(e Expr, varName string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == varName
	case *Add:
		for _, t := range v.terms {
			if Has(t, varName) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if Has(f, varName) {
				return true
			}
		}
	case *Pow:
		return Has(v.base, varName) || Has(v.exp, varName)
	case *Func:
		return Has(v.arg, varName)
	}
	return false
}

// ============================================================
// Polynomial utilities
// ============================================================

// maxDegree bounds the degrees Degree is willing to report.
const maxDegree = 1 << 20

// Degree returns the degree of a polynomial in varName (0 for anything
// else). It returns -1 when the degree exceeds maxDegree, so a huge
// exponent is never mistaken for a small one.
func Degree(expr Expr, varName string) int {
	switch v := expr.Simplify().(type) {
	case *Sym:
		if v.name == varName {
			return 1
		}
	case *Pow:
		n, ok := v.exp.(*Num)
		if !ok || !n.IsInteger() || !n.IsPositive() {
			return 0
		}
		d := Degree(v.base, varName)
		if d <= 0 {
			return d
		}
		k, ok := smallPositive(n, maxDegree)
		if !ok || int64(d)*k > maxDegree {
			return -1
		}
		return d * int(k)
	case *Add:
		maxDeg := 0
		for _, t := range v.terms {
			d := Degree(t, varName)
			if d < 0 {
				return -1
			}
			if d > maxDeg {
				maxDeg = d
			}
		}
		return maxDeg
	case *Mul:
		total := 0
		for _, f := range v.factors {
			d := Degree(f, varName)
			if d < 0 {
				return -1
			}
			total += d
			if total > maxDegree {
				return -1
			}
		}
		return total
	}
	return 0
}

// IsPolynomial reports whether e is a polynomial in varName whose
// coefficients do not depend on varName.
func IsPolynomial(e Expr, varName string) bool {
	if !Has(e, varName) {
		return true
	}
	switch v := e.(type) {
	case *Sym:
		return true
	case *Add:
		for _, t := range v.terms {
			if !IsPolynomial(t, varName) {
				return false
			}
		}
		return true
	case *Mul:
		for _, f := range v.factors {
			if !IsPolynomial(f, varName) {
				return false
			}
		}
		return true
	case *Pow:
		n, ok := v.exp.(*Num)
		return ok && n.IsInteger() && n.IsPositive() && IsPolynomial(v.base, varName)
	}
	return false
}

// linearIn matches e = a*x + b with a, b free of x.
func linearIn(e Expr, x string) (a, b Expr, ok bool) {
	d := Diff(e, x)
	if isNumEqual(d, 0) || Has(d, x) {
		return nil, nil, false
	}
	return d, Sub(e, x, N(0)), true
}

// ============================================================
// Integration (rule-based)
// ============================================================

const (
	maxIntegrateDepth = 6
	maxPartsDegree    = 12
)

// Integrate returns an antiderivative of expr with respect to varName,
// without the constant of integration. Logarithms are taken of the bare
// argument: the antiderivative of 1/x is ln(x).
//
// Rules, tried in order: constants, sums, constant factors, power rule with
// linear bases, exponential/trigonometric/hyperbolic/logarithmic tables with
// linear arguments, polynomial times exp/sin/cos by repeated parts,
// exp times sin/cos, x^n*ln(x), partial fractions over linear factors,
// derivative-divides substitution and finally expansion.
func Integrate(expr Expr, varName string) (Expr, error) {
	e := expr.Simplify()
	r, ok := integrate(e, varName, 0)
	if !ok {
		return nil, fmt.Errorf("integrate %s d%s: %w", e, varName, ErrNoClosedForm)
	}
	return Simplify(r), nil
}

func integrate(e Expr, x string, depth int) (Expr, bool) {
	if depth > maxIntegrateDepth {
		return nil, false
	}
	if !Has(e, x) {
		return MulOf(e, S(x)), true
	}
	switch v := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(v, N(2))), true
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			r, ok := integrate(t, x, depth)
			if !ok {
				return nil, false
			}
			terms[i] = r
		}
		return AddOf(terms...), true
	case *Mul:
		if r, ok := integrateProduct(v, x, depth); ok {
			return r, true
		}
	case *Pow:
		if r, ok := integratePow(v, x, depth); ok {
			return r, true
		}
	case *Func:
		if r, ok := integrateFunc(v, x); ok {
			return r, true
		}
	}
	if r, ok := substitute(e, x); ok {
		return r, true
	}
	if ex := Expand(e); !ex.Equal(e) {
		return integrate(ex, x, depth+1)
	}
	return nil, false
}

func integrateProduct(m *Mul, x string, depth int) (Expr, bool) {
	var consts, deps []Expr
	for _, f := range m.factors {
		if Has(f, x) {
			deps = append(deps, f)
		} else {
			consts = append(consts, f)
		}
	}
	if len(consts) > 0 {
		r, ok := integrate(productOf(deps), x, depth)
		if !ok {
			return nil, false
		}
		return MulOf(append(consts, r)...), true
	}
	if r, ok := integrateByParts(deps, x); ok {
		return r, true
	}
	if r, ok := integrateExpTrig(deps, x); ok {
		return r, true
	}
	if r, ok := integrateLogPower(deps, x); ok {
		return r, true
	}
	return integrateRational(deps, x)
}

func productOf(fs []Expr) Expr {
	if len(fs) == 1 {
		return fs[0]
	}
	return MulOf(fs...)
}

func integratePow(p *Pow, x string, depth int) (Expr, bool) {
	baseHas, expHas := Has(p.base, x), Has(p.exp, x)
	switch {
	case baseHas && !expHas:
		if a, _, ok := linearIn(p.base, x); ok {
			if isNumEqual(p.exp, -1) {
				return MulOf(PowOf(a, N(-1)), LnOf(p.base)), true
			}
			n1 := AddOf(p.exp, N(1))
			return MulOf(PowOf(MulOf(a, n1), N(-1)), PowOf(p.base, n1)), true
		}
		if _, ok := smallPositive(p.exp, maxExpandPower); ok {
			if ex := Expand(p); !ex.Equal(p) {
				return integrate(ex, x, depth+1)
			}
		}
		if isNumEqual(p.exp, -1) {
			if r, ok := integrateRational([]Expr{p}, x); ok {
				return r, true
			}
			return integrateQuadraticReciprocal(p.base, x)
		}
	case !baseHas && expHas:
		if a, _, ok := linearIn(p.exp, x); ok {
			return MulOf(p, PowOf(MulOf(a, LnOf(p.base)), N(-1))), true
		}
	}
	return nil, false
}

func integrateFunc(f *Func, x string) (Expr, bool) {
	a, _, ok := linearIn(f.arg, x)
	if !ok {
		return nil, false
	}
	anti, ok := antiderivative(f.name, f.arg)
	if !ok {
		return nil, false
	}
	return MulOf(PowOf(a, N(-1)), anti), true
}

// antiderivative returns ∫ name(u) du as an expression in u.
func antiderivative(name string, u Expr) (Expr, bool) {
	oneMinusSq := AddOf(N(1), MulOf(N(-1), PowOf(u, N(2))))
	switch name {
	case "exp":
		return ExpOf(u), true
	case "sin":
		return MulOf(N(-1), CosOf(u)), true
	case "cos":
		return SinOf(u), true
	case "tan":
		return MulOf(N(-1), LnOf(CosOf(u))), true
	case "sinh":
		return CoshOf(u), true
	case "cosh":
		return SinhOf(u), true
	case "tanh":
		return LnOf(CoshOf(u)), true
	case "ln":
		return AddOf(MulOf(u, LnOf(u)), MulOf(N(-1), u)), true
	case "atan":
		return AddOf(MulOf(u, AtanOf(u)), MulOf(F(-1, 2), LnOf(AddOf(N(1), PowOf(u, N(2)))))), true
	case "asin":
		return AddOf(MulOf(u, AsinOf(u)), SqrtOf(oneMinusSq)), true
	case "acos":
		return AddOf(MulOf(u, AcosOf(u)), MulOf(N(-1), SqrtOf(oneMinusSq))), true
	}
	return nil, false
}

// isPartsKernel matches exp, sin, cos, sinh, cosh of a linear argument and
// b^(linear): factors whose repeated antiderivatives stay in closed form.
func isPartsKernel(f Expr, x string) bool {
	switch v := f.(type) {
	case *Func:
		switch v.name {
		case "exp", "sin", "cos", "sinh", "cosh":
			_, _, ok := linearIn(v.arg, x)
			return ok
		}
	case *Pow:
		if !Has(v.base, x) {
			_, _, ok := linearIn(v.exp, x)
			return ok
		}
	}
	return false
}

// integrateByParts handles P(x)*g(x) for a polynomial P and a kernel g using
// the tabular form ∫P g = P G1 - P' G2 + P'' G3 - ...
func integrateByParts(deps []Expr, x string) (Expr, bool) {
	kernel := -1
	for i, f := range deps {
		if isPartsKernel(f, x) {
			if kernel >= 0 {
				return nil, false
			}
			kernel = i
		}
	}
	if kernel < 0 {
		return nil, false
	}
	rest := make([]Expr, 0, len(deps)-1)
	for i, f := range deps {
		if i != kernel {
			rest = append(rest, f)
		}
	}
	poly := productOf(rest)
	if !IsPolynomial(poly, x) {
		return nil, false
	}
	deg := Degree(poly, x)
	if deg < 0 || deg > maxPartsDegree {
		return nil, false
	}
	g := deps[kernel]
	var terms []Expr
	sign := int64(1)
	deriv := poly
	for k := 0; k <= deg && !isNumEqual(deriv, 0); k++ {
		next, ok := integrate(g, x, 0)
		if !ok {
			return nil, false
		}
		g = next
		terms = append(terms, MulOf(N(sign), deriv, g))
		sign = -sign
		deriv = Diff(deriv, x)
	}
	return AddOf(terms...), true
}

// integrateExpTrig handles exp(a*x + b) * sin(c*x + d) and the cosine
// variant, whose parts integration cycles back to the original integral:
//
//	∫e^u sin v = e^u (a sin v - c cos v) / (a^2 + c^2)
//	∫e^u cos v = e^u (a cos v + c sin v) / (a^2 + c^2)
func integrateExpTrig(deps []Expr, x string) (Expr, bool) {
	if len(deps) != 2 {
		return nil, false
	}
	var ex, trig *Func
	for _, f := range deps {
		fn, ok := f.(*Func)
		if !ok {
			return nil, false
		}
		switch fn.name {
		case "exp":
			ex = fn
		case "sin", "cos":
			trig = fn
		}
	}
	if ex == nil || trig == nil {
		return nil, false
	}
	a, _, ok := linearIn(ex.arg, x)
	if !ok {
		return nil, false
	}
	c, _, ok := linearIn(trig.arg, x)
	if !ok {
		return nil, false
	}
	sin, cos := SinOf(trig.arg), CosOf(trig.arg)
	var inner Expr
	if trig.name == "sin" {
		inner = AddOf(MulOf(a, sin), MulOf(N(-1), c, cos))
	} else {
		inner = AddOf(MulOf(a, cos), MulOf(c, sin))
	}
	norm := AddOf(PowOf(a, N(2)), PowOf(c, N(2)))
	return MulOf(ex, inner, PowOf(norm, N(-1))), true
}

// linearFactor is a*x + b appearing to the power -1 in a rational integrand.
type linearFactor struct {
	expr, slope, root Expr
}

// integrateRational handles N(x) / (L1 L2 ... Lk) for distinct linear
// factors Li and a polynomial N of degree below k, by partial fractions:
//
//	N / ∏L = Σ ci / Li,  ci = N(ri) / ∏_{j≠i} Lj(ri)
//
// Quadratic denominators with rational roots are split into linear factors
// first. Repeated and irreducible factors are not handled.
func integrateRational(deps []Expr, x string) (Expr, bool) {
	var (
		num   []Expr
		den   []linearFactor
		scale Expr = N(1)
	)
	for _, f := range deps {
		p, ok := f.(*Pow)
		if !ok || !isNumEqual(p.exp, -1) {
			if !IsPolynomial(f, x) {
				return nil, false
			}
			num = append(num, f)
			continue
		}
		if a, b, ok := linearIn(p.base, x); ok {
			den = append(den, linearFactor{expr: p.base, slope: a, root: rootOf(a, b)})
			continue
		}
		lead, roots, ok := rationalQuadraticRoots(p.base, x)
		if !ok {
			return nil, false
		}
		scale = MulOf(scale, PowOf(lead, N(-1)))
		for _, r := range roots {
			den = append(den, linearFactor{expr: AddOf(S(x), MulOf(N(-1), r)), slope: N(1), root: r})
		}
	}
	if len(den) < 2 {
		return nil, false
	}
	var numExpr Expr = N(1)
	if len(num) > 0 {
		numExpr = productOf(num)
	}
	if d := Degree(numExpr, x); d < 0 || d >= len(den) {
		return nil, false
	}

	terms := make([]Expr, 0, len(den))
	for i, li := range den {
		rest := []Expr{Sub(numExpr, x, li.root)}
		for j, lj := range den {
			if j == i {
				continue
			}
			v := Sub(lj.expr, x, li.root)
			if isNumEqual(v, 0) {
				return nil, false
			}
			rest = append(rest, PowOf(v, N(-1)))
		}
		ci := MulOf(rest...)
		if isNumEqual(ci, 0) {
			continue
		}
		terms = append(terms, MulOf(ci, PowOf(li.slope, N(-1)), LnOf(li.expr)))
	}
	return MulOf(scale, AddOf(terms...)), true
}

// rootOf solves a*x + b = 0.
func rootOf(a, b Expr) Expr {
	return MulOf(N(-1), b, PowOf(a, N(-1)))
}

// quadraticCoeffs reads a, b, c off a*x^2 + b*x + c with numeric
// coefficients, together with the discriminant b^2 - 4ac.
func quadraticCoeffs(e Expr, x string) (a, b, c, disc *Num, ok bool) {
	if !IsPolynomial(e, x) || Degree(e, x) != 2 {
		return nil, nil, nil, nil, false
	}
	d1 := Diff(e, x)
	if a, ok = Simplify(MulOf(F(1, 2), Diff(d1, x))).(*Num); !ok {
		return nil, nil, nil, nil, false
	}
	if b, ok = Sub(d1, x, N(0)).(*Num); !ok {
		return nil, nil, nil, nil, false
	}
	if c, ok = Sub(e, x, N(0)).(*Num); !ok {
		return nil, nil, nil, nil, false
	}
	if disc, ok = AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c)).(*Num); !ok {
		return nil, nil, nil, nil, false
	}
	return a, b, c, disc, true
}

// rationalQuadraticRoots splits a numeric quadratic a*x^2 + b*x + c with
// distinct rational roots, returning a and the two roots.
func rationalQuadraticRoots(e Expr, x string) (Expr, []Expr, bool) {
	a, b, _, dn, ok := quadraticCoeffs(e, x)
	if !ok || !dn.IsPositive() {
		return nil, nil, false
	}
	sq, ok := PowOf(dn, F(1, 2)).(*Num)
	if !ok {
		return nil, nil, false
	}
	twoA := PowOf(MulOf(N(2), a), N(-1))
	negB := MulOf(N(-1), b)
	return a, []Expr{
		MulOf(AddOf(negB, sq), twoA),
		MulOf(AddOf(negB, MulOf(N(-1), sq)), twoA),
	}, true
}

// integrateQuadraticReciprocal handles 1/(a*x^2 + b*x + c) when the
// quadratic has a double root or no real roots:
//
//	disc = 0:  -1 / (a (x + b/2a))
//	disc < 0:  2/s atan((2ax + b)/s),  s = sqrt(-disc)
func integrateQuadraticReciprocal(e Expr, x string) (Expr, bool) {
	a, b, _, disc, ok := quadraticCoeffs(e, x)
	if !ok {
		return nil, false
	}
	xs := S(x)
	switch {
	case disc.IsZero():
		shift := MulOf(b, PowOf(MulOf(N(2), a), N(-1)))
		return MulOf(N(-1), PowOf(MulOf(a, AddOf(xs, shift)), N(-1))), true
	case disc.IsNegative():
		s := SqrtOf(numNeg(disc))
		inv := PowOf(s, N(-1))
		return MulOf(N(2), inv, AtanOf(MulOf(AddOf(MulOf(N(2), a, xs), b), inv))), true
	}
	return nil, false
}

// integrateLogPower handles x^n * ln(x).
func integrateLogPower(deps []Expr, x string) (Expr, bool) {
	if len(deps) != 2 {
		return nil, false
	}
	var n Expr
	hasLog := false
	for _, f := range deps {
		switch v := f.(type) {
		case *Func:
			if v.name != "ln" || !isSymbol(v.arg, x) {
				return nil, false
			}
			hasLog = true
		case *Sym:
			n = N(1)
		case *Pow:
			if !isSymbol(v.base, x) || Has(v.exp, x) {
				return nil, false
			}
			n = v.exp
		default:
			return nil, false
		}
	}
	if !hasLog || n == nil {
		return nil, false
	}
	xs, lnx := S(x), LnOf(S(x))
	if isNumEqual(n, -1) {
		return MulOf(F(1, 2), PowOf(lnx, N(2))), true
	}
	n1 := AddOf(n, N(1))
	return AddOf(
		MulOf(PowOf(n1, N(-1)), PowOf(xs, n1), lnx),
		MulOf(N(-1), PowOf(n1, N(-2)), PowOf(xs, n1)),
	), true
}

func isSymbol(e Expr, name string) bool {
	s, ok := e.(*Sym)
	return ok && s.name == name
}

// substitution candidate: the integrand contains form = g(inner), and
// anti = ∫ g(u) du written in terms of inner.
type candidate struct {
	form, inner, anti Expr
}

// substitute applies derivative-divides: if e = k * g(u) * u' for a constant
// k, then ∫e = k * G(u).
func substitute(e Expr, x string) (Expr, bool) {
	for _, c := range candidates(e, x) {
		du := Diff(c.inner, x)
		if isNumEqual(du, 0) {
			continue
		}
		ratio := MulOf(e, PowOf(du, N(-1)), PowOf(c.form, N(-1)))
		k, ok := constantFactor(ratio, x)
		if !ok {
			continue
		}
		return MulOf(k, c.anti), true
	}
	return nil, false
}

func constantFactor(e Expr, x string) (Expr, bool) {
	if !Has(e, x) {
		return e, true
	}
	if ex := Expand(e); !Has(ex, x) {
		return ex, true
	}
	return nil, false
}

func candidates(e Expr, x string) []candidate {
	var out []candidate
	seen := map[string]bool{}
	add := func(c candidate) {
		key := c.form.String() + "|" + c.inner.String()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}
	var walk func(Expr)
	walk = func(n Expr) {
		switch v := n.(type) {
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			baseHas, expHas := Has(v.base, x), Has(v.exp, x)
			if baseHas && !expHas {
				var anti Expr
				if isNumEqual(v.exp, -1) {
					anti = LnOf(v.base)
				} else {
					n1 := AddOf(v.exp, N(1))
					anti = MulOf(PowOf(n1, N(-1)), PowOf(v.base, n1))
				}
				add(candidate{form: v, inner: v.base, anti: anti})
			}
			if !baseHas && expHas {
				add(candidate{form: v, inner: v.exp, anti: MulOf(v, PowOf(LnOf(v.base), N(-1)))})
			}
			walk(v.base)
			walk(v.exp)
		case *Func:
			if !Has(v.arg, x) {
				return
			}
			if anti, ok := antiderivative(v.name, v.arg); ok {
				add(candidate{form: v, inner: v.arg, anti: anti})
			}
			// u = f(x) itself: ∫u du = u^2/2.
			add(candidate{form: v, inner: v, anti: MulOf(F(1, 2), PowOf(v, N(2)))})
			walk(v.arg)
		}
	}
	walk(e)
	return out
}
