// Package symbolic provides a deterministic symbolic math kernel.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Canonical constructors: equal expressions print identically
//   - Deterministic simplification and stable LaTeX output
//   - Just enough calculus to integrate first-order linear ODEs
//
// Every constructor (AddOf, MulOf, PowOf, ExpOf, ...) returns a canonical
// expression. Expressions are immutable and safe to share.
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (float64, bool)
	Equal(other Expr) bool
}

// ============================================================
// Num: exact rational number
// ============================================================

// Num is an exact rational. A positive digits value marks a number that was
// rounded for display; it still holds an exact rational, but renders as a
// decimal with that many significant figures.
type Num struct {
	val    *big.Rat
	digits int
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }

// Int64 returns the value when it is an integer that fits in an int64.
func (n *Num) Int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

// smallPositive matches a positive integer Num no larger than limit.
func smallPositive(e Expr, limit int64) (int64, bool) {
	n, ok := e.(*Num)
	if !ok || n.Approx() {
		return 0, false
	}
	k, ok := n.Int64()
	if !ok || k <= 0 || k > limit {
		return 0, false
	}
	return k, true
}
func (n *Num) Approx() bool          { return n.digits > 0 }

func (n *Num) Eval() (float64, bool) {
	f, _ := n.val.Float64()
	return f, !math.IsInf(f, 0) && !math.IsNaN(f)
}

func (n *Num) String() string {
	if n.digits > 0 {
		return formatDecimal(n)
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

// formatDecimal prints exactly n.digits significant figures, keeping
// trailing zeros (2 -> 2.00000) but not a bare trailing point (100. -> 100).
func formatDecimal(n *Num) string {
	f, _ := n.val.Float64()
	s := fmt.Sprintf("%#.*g", n.digits, f)
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		return strings.TrimSuffix(s[:i], ".") + s[i:]
	}
	return strings.TrimSuffix(s, ".")
}

func mergeDigits(a, b *Num) int {
	switch {
	case a.digits == 0:
		return b.digits
	case b.digits == 0:
		return a.digits
	case a.digits < b.digits:
		return a.digits
	}
	return b.digits
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val), digits: mergeDigits(a, b)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val), digits: mergeDigits(a, b)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val), digits: a.digits} }
func numAbs(a *Num) *Num    { return &Num{val: new(big.Rat).Abs(a.val), digits: a.digits} }

// numPow raises b to a numeric exponent when the result is an exact rational
// (or b is already a rounded value).
func numPow(b, e *Num) (*Num, bool) {
	digits := mergeDigits(b, e)
	if digits > 0 {
		bf, _ := b.Eval()
		ef, _ := e.Eval()
		r := math.Pow(bf, ef)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, false
		}
		v, ok := new(big.Rat).SetString(strconv.FormatFloat(r, 'g', digits, 64))
		if !ok {
			return nil, false
		}
		return &Num{val: v, digits: digits}, true
	}
	if e.IsInteger() {
		k := e.val.Num()
		if !k.IsInt64() || k.Int64() > maxExactPower || k.Int64() < -maxExactPower {
			return nil, false
		}
		if b.IsZero() && k.Sign() < 0 {
			return nil, false
		}
		return &Num{val: ratPowInt(b.val, k.Int64())}, true
	}
	q := e.val.Denom()
	if !q.IsInt64() || q.Int64() > maxRootDegree {
		return nil, false
	}
	deg := q.Int64()
	neg := b.IsNegative()
	if neg && deg%2 == 0 {
		return nil, false
	}
	abs := new(big.Rat).Abs(b.val)
	rn, ok := intRoot(abs.Num(), deg)
	if !ok {
		return nil, false
	}
	rd, ok := intRoot(abs.Denom(), deg)
	if !ok {
		return nil, false
	}
	root := new(big.Rat).SetFrac(rn, rd)
	if neg {
		root.Neg(root)
	}
	return numPow(&Num{val: root}, &Num{val: new(big.Rat).SetInt(e.val.Num())})
}

const (
	maxExactPower = 512
	maxRootDegree = 64
)

func ratPowInt(r *big.Rat, k int64) *big.Rat {
	neg := k < 0
	if neg {
		k = -k
	}
	e := big.NewInt(k)
	num := new(big.Int).Exp(r.Num(), e, nil)
	den := new(big.Int).Exp(r.Denom(), e, nil)
	if neg {
		num, den = den, num
		if den.Sign() < 0 {
			num.Neg(num)
			den.Neg(den)
		}
	}
	return new(big.Rat).SetFrac(num, den)
}

// intRoot returns the integer k-th root of n and whether it is exact.
func intRoot(n *big.Int, k int64) (*big.Int, bool) {
	if n.Sign() == 0 {
		return new(big.Int), true
	}
	one := big.NewInt(1)
	kk := big.NewInt(k)
	lo := big.NewInt(0)
	hi := new(big.Int).Lsh(one, uint(n.BitLen()/int(k)+1))
	for lo.Cmp(hi) < 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Add(mid, one)
		mid.Rsh(mid, 1)
		if new(big.Int).Exp(mid, kk, nil).Cmp(n) <= 0 {
			lo = mid
		} else {
			hi = mid.Sub(mid, one)
		}
	}
	return lo, new(big.Int).Exp(lo, kk, nil).Cmp(n) == 0
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return symbolLaTeX(s.name) }
func (s *Sym) Name() string   { return s.name }
func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name
}

func (s *Sym) Eval() (float64, bool) {
	if s.name == "pi" {
		return math.Pi, true
	}
	return 0, false
}

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value.Simplify()
	}
	return s
}

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// Pi is the circle constant.
var Pi = S("pi")

// Euler returns Euler's number e as exp(1).
func Euler() Expr { return ExpOf(N(1)) }

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numbers and collects like terms.
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	constant := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		c, rest := splitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		result = append(result, scale(c, rests[key]))
	}
	sortTerms(result)
	if !constant.IsZero() {
		result = append(result, constant)
	}
	switch len(result) {
	case 0:
		return constant
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.terms {
		switch {
		case i == 0:
			b.WriteString(t.String())
		case isNegativeTerm(t):
			b.WriteString(" - " + negate(t).String())
		default:
			b.WriteString(" + " + t.String())
		}
	}
	return b.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (float64, bool) {
	acc := 0.0
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return 0, false
		}
		acc += v
	}
	return finite(acc)
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }

// splitCoeff separates the numeric coefficient of a canonical term.
func splitCoeff(e Expr) (*Num, Expr) {
	switch v := e.(type) {
	case *Num:
		return v, N(1)
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			rest := v.factors[1:]
			if len(rest) == 1 {
				return c, rest[0]
			}
			return c, &Mul{factors: rest}
		}
	}
	return N(1), e
}

// scale rebuilds c*rest where rest is a canonical coefficient-free term.
func scale(c *Num, rest Expr) Expr {
	if c.IsOne() {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...)}
	}
	return &Mul{factors: []Expr{c, rest}}
}

// sortTerms orders terms by descending degree, then by their coefficient-free text.
func sortTerms(terms []Expr) {
	type keyed struct {
		e   Expr
		deg int
		key string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, rest := splitCoeff(t)
		ks[i] = keyed{e: t, deg: termDegree(rest), key: rest.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].deg != ks[j].deg {
			return ks[i].deg > ks[j].deg
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

func termDegree(e Expr) int {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok {
				if k, ok := n.Int64(); ok {
					return int(k)
				}
			}
		}
	case *Mul:
		d := 0
		for _, f := range v.factors {
			d += termDegree(f)
		}
		return d
	}
	return 0
}

func isNegativeTerm(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			return c.IsNegative()
		}
	}
	return false
}

func negate(e Expr) Expr { return MulOf(N(-1), e) }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds numbers, merges equal bases by
// adding exponents and folds every exp(...) factor into one.
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	type power struct {
		base Expr
		exps []Expr
	}
	coeff := N(1)
	powers := map[string]*power{}
	order := []string{}
	var expArgs []Expr
	for _, f := range flat {
		var base, exp Expr
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
			continue
		case *Func:
			if v.name == "exp" {
				expArgs = append(expArgs, v.arg)
				continue
			}
			base, exp = v, N(1)
		case *Pow:
			base, exp = v.base, v.exp
		default:
			base, exp = f, N(1)
		}
		key := base.String()
		p, seen := powers[key]
		if !seen {
			p = &power{base: base}
			powers[key] = p
			order = append(order, key)
		}
		p.exps = append(p.exps, exp)
	}
	if coeff.IsZero() {
		return coeff
	}

	factors := make([]Expr, 0, len(order)+1)
	regroup := false
	collect := func(r Expr) {
		switch v := r.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			regroup = true
			factors = append(factors, v.factors...)
		case *Func:
			if v.name == "exp" {
				regroup = true
			}
			factors = append(factors, v)
		default:
			factors = append(factors, r)
		}
	}
	for _, key := range order {
		p := powers[key]
		var exp Expr
		if len(p.exps) == 1 {
			exp = p.exps[0]
		} else {
			exp = AddOf(p.exps...)
		}
		collect(PowOf(p.base, exp))
	}
	if len(expArgs) > 0 {
		ex := ExpOf(sumOf(expArgs))
		if f, ok := ex.(*Func); ok && f.name == "exp" {
			factors = append(factors, f)
		} else {
			collect(ex)
			regroup = true
		}
	}
	if regroup {
		return MulOf(append([]Expr{coeff}, factors...)...)
	}
	if coeff.IsZero() {
		return coeff
	}
	if len(factors) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(factors))
	for i, e := range factors {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	for i := range ks {
		factors[i] = ks[i].e
	}

	if len(factors) == 1 {
		if coeff.IsOne() {
			return factors[0]
		}
		if add, ok := factors[0].(*Add); ok {
			terms := make([]Expr, len(add.terms))
			for i, t := range add.terms {
				terms[i] = MulOf(coeff, t)
			}
			return AddOf(terms...)
		}
	}
	if coeff.IsOne() {
		return &Mul{factors: factors}
	}
	return &Mul{factors: append([]Expr{coeff}, factors...)}
}

func sumOf(terms []Expr) Expr {
	switch len(terms) {
	case 0:
		return N(0)
	case 1:
		return terms[0].Simplify()
	}
	return AddOf(terms...)
}

func (m *Mul) String() string {
	fs := m.factors
	prefix := ""
	if c, ok := fs[0].(*Num); ok && c.IsNegOne() && len(fs) > 1 {
		prefix = "-"
		fs = fs[1:]
	}
	return prefix + strings.Join(factorStrings(fs), "*")
}

func factorString(f Expr) string {
	if _, ok := f.(*Add); ok {
		return "(" + f.String() + ")"
	}
	return f.String()
}

func factorStrings(fs []Expr) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = factorString(f)
	}
	return out
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors))
		others = append(others, dfi)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		terms[i] = MulOf(others...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (float64, bool) {
	acc := 1.0
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return 0, false
		}
		acc *= v
	}
	return finite(acc)
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }
func SqrtOf(arg Expr) Expr      { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	switch b := base.(type) {
	case *Num:
		if b.IsOne() {
			return N(1)
		}
		// 0^0 and 0^negative stay unevaluated; Undefined reports them.
		if b.IsZero() {
			if expIsNum && en.IsPositive() {
				return N(0)
			}
			return &Pow{base: b, exp: exp}
		}
		if expIsNum {
			if r, ok := numPow(b, en); ok {
				return r
			}
		}
	case *Pow:
		if expIsNum && en.IsInteger() {
			return PowOf(b.base, MulOf(b.exp, en))
		}
	case *Func:
		if b.name == "exp" {
			return ExpOf(MulOf(b.arg, exp))
		}
	case *Mul:
		if expIsNum && en.IsInteger() {
			fs := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				fs[i] = PowOf(f, en)
			}
			return MulOf(fs...)
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	if needsBaseParens(p.base) {
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	switch e := p.exp.(type) {
	case *Sym:
	case *Num:
		if !e.IsInteger() || e.IsNegative() || e.Approx() {
			expStr = "(" + expStr + ")"
		}
	default:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func needsBaseParens(b Expr) bool {
	switch v := b.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger() || v.Approx()
	}
	return false
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if !Has(p.exp, varName) {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if !Has(p.base, varName) {
		return MulOf(p, LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(p, AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (float64, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return 0, false
	}
	return finite(math.Pow(b, e))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr   { return funcOf("ln", arg).Simplify() }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }

var oddFuncs = map[string]bool{"sin": true, "tan": true, "sinh": true, "tanh": true, "asin": true, "atan": true}
var evenFuncs = map[string]bool{"cos": true, "cosh": true}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok && n.Approx() {
		if v, ok := funcOf(f.name, arg).Eval(); ok {
			r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'g', n.digits, 64))
			if ok {
				return &Num{val: r, digits: n.digits}
			}
		}
	}
	switch {
	case oddFuncs[f.name]:
		if isNumEqual(arg, 0) {
			return N(0)
		}
		if isNegativeTerm(arg) {
			return negate(funcOf(f.name, negate(arg)).Simplify())
		}
	case evenFuncs[f.name]:
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if isNegativeTerm(arg) {
			return funcOf(f.name, negate(arg)).Simplify()
		}
	}
	switch f.name {
	case "acos":
		if isNumEqual(arg, 1) {
			return N(0)
		}
	case "ln":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if k, u, ok := scaledLog(arg); ok {
			return PowOf(u, k)
		}
		// exp(a + k*ln(u)) = u^k * exp(a)
		if add, ok := arg.(*Add); ok {
			var pulled, rest []Expr
			for _, t := range add.terms {
				if k, u, ok := scaledLog(t); ok {
					pulled = append(pulled, PowOf(u, k))
				} else {
					rest = append(rest, t)
				}
			}
			if len(pulled) > 0 {
				return MulOf(append(pulled, ExpOf(sumOf(rest)))...)
			}
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			return numAbs(n)
		}
		if isNegativeTerm(arg) {
			return AbsOf(negate(arg))
		}
		if inner, ok := arg.(*Func); ok && (inner.name == "exp" || inner.name == "abs") {
			return inner
		}
	}
	return &Func{name: f.name, arg: arg}
}

// scaledLog matches ln(u) and k*ln(u), where k is the product of every other
// factor. Products with more than one logarithm do not match.
func scaledLog(e Expr) (Expr, Expr, bool) {
	switch v := e.(type) {
	case *Func:
		if v.name == "ln" {
			return N(1), v.arg, true
		}
	case *Mul:
		var u Expr
		k := make([]Expr, 0, len(v.factors))
		for _, f := range v.factors {
			if l, ok := f.(*Func); ok && l.name == "ln" {
				if u != nil {
					return nil, nil, false
				}
				u = l.arg
				continue
			}
			k = append(k, f)
		}
		if u != nil {
			return productOf(k), u, true
		}
	}
	return nil, nil, false
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = f
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "abs":
		outer = MulOf(f.arg, PowOf(f, N(-1)))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	default:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du)
}

func (f *Func) Eval() (float64, bool) {
	v, ok := f.arg.Eval()
	if !ok {
		return 0, false
	}
	switch f.name {
	case "sin":
		return finite(math.Sin(v))
	case "cos":
		return finite(math.Cos(v))
	case "tan":
		return finite(math.Tan(v))
	case "exp":
		return finite(math.Exp(v))
	case "ln":
		if v <= 0 {
			return 0, false
		}
		return finite(math.Log(v))
	case "abs":
		return math.Abs(v), true
	case "asin":
		return finite(math.Asin(v))
	case "acos":
		return finite(math.Acos(v))
	case "atan":
		return finite(math.Atan(v))
	case "sinh":
		return finite(math.Sinh(v))
	case "cosh":
		return finite(math.Cosh(v))
	case "tanh":
		return finite(math.Tanh(v))
	}
	return 0, false
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
