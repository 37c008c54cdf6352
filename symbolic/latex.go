package symbolic

import (
	"math/big"
	"strings"
)

// ============================================================
// LaTeX rendering
// ============================================================

func LaTeX(e Expr) string { return e.LaTeX() }

func (n *Num) LaTeX() string {
	if n.digits > 0 {
		s := formatDecimal(n)
		if i := strings.IndexAny(s, "eE"); i >= 0 {
			exp := strings.TrimLeft(s[i+1:], "+")
			neg := strings.HasPrefix(exp, "-")
			exp = strings.TrimLeft(strings.TrimPrefix(exp, "-"), "0")
			if neg {
				exp = "-" + exp
			}
			return s[:i] + ` \cdot 10^{` + exp + "}"
		}
		return s
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "- "
		v.Neg(v)
	}
	return sign + `\frac{` + v.Num().String() + "}{" + v.Denom().String() + "}"
}

var greek = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"zeta": true, "eta": true, "theta": true, "iota": true, "kappa": true,
	"lambda": true, "mu": true, "nu": true, "xi": true, "pi": true, "rho": true,
	"sigma": true, "tau": true, "phi": true, "chi": true, "psi": true, "omega": true,
}

// symbolLaTeX renders trailing digits as a subscript: C1 -> C_{1}.
func symbolLaTeX(name string) string {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	head, digits := name[:i], name[i:]
	if greek[head] {
		head = `\` + head
	}
	if digits == "" || head == "" {
		return head + digits
	}
	return head + "_{" + digits + "}"
}

// Add puts a non-negative term first when one exists, so sums read
// "C_{1} - x" rather than "- x + C_{1}".
func (a *Add) LaTeX() string {
	terms := append([]Expr(nil), a.terms...)
	if isNegativeTerm(terms[0]) {
		for i, t := range terms {
			if !isNegativeTerm(t) {
				copy(terms[1:i+1], terms[:i])
				terms[0] = t
				break
			}
		}
	}
	var b strings.Builder
	for i, t := range terms {
		switch {
		case i == 0:
			b.WriteString(t.LaTeX())
		case isNegativeTerm(t):
			b.WriteString(" - " + negate(t).LaTeX())
		default:
			b.WriteString(" + " + t.LaTeX())
		}
	}
	return b.String()
}

// Mul renders factors with negative numeric exponents as a fraction.
func (m *Mul) LaTeX() string {
	coeff := N(1)
	factors := m.factors
	if c, ok := factors[0].(*Num); ok {
		coeff = c
		factors = factors[1:]
	}
	sign := ""
	if coeff.IsNegative() {
		sign = "- "
		coeff = numAbs(coeff)
	}
	var num, den []Expr
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && e.IsNegative() && !e.Approx() {
				den = append(den, PowOf(p.base, numNeg(e)))
				continue
			}
		}
		num = append(num, f)
	}
	var numParts, denParts []string
	switch {
	case coeff.Approx() || coeff.IsInteger():
		if !coeff.IsOne() || len(num) == 0 {
			numParts = append(numParts, coeff.LaTeX())
		}
	default:
		p := coeff.val.Num()
		if p.Cmp(big.NewInt(1)) != 0 || len(num) == 0 {
			numParts = append(numParts, p.String())
		}
		denParts = append(denParts, coeff.val.Denom().String())
	}
	numParts = append(numParts, latexFactors(num, len(numParts) == 0 && len(num) == 1)...)
	denParts = append(denParts, latexFactors(den, len(denParts) == 0 && len(den) == 1)...)
	if len(denParts) == 0 {
		return sign + strings.Join(numParts, " ")
	}
	return sign + `\frac{` + strings.Join(numParts, " ") + "}{" + strings.Join(denParts, " ") + "}"
}

func latexFactors(fs []Expr, alone bool) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		if _, ok := f.(*Add); ok && !alone {
			out[i] = `\left(` + f.LaTeX() + `\right)`
		} else {
			out[i] = f.LaTeX()
		}
	}
	return out
}

var trigLaTeX = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`,
	"sinh": `\sinh`, "cosh": `\cosh`, "tanh": `\tanh`,
	"ln": `\ln`, "asin": `\arcsin`, "acos": `\arccos`, "atan": `\arctan`,
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && !en.Approx() {
		if en.IsNegative() {
			return `\frac{1}{` + PowOf(p.base, numNeg(en)).LaTeX() + "}"
		}
		if !en.IsInteger() && en.val.Num().Cmp(big.NewInt(1)) == 0 {
			d := en.val.Denom()
			if d.Cmp(big.NewInt(2)) == 0 {
				return `\sqrt{` + p.base.LaTeX() + "}"
			}
			return `\sqrt[` + d.String() + "]{" + p.base.LaTeX() + "}"
		}
		if f, ok := p.base.(*Func); ok && en.IsInteger() {
			if cmd, ok := trigLaTeX[f.name]; ok {
				return cmd + "^{" + en.LaTeX() + `}\left(` + f.arg.LaTeX() + `\right)`
			}
		}
	}
	return latexBase(p.base) + "^{" + p.exp.LaTeX() + "}"
}

func latexBase(b Expr) string {
	switch b.(type) {
	case *Func:
		return `\left(` + b.LaTeX() + `\right)`
	}
	if needsBaseParens(b) {
		return `\left(` + b.LaTeX() + `\right)`
	}
	return b.LaTeX()
}

func (f *Func) LaTeX() string {
	switch f.name {
	case "exp":
		if isNumEqual(f.arg, 1) {
			return "e"
		}
		return "e^{" + f.arg.LaTeX() + "}"
	case "abs":
		return `\left|` + f.arg.LaTeX() + `\right|`
	}
	if cmd, ok := trigLaTeX[f.name]; ok {
		return cmd + `\left(` + f.arg.LaTeX() + `\right)`
	}
	return `\operatorname{` + f.name + `}\left(` + f.arg.LaTeX() + `\right)`
}
