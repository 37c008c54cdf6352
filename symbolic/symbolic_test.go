package symbolic_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/njchilds90/gobernoulli/symbolic"
)

var (
	x = symbolic.S("x")
	y = symbolic.S("y")
)

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symbolic.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symbolic.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	if got := symbolic.F(2, 5).LaTeX(); got != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", got)
	}
	if got := symbolic.F(-1, 2).LaTeX(); got != `- \frac{1}{2}` {
		t.Errorf("want - \\frac{1}{2}, got %s", got)
	}
}

func TestNum_Diff_IsZero(t *testing.T) {
	result := symbolic.N(5).Diff("x")
	if symbolic.String(result) != "0" {
		t.Errorf("d/dx(5) should be 0, got %s", symbolic.String(result))
	}
}

func TestPow_ExactRoots(t *testing.T) {
	cases := []struct {
		base, exp symbolic.Expr
		want      string
	}{
		{symbolic.N(2), symbolic.N(10), "1024"},
		{symbolic.F(4, 9), symbolic.F(1, 2), "2/3"},
		{symbolic.N(-8), symbolic.F(1, 3), "-2"},
		{symbolic.N(8), symbolic.F(2, 3), "4"},
		{symbolic.N(-1), symbolic.N(-1), "-1"},
		{symbolic.N(2), symbolic.F(1, 2), "2^(1/2)"},
	}
	for _, c := range cases {
		if got := symbolic.PowOf(c.base, c.exp).String(); got != c.want {
			t.Errorf("%s^%s: want %s, got %s", c.base, c.exp, c.want, got)
		}
	}
}

// ============================================================
// Canonical forms
// ============================================================

func TestAdd_LikeTerms(t *testing.T) {
	expr := symbolic.AddOf(x, x, x, symbolic.N(2))
	if expr.String() != "3*x + 2" {
		t.Errorf("want 3*x + 2, got %s", expr.String())
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	expr := symbolic.AddOf(x, symbolic.MulOf(symbolic.N(-1), x))
	if expr.String() != "0" {
		t.Errorf("want 0, got %s", expr.String())
	}
}

func TestAdd_NegativeLeadingTerm(t *testing.T) {
	expr := symbolic.AddOf(symbolic.N(2), symbolic.MulOf(symbolic.N(-1), x))
	if expr.String() != "-x + 2" {
		t.Errorf("want -x + 2, got %s", expr.String())
	}
	if expr.LaTeX() != "2 - x" {
		t.Errorf("want 2 - x, got %s", expr.LaTeX())
	}
}

func TestMul_MergesBases(t *testing.T) {
	if got := symbolic.MulOf(x, x).String(); got != "x^2" {
		t.Errorf("want x^2, got %s", got)
	}
	if got := symbolic.MulOf(x, symbolic.PowOf(x, symbolic.N(-1))).String(); got != "1" {
		t.Errorf("want 1, got %s", got)
	}
	if got := symbolic.MulOf(symbolic.N(0), x).String(); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestMul_FoldsExponentials(t *testing.T) {
	expr := symbolic.MulOf(symbolic.ExpOf(x), symbolic.ExpOf(symbolic.MulOf(symbolic.N(-1), x)), y)
	if expr.String() != "y" {
		t.Errorf("want y, got %s", expr.String())
	}
}

func TestFunc_LogRules(t *testing.T) {
	cases := []struct {
		expr symbolic.Expr
		want string
	}{
		{symbolic.ExpOf(symbolic.LnOf(x)), "x"},
		{symbolic.ExpOf(symbolic.MulOf(symbolic.N(2), symbolic.LnOf(x))), "x^2"},
		{symbolic.ExpOf(symbolic.MulOf(symbolic.N(-1), symbolic.LnOf(x))), "x^(-1)"},
		{symbolic.ExpOf(symbolic.MulOf(y, symbolic.LnOf(x))), "x^y"},
		{symbolic.LnOf(symbolic.ExpOf(x)), "x"},
		{symbolic.LnOf(symbolic.N(1)), "0"},
		{symbolic.Euler(), "exp(1)"},
	}
	for _, c := range cases {
		if got := c.expr.String(); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

func TestFunc_ExpOfLogProductStays(t *testing.T) {
	e := symbolic.ExpOf(symbolic.MulOf(symbolic.LnOf(x), symbolic.LnOf(y)))
	if _, ok := e.(*symbolic.Pow); ok {
		t.Errorf("exp(ln(x)*ln(y)) must not fold into a power, got %s", e)
	}
}

func TestFunc_Parity(t *testing.T) {
	negX := symbolic.MulOf(symbolic.N(-1), x)
	if got := symbolic.SinOf(negX).String(); got != "-sin(x)" {
		t.Errorf("sin(-x): want -sin(x), got %s", got)
	}
	if got := symbolic.CosOf(negX).String(); got != "cos(x)" {
		t.Errorf("cos(-x): want cos(x), got %s", got)
	}
	if got := symbolic.SinOf(symbolic.N(0)).String(); got != "0" {
		t.Errorf("sin(0): want 0, got %s", got)
	}
}

func TestDeterminism(t *testing.T) {
	a := symbolic.MulOf(y, x, symbolic.N(2))
	b := symbolic.MulOf(symbolic.N(2), x, y)
	if a.String() != b.String() || a.String() != "2*x*y" {
		t.Errorf("want 2*x*y twice, got %s and %s", a, b)
	}
	if !a.Equal(b) {
		t.Errorf("canonical forms should be Equal")
	}
}

// ============================================================
// Differentiation and expansion
// ============================================================

func TestDiff_PowerRule(t *testing.T) {
	got := symbolic.Diff(symbolic.PowOf(x, symbolic.N(3)), "x")
	if got.String() != "3*x^2" {
		t.Errorf("want 3*x^2, got %s", got)
	}
}

func TestDiff_ChainRule(t *testing.T) {
	got := symbolic.Diff(symbolic.SinOf(symbolic.PowOf(x, symbolic.N(2))), "x")
	if got.String() != "2*cos(x^2)*x" {
		t.Errorf("want 2*cos(x^2)*x, got %s", got)
	}
}

func TestExpand_Square(t *testing.T) {
	xm2 := symbolic.AddOf(x, symbolic.N(-2))
	got := symbolic.Expand(symbolic.MulOf(xm2, xm2))
	if got.String() != "x^2 - 4*x + 4" {
		t.Errorf("want x^2 - 4*x + 4, got %s", got)
	}
}

func TestSub(t *testing.T) {
	expr := symbolic.AddOf(symbolic.MulOf(symbolic.N(2), x), symbolic.N(3))
	if got := symbolic.Sub(expr, "x", symbolic.N(5)).String(); got != "13" {
		t.Errorf("want 13, got %s", got)
	}
}

// ============================================================
// Polynomial utilities
// ============================================================

func TestFreeSymbols(t *testing.T) {
	got := symbolic.FreeSymbols(symbolic.AddOf(y, symbolic.SinOf(x), symbolic.Pi))
	if strings.Join(got, ",") != "x,y" {
		t.Errorf("want [x y], got %v", got)
	}
	if len(symbolic.FreeSymbols(symbolic.N(3))) != 0 {
		t.Errorf("constant should have no free symbols")
	}
}

func TestDegree(t *testing.T) {
	cubic := symbolic.AddOf(symbolic.PowOf(x, symbolic.N(3)), x)
	if d := symbolic.Degree(cubic, "x"); d != 3 {
		t.Errorf("want 3, got %d", d)
	}
	if d := symbolic.Degree(symbolic.N(7), "x"); d != 0 {
		t.Errorf("want 0, got %d", d)
	}
}

func TestIsPolynomial(t *testing.T) {
	if !symbolic.IsPolynomial(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), y), "x") {
		t.Errorf("x^2 + y should be a polynomial in x")
	}
	if symbolic.IsPolynomial(symbolic.SinOf(x), "x") {
		t.Errorf("sin(x) is not a polynomial in x")
	}
	if symbolic.IsPolynomial(symbolic.PowOf(x, symbolic.N(-1)), "x") {
		t.Errorf("1/x is not a polynomial in x")
	}
}

// ============================================================
// Solving, rounding, power simplification
// ============================================================

func TestSolveLinear_Exact(t *testing.T) {
	expr := symbolic.AddOf(symbolic.MulOf(symbolic.N(2), x), symbolic.N(-6))
	got, err := symbolic.SolveLinear(expr, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "3" {
		t.Errorf("want 3, got %s", got)
	}
}

func TestSolveLinear_Symbolic(t *testing.T) {
	// y*x - 1 = 0  =>  x = 1/y
	expr := symbolic.AddOf(symbolic.MulOf(y, x), symbolic.N(-1))
	got, err := symbolic.SolveLinear(expr, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "y^(-1)" {
		t.Errorf("want y^(-1), got %s", got)
	}
}

func TestSolveLinear_Errors(t *testing.T) {
	cases := []struct {
		name string
		expr symbolic.Expr
		want error
	}{
		{"no unknown", symbolic.N(5), symbolic.ErrNoSolution},
		{"quadratic", symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(-1)), symbolic.ErrNotLinear},
		{"division by zero", symbolic.AddOf(x, symbolic.PowOf(symbolic.N(0), symbolic.N(-1))), symbolic.ErrUndefined},
		{"cancelled unknown", symbolic.AddOf(x, symbolic.MulOf(symbolic.N(-1), x), symbolic.N(1)), symbolic.ErrNoSolution},
	}
	for _, c := range cases {
		_, err := symbolic.SolveLinear(c.expr, "x")
		if !errors.Is(err, c.want) {
			t.Errorf("%s: want %v, got %v", c.name, c.want, err)
		}
	}
}

func TestUndefined(t *testing.T) {
	if !symbolic.Undefined(symbolic.PowOf(symbolic.N(0), symbolic.N(-1))) {
		t.Errorf("0^(-1) should be undefined")
	}
	if !symbolic.Undefined(symbolic.MulOf(x, symbolic.LnOf(symbolic.N(0)))) {
		t.Errorf("x*ln(0) should be undefined")
	}
	if symbolic.Undefined(symbolic.PowOf(x, symbolic.N(-1))) {
		t.Errorf("x^(-1) is defined")
	}
}

func TestRound(t *testing.T) {
	n, err := symbolic.Round(symbolic.F(2, 3), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.String() != "0.6667" || !n.Approx() {
		t.Errorf("want approximate 0.6667, got %s", n)
	}

	big, err := symbolic.Round(symbolic.N(1234567), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if big.LaTeX() != `1.23 \cdot 10^{6}` {
		t.Errorf("want 1.23 \\cdot 10^{6}, got %s", big.LaTeX())
	}

	two, err := symbolic.Round(symbolic.N(2), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if two.String() != "2.00000" || two.LaTeX() != "2.00000" {
		t.Errorf("want 2.00000, got %s", two)
	}

	hundred, err := symbolic.Round(symbolic.N(100), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hundred.String() != "100" {
		t.Errorf("want 100, got %s", hundred)
	}

	if _, err := symbolic.Round(x, 3); !errors.Is(err, symbolic.ErrNotNumeric) {
		t.Errorf("want ErrNotNumeric, got %v", err)
	}
}

func TestPowSimp(t *testing.T) {
	half := symbolic.F(1, 2)
	got := symbolic.PowSimp(symbolic.MulOf(symbolic.PowOf(x, half), symbolic.PowOf(y, half)))
	if got.String() != "(x*y)^(1/2)" {
		t.Errorf("want (x*y)^(1/2), got %s", got)
	}
	nested := symbolic.PowOf(symbolic.PowOf(x, symbolic.N(2)), half)
	if got := symbolic.PowSimp(nested).String(); got != "x" {
		t.Errorf("want x, got %s", got)
	}
}

// ============================================================
// LaTeX rendering
// ============================================================

func TestLaTeX(t *testing.T) {
	cases := []struct {
		expr symbolic.Expr
		want string
	}{
		{symbolic.MulOf(symbolic.F(-1, 4), symbolic.PowOf(x, symbolic.N(4))), `- \frac{x^{4}}{4}`},
		{symbolic.MulOf(symbolic.F(3, 4), x), `\frac{3 x}{4}`},
		{symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.N(-1)), `\frac{1}{x + 1}`},
		{symbolic.PowOf(x, symbolic.F(1, 3)), `\sqrt[3]{x}`},
		{symbolic.SqrtOf(x), `\sqrt{x}`},
		{symbolic.PowOf(symbolic.SinOf(x), symbolic.N(2)), `\sin^{2}\left(x\right)`},
		{symbolic.LnOf(x), `\ln\left(x\right)`},
		{symbolic.ExpOf(symbolic.MulOf(symbolic.N(-2), x)), `e^{- 2 x}`},
		{symbolic.Euler(), "e"},
		{symbolic.S("C1"), `C_{1}`},
		{symbolic.S("alpha"), `\alpha`},
	}
	for _, c := range cases {
		if got := symbolic.LaTeX(c.expr); got != c.want {
			t.Errorf("%s: want %s, got %s", c.expr, c.want, got)
		}
	}
}
