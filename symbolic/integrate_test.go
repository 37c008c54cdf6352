package symbolic_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/njchilds90/gobernoulli/symbolic"
)

// checkAntiderivative integrates f and differentiates the result back.
func checkAntiderivative(t *testing.T, f symbolic.Expr) symbolic.Expr {
	t.Helper()
	F, err := symbolic.Integrate(f, "x")
	if err != nil {
		t.Fatalf("∫%s dx: unexpected error %v", f, err)
	}
	residual := symbolic.Expand(symbolic.AddOf(symbolic.Diff(F, "x"), symbolic.MulOf(symbolic.N(-1), f)))
	if residual.String() != "0" {
		t.Errorf("d/dx ∫%s dx = %s leaves residual %s", f, F, residual)
	}
	return F
}

// checkAntiderivativeAt integrates f and compares d/dx of the result with f
// at sample points. Use it when the residual does not cancel symbolically,
// as with sums of logarithms over different denominators.
func checkAntiderivativeAt(t *testing.T, f symbolic.Expr, points ...symbolic.Expr) symbolic.Expr {
	t.Helper()
	F, err := symbolic.Integrate(f, "x")
	if err != nil {
		t.Fatalf("∫%s dx: unexpected error %v", f, err)
	}
	dF := symbolic.Diff(F, "x")
	for _, p := range points {
		got, ok1 := symbolic.Sub(dF, "x", p).Eval()
		want, ok2 := symbolic.Sub(f, "x", p).Eval()
		if !ok1 || !ok2 {
			t.Fatalf("cannot evaluate at x = %s", p)
		}
		if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
			t.Errorf("d/dx ∫%s dx at x = %s: want %g, got %g (F = %s)", f, p, want, got, F)
		}
	}
	return F
}

var samplePoints = []symbolic.Expr{symbolic.F(5, 2), symbolic.N(3), symbolic.F(17, 4)}

// ============================================================
// Table integrals
// ============================================================

func TestIntegrate_Table(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"5", "5*x"},
		{"x", "1/2*x^2"},
		{"x^3", "1/4*x^4"},
		{"1/x", "ln(x)"},
		{"sin(x)", "-cos(x)"},
		{"cos(x)", "sin(x)"},
		{"exp(2*x)", "1/2*exp(2*x)"},
		{"1/(3*x + 1)", "1/3*ln(3*x + 1)"},
		{"tan(x)", "-ln(cos(x))"},
		{"y*x", "1/2*x^2*y"},
	}
	for _, c := range cases {
		got, err := symbolic.Integrate(symbolic.MustParse(c.in), "x")
		if err != nil {
			t.Errorf("∫%s dx: unexpected error %v", c.in, err)
			continue
		}
		if got.String() != c.want {
			t.Errorf("∫%s dx: want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestIntegrate_ByDifferentiation(t *testing.T) {
	for _, in := range []string{
		"x^2 + 3*x - 7",
		"(2*x + 1)^3",
		"x^(1/2)",
		"2^x",
		"cosh(3*x)",
		"sinh(x)",
		"x*exp(x)",
		"x^2*sin(x)",
		"x*cos(2*x)",
		"(x + 1)*exp(-x)",
		"ln(x)",
		"x*ln(x)",
		"x^2*ln(x)",
		"2*x*cos(x^2)",
		"x*exp(x^2)",
		"cos(x)*sin(x)^2",
		"x*(x + 1)^2",
		"exp(x)*exp(2*x)",
	} {
		checkAntiderivative(t, symbolic.MustParse(in))
	}
}

func TestIntegrate_Substitution(t *testing.T) {
	got := checkAntiderivative(t, symbolic.MustParse("2*x*cos(x^2)"))
	if got.String() != "sin(x^2)" {
		t.Errorf("want sin(x^2), got %s", got)
	}
}

func TestIntegrate_LogOverX(t *testing.T) {
	got, err := symbolic.Integrate(symbolic.MustParse("ln(x)/x"), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "1/2*ln(x)^2" {
		t.Errorf("want 1/2*ln(x)^2, got %s", got)
	}
}

func TestIntegrate_NoClosedForm(t *testing.T) {
	for _, in := range []string{"exp(x^2)", "exp(-x^2/2)", "sin(x)/x", "1/ln(x)"} {
		_, err := symbolic.Integrate(symbolic.MustParse(in), "x")
		if !errors.Is(err, symbolic.ErrNoClosedForm) {
			t.Errorf("∫%s dx: want ErrNoClosedForm, got %v", in, err)
		}
	}
}

func TestIntegrate_ExpTimesTrig(t *testing.T) {
	for _, in := range []string{
		"exp(-x)*sin(x)",
		"exp(2*x)*cos(3*x)",
		"exp(x)*sin(2*x + 1)",
		"-exp(-x)*cos(x)",
	} {
		checkAntiderivativeAt(t, symbolic.MustParse(in), samplePoints...)
	}
}

func TestIntegrate_PartialFractions(t *testing.T) {
	for _, in := range []string{
		"1/(x*(x + 1))",
		"-1/((x + 1)*x)",
		"1/(x^2 - 1)",
		"(2*x + 3)/((x - 1)*(x + 2))",
		"1/(2*x^2 - 3*x + 1)",
	} {
		F := checkAntiderivativeAt(t, symbolic.MustParse(in), samplePoints...)
		if !strings.Contains(F.String(), "ln(") {
			t.Errorf("∫%s dx = %s: want logarithms", in, F)
		}
	}
}

func TestIntegrate_QuadraticReciprocal(t *testing.T) {
	got := checkAntiderivativeAt(t, symbolic.MustParse("1/(x^2 + 1)"), samplePoints...)
	if got.String() != "atan(x)" {
		t.Errorf("∫1/(x^2 + 1) dx: want atan(x), got %s", got)
	}
	for _, in := range []string{
		"1/(x^2 + 2*x + 1)",
		"1/(x^2 + x + 1)",
		"3/(2*x^2 + 8)",
	} {
		checkAntiderivativeAt(t, symbolic.MustParse(in), samplePoints...)
	}
}

func TestIntegrate_HugeExponent(t *testing.T) {
	e := symbolic.MustParse("(x^2 + 1)^18446744073709551618")

	if _, err := symbolic.Integrate(e, "x"); !errors.Is(err, symbolic.ErrNoClosedForm) {
		t.Errorf("want ErrNoClosedForm, got %v", err)
	}
	if got := symbolic.Expand(e); got.String() != e.String() {
		t.Errorf("Expand must leave the power alone, got %s", got)
	}
	if d := symbolic.Degree(e, "x"); d != -1 {
		t.Errorf("Degree: want -1, got %d", d)
	}
	if d := symbolic.Degree(symbolic.MustParse("(x^2 + 1)^3"), "x"); d != 6 {
		t.Errorf("Degree of (x^2 + 1)^3: want 6, got %d", d)
	}
}
