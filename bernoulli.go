// Package bernoulli solves Bernoulli equations y' + p(x)y = q(x)y^n step by step.
//
// Solve parses p, q and n, applies the substitution u = y^(1-n), integrates
// the resulting linear equation and, when an initial condition y(x0) = y0 is
// given, fixes the constant C1. Every stage appends a Step to the result so a
// front end can show the derivation in order. Failures are steps too: an
// ErrorStep stops the pipeline, an ICErrorStep only drops the particular
// solution.
//
// All algebra is exact. The one numeric approximation is the displayed value
// of C1, rounded to a configurable number of significant figures.
package bernoulli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/njchilds90/gobernoulli/internal/trace"
	"github.com/njchilds90/gobernoulli/symbolic"
)

// DefaultRoundDigits is the number of significant figures shown for C1.
const DefaultRoundDigits = 6

const (
	equationFormula = `y' + p(x)y = q(x)y^n`
	linearFormula   = `u' + P_u(x)u = R(x)`
)

// Shared formal symbols. Expressions are immutable, so these are safe for
// concurrent solves.
var (
	x  = symbolic.S("x")
	c1 = symbolic.S("C1")
)

// Input holds the raw text of one request. X0 and Y0 are optional.
type Input struct {
	P  string
	Q  string
	N  string
	X0 string
	Y0 string
}

// HasInitialCondition reports whether either half of y(x0) = y0 was supplied.
func (in Input) HasInitialCondition() bool {
	return strings.TrimSpace(in.X0) != "" || strings.TrimSpace(in.Y0) != ""
}

// Result is the outcome of Solve. Nil pointers encode absent values.
type Result struct {
	Steps              []Step  `json:"steps"`
	PLaTeX             *string `json:"p_latex"`
	QLaTeX             *string `json:"q_latex"`
	NValue             string  `json:"n_value"`
	GeneralSolution    *string `json:"general_solution"`
	ParticularSolution *string `json:"particular_solution"`
}

// Failed reports whether the pipeline stopped at an ErrorStep.
func (r Result) Failed() bool {
	return len(r.Steps) > 0 && r.Steps[len(r.Steps)-1].Kind() == KindError
}

// Solver runs the pipeline. The zero value is not usable; call New.
type Solver struct {
	roundDigits int
}

// Option configures a Solver.
type Option func(*Solver)

// WithRoundDigits sets the significant figures used to display C1.
// Non-positive values are ignored.
func WithRoundDigits(digits int) Option {
	return func(s *Solver) {
		if digits > 0 {
			s.roundDigits = digits
		}
	}
}

// New returns a Solver showing DefaultRoundDigits figures unless an option
// says otherwise.
func New(opts ...Option) *Solver {
	s := &Solver{roundDigits: DefaultRoundDigits}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve runs the pipeline with default options.
func Solve(ctx context.Context, in Input) Result {
	return New().Solve(ctx, in)
}

// run is the state of one invocation.
type run struct {
	ctx context.Context
	res Result
}

func (r *run) add(s Step) {
	trace.Debug(r.ctx, "step %d: %s %q", len(r.res.Steps)+1, s.Kind(), s.Header())
	r.res.Steps = append(r.res.Steps, s)
}

// expired appends a terminal error step once the context is done.
func (r *run) expired(stage string) bool {
	err := r.ctx.Err()
	if err == nil {
		return false
	}
	trace.Warn(r.ctx, "solve stopped before %s: %v", stage, err)
	r.add(ErrorStep{
		Title: "Computation Budget Exceeded",
		Text:  fmt.Sprintf("Computation budget exceeded before the %s stage: %v.", stage, err),
	})
	return true
}

func strPtr(s string) *string { return &s }

func isNum(e symbolic.Expr, v int64) bool { return e.Equal(symbolic.N(v)) }

// Solve runs the pipeline on in. It never returns an error: every failure is
// recorded as a step and the fields computed before it are kept.
func (s *Solver) Solve(ctx context.Context, in Input) Result {
	r := &run{ctx: ctx, res: Result{Steps: []Step{}, NValue: in.N}}
	trace.Info(ctx, "solve p=%q q=%q n=%q x0=%q y0=%q", in.P, in.Q, in.N, in.X0, in.Y0)
	s.solve(r, in)
	trace.Info(ctx, "solve finished with %d steps", len(r.res.Steps))
	return r.res
}

func (s *Solver) solve(r *run, in Input) {
	if r.expired("parsing") {
		return
	}
	p, q, n, err := parseEquation(in)
	if err != nil {
		r.add(ErrorStep{
			Title: "Input Error",
			Text:  "Could not process p(x), q(x) or n: " + err.Error(),
		})
		return
	}
	r.res.PLaTeX = strPtr(p.LaTeX())
	r.res.QLaTeX = strPtr(q.LaTeX())

	n = symbolic.Simplify(n)
	if isNum(n, 0) || isNum(n, 1) {
		r.add(ErrorStep{
			Title: "Trivial Case",
			Text: fmt.Sprintf("The equation is linear ($n=%s$) and is solved with an integrating factor; "+
				"the Bernoulli substitution does not apply.", n.LaTeX()),
		})
		return
	}

	r.add(OriginalStep{
		Title:   "Original Equation",
		P:       p.LaTeX(),
		Q:       q.LaTeX(),
		N:       n.LaTeX(),
		Formula: equationFormula,
	})

	if r.expired("substitution") {
		return
	}
	m := symbolic.Simplify(symbolic.AddOf(symbolic.N(1), symbolic.MulOf(symbolic.N(-1), n)))
	pu := symbolic.Simplify(symbolic.MulOf(m, p))
	rr := symbolic.Simplify(symbolic.MulOf(m, q))
	r.add(SubstitutionStep{
		Title:   "Step 1: Bernoulli Substitution",
		U:       "u = y^{" + m.LaTeX() + "}",
		PU:      pu.LaTeX(),
		R:       rr.LaTeX(),
		Formula: linearFormula,
	})

	if r.expired("integrating factor") {
		return
	}
	ipu, err := symbolic.Integrate(pu, x.Name())
	if err != nil {
		trace.Warn(r.ctx, "integrating factor: %v", err)
		r.add(ErrorStep{
			Title: "Integrating Factor Error",
			Text:  "Could not compute the integrating factor: " + err.Error(),
		})
		return
	}
	mu := symbolic.ExpOf(ipu)
	r.add(DerivationStep{
		Title: "Step 2: Integrating Factor",
		Text:  `IF = e^{\int P_u dx} = ` + mu.LaTeX(),
	})

	if r.expired("integral") {
		return
	}
	integral, err := symbolic.Integrate(symbolic.MulOf(mu, rr), x.Name())
	if err != nil {
		trace.Warn(r.ctx, "core integral: %v", err)
		r.add(ErrorStep{
			Title: "Integral Error",
			Text:  "Could not compute the integral: " + err.Error(),
		})
		return
	}
	r.add(DerivationStep{
		Title: "Step 3: Integral",
		Text:  `\int IF \cdot R dx = ` + integral.LaTeX(),
	})

	if r.expired("general solution") {
		return
	}
	u := symbolic.Simplify(symbolic.MulOf(
		symbolic.AddOf(integral, c1),
		symbolic.PowOf(mu, symbolic.N(-1)),
	))
	r.add(DerivationStep{
		Title: "Step 4: General Solution for u(x)",
		Text:  "u(x) = " + u.LaTeX(),
	})

	exponent := symbolic.Simplify(symbolic.PowOf(m, symbolic.N(-1)))
	general := composePower(u, exponent)
	r.add(SolutionStep{
		Title: "Step 5: General Solution for y(x)",
		Text:  "y(x) = " + general,
	})
	r.res.GeneralSolution = strPtr(general)

	if !in.HasInitialCondition() {
		return
	}
	if r.expired("initial condition") {
		return
	}
	s.applyInitialCondition(r, in, u, m, exponent)
}

// composePower renders (base)^{exp} textually, without re-simplifying the power.
func composePower(base, exp symbolic.Expr) string {
	return `\left(` + base.LaTeX() + `\right)^{` + exp.LaTeX() + "}"
}

func (s *Solver) applyInitialCondition(r *run, in Input, u, m, exponent symbolic.Expr) {
	fail := func(format string, args ...interface{}) {
		text := fmt.Sprintf(format, args...)
		trace.Warn(r.ctx, "initial condition: %s", text)
		r.add(ICErrorStep{Title: "Initial Condition Error", Text: text})
	}

	x0, y0, err := parseInitialCondition(in)
	if err != nil {
		fail("Could not read the initial condition: %v", err)
		return
	}

	// u(x0) - y0^m = 0, linear in C1.
	eq := symbolic.AddOf(
		symbolic.Sub(u, x.Name(), x0),
		symbolic.MulOf(symbolic.N(-1), symbolic.PowOf(y0, m)),
	)
	c, err := symbolic.SolveLinear(eq, c1.Name())
	if err != nil {
		fail("Could not compute the constant: %v", err)
		return
	}

	shown := c
	if rounded, err := symbolic.Round(c, s.roundDigits); err == nil {
		shown = rounded
	} else if !errors.Is(err, symbolic.ErrNotNumeric) {
		fail("Could not compute the constant: %v", err)
		return
	}

	particular := symbolic.Simplify(symbolic.Sub(u, c1.Name(), shown))
	particular = symbolic.PowSimp(particular)
	formula := composePower(particular, exponent)

	r.add(DerivationStep{
		Title: "Step 6: Constant of Integration",
		Text: fmt.Sprintf("For $y(%s) = %s$, the constant is $C_{1} \\approx %s$.",
			x0.LaTeX(), y0.LaTeX(), shown.LaTeX()),
	})
	r.add(ParticularSolutionStep{
		Title: "Step 7: Particular Solution",
		Text:  "y(x) = " + formula,
	})
	r.res.ParticularSolution = strPtr(formula)
}

var (
	errReservedSymbol = errors.New("C1 is reserved for the constant of integration")
	errExponentHasX   = errors.New("n must not depend on x")
	errMissingHalf    = errors.New("both x0 and y0 are required")
	errPointHasX      = errors.New("x0 and y0 must not depend on x")
)

func parseEquation(in Input) (p, q, n symbolic.Expr, err error) {
	fields := []struct {
		name, text string
		dst        *symbolic.Expr
	}{
		{"p(x)", in.P, &p},
		{"q(x)", in.Q, &q},
		{"n", in.N, &n},
	}
	for _, f := range fields {
		e, err := symbolic.Parse(f.text)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %w", f.name, err)
		}
		if symbolic.Has(e, c1.Name()) {
			return nil, nil, nil, fmt.Errorf("%s: %w", f.name, errReservedSymbol)
		}
		*f.dst = e
	}
	if symbolic.Has(n, x.Name()) {
		return nil, nil, nil, errExponentHasX
	}
	return p, q, n, nil
}

func parseInitialCondition(in Input) (x0, y0 symbolic.Expr, err error) {
	if strings.TrimSpace(in.X0) == "" || strings.TrimSpace(in.Y0) == "" {
		return nil, nil, errMissingHalf
	}
	if x0, err = symbolic.Parse(in.X0); err != nil {
		return nil, nil, fmt.Errorf("x0: %w", err)
	}
	if y0, err = symbolic.Parse(in.Y0); err != nil {
		return nil, nil, fmt.Errorf("y0: %w", err)
	}
	for _, e := range []symbolic.Expr{x0, y0} {
		if symbolic.Has(e, x.Name()) {
			return nil, nil, errPointHasX
		}
		if symbolic.Has(e, c1.Name()) {
			return nil, nil, errReservedSymbol
		}
	}
	return x0, y0, nil
}
