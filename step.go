package bernoulli

import "encoding/json"

// StepKind tags a step record. The values are the wire "type" field.
type StepKind string

const (
	KindError              StepKind = "error"
	KindOriginal           StepKind = "original"
	KindSubstitution       StepKind = "substitution"
	KindStep               StepKind = "step"
	KindSolution           StepKind = "solution"
	KindSolutionParticular StepKind = "solution_particular"
	KindErrorIC            StepKind = "error_ci"
)

// Step is one entry of the derivation log. The concrete types below are the
// only implementations; switch on them to reach the kind-specific payload.
type Step interface {
	Kind() StepKind
	Header() string
	json.Marshaler
}

// ErrorStep ends the pipeline early.
type ErrorStep struct {
	Title string
	Text  string
}

// OriginalStep echoes the equation as read.
type OriginalStep struct {
	Title   string
	P, Q, N string
	Formula string
}

// SubstitutionStep records u = y^(1-n) and the resulting linear coefficients.
type SubstitutionStep struct {
	Title   string
	U       string
	PU      string
	R       string
	Formula string
}

// DerivationStep is an intermediate result (integrating factor, integral, u(x), C1).
type DerivationStep struct {
	Title string
	Text  string
}

// SolutionStep carries the general solution y(x).
type SolutionStep struct {
	Title string
	Text  string
}

// ParticularSolutionStep carries y(x) with C1 fixed by the initial condition.
type ParticularSolutionStep struct {
	Title string
	Text  string
}

// ICErrorStep reports an initial condition that could not be applied. The
// general solution computed before it stays valid.
type ICErrorStep struct {
	Title string
	Text  string
}

func (ErrorStep) Kind() StepKind              { return KindError }
func (OriginalStep) Kind() StepKind           { return KindOriginal }
func (SubstitutionStep) Kind() StepKind       { return KindSubstitution }
func (DerivationStep) Kind() StepKind         { return KindStep }
func (SolutionStep) Kind() StepKind           { return KindSolution }
func (ParticularSolutionStep) Kind() StepKind { return KindSolutionParticular }
func (ICErrorStep) Kind() StepKind            { return KindErrorIC }

func (s ErrorStep) Header() string              { return s.Title }
func (s OriginalStep) Header() string           { return s.Title }
func (s SubstitutionStep) Header() string       { return s.Title }
func (s DerivationStep) Header() string         { return s.Title }
func (s SolutionStep) Header() string           { return s.Title }
func (s ParticularSolutionStep) Header() string { return s.Title }
func (s ICErrorStep) Header() string            { return s.Title }

// ============================================================
// JSON encoding
// ============================================================

type textRecord struct {
	Type  StepKind `json:"type"`
	Title string   `json:"title"`
	Text  string   `json:"text"`
}

func (s ErrorStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(textRecord{Type: KindError, Title: s.Title, Text: s.Text})
}

func (s DerivationStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(textRecord{Type: KindStep, Title: s.Title, Text: s.Text})
}

func (s SolutionStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(textRecord{Type: KindSolution, Title: s.Title, Text: s.Text})
}

func (s ParticularSolutionStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(textRecord{Type: KindSolutionParticular, Title: s.Title, Text: s.Text})
}

func (s ICErrorStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(textRecord{Type: KindErrorIC, Title: s.Title, Text: s.Text})
}

func (s OriginalStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    StepKind `json:"type"`
		Title   string   `json:"title"`
		P       string   `json:"p"`
		Q       string   `json:"q"`
		N       string   `json:"n"`
		Formula string   `json:"formula"`
	}{KindOriginal, s.Title, s.P, s.Q, s.N, s.Formula})
}

func (s SubstitutionStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    StepKind `json:"type"`
		Title   string   `json:"title"`
		U       string   `json:"u"`
		PU      string   `json:"P_u"`
		R       string   `json:"R"`
		Formula string   `json:"formula"`
	}{KindSubstitution, s.Title, s.U, s.PU, s.R, s.Formula})
}

// Text renders a step as plain lines for terminals.
func Text(s Step) []string {
	switch v := s.(type) {
	case OriginalStep:
		return []string{v.Formula, "p(x) = " + v.P, "q(x) = " + v.Q, "n = " + v.N}
	case SubstitutionStep:
		return []string{v.U, v.Formula, "P_u(x) = " + v.PU, "R(x) = " + v.R}
	case ErrorStep:
		return []string{v.Text}
	case DerivationStep:
		return []string{v.Text}
	case SolutionStep:
		return []string{v.Text}
	case ParticularSolutionStep:
		return []string{v.Text}
	case ICErrorStep:
		return []string{v.Text}
	}
	return nil
}
