package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	bernoulli "github.com/njchilds90/gobernoulli"
	"github.com/njchilds90/gobernoulli/internal/trace"
)

// field accepts a JSON string, a JSON number or null, so {"n": 2} and
// {"n": "2"} mean the same thing.
type field string

func (f *field) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = field(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", data)
	}
	*f = field(n.String())
	return nil
}

type solveRequest struct {
	P  field `json:"p"`
	Q  field `json:"q"`
	N  field `json:"n"`
	X0 field `json:"x0"`
	Y0 field `json:"y0"`
}

func (req solveRequest) input() bernoulli.Input {
	return bernoulli.Input{
		P:  string(req.P),
		Q:  string(req.Q),
		N:  string(req.N),
		X0: string(req.X0),
		Y0: string(req.Y0),
	}
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req solveRequest
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if dec.More() {
		writeError(w, r, http.StatusBadRequest, errors.New("invalid JSON: trailing data"))
		return
	}

	ctx := r.Context()
	if s.cfg.Solver.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Solver.Timeout)
		defer cancel()
	}

	res := s.solver.Solve(ctx, req.input())
	trace.Info(ctx, "solved with %d steps, general=%t particular=%t",
		len(res.Steps), res.GeneralSolution != nil, res.ParticularSolution != nil)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

type schemaField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

type schema struct {
	Endpoint string        `json:"endpoint"`
	Method   string        `json:"method"`
	Request  []schemaField `json:"request"`
	Response []schemaField `json:"response"`
	Steps    []string      `json:"step_types"`
}

var solveSchema = schema{
	Endpoint: "/solve",
	Method:   http.MethodPost,
	Request: []schemaField{
		{"p", "string", true, "coefficient p(x) in y' + p(x)y = q(x)y^n"},
		{"q", "string", true, "coefficient q(x)"},
		{"n", "string", true, "exponent n; must not be 0 or 1"},
		{"x0", "string", false, "initial point x0 of y(x0) = y0"},
		{"y0", "string", false, "initial value y0 of y(x0) = y0"},
	},
	Response: []schemaField{
		{"steps", "array", true, "ordered derivation steps"},
		{"p_latex", "string|null", true, "rendered p(x), null on input error"},
		{"q_latex", "string|null", true, "rendered q(x), null on input error"},
		{"n_value", "string", true, "n as received"},
		{"general_solution", "string|null", true, "LaTeX general solution"},
		{"particular_solution", "string|null", true, "LaTeX particular solution"},
	},
	Steps: []string{
		string(bernoulli.KindError),
		string(bernoulli.KindOriginal),
		string(bernoulli.KindSubstitution),
		string(bernoulli.KindStep),
		string(bernoulli.KindSolution),
		string(bernoulli.KindSolutionParticular),
		string(bernoulli.KindErrorIC),
	},
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, solveSchema)
}
