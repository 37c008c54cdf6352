package symbolic

import (
	"fmt"
	"math/big"
	"strings"
)

// ============================================================
// Parser
// ============================================================

// ParseError reports malformed input with the byte offset where parsing stopped.
type ParseError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s at offset %d", e.Input, e.Msg, e.Offset)
}

// Parse reads an infix expression such as "-1/x", "x**2", "exp(2*x) + sin(x)".
//
// Supported syntax: integers, decimals (read as exact rationals), scientific
// notation, identifiers, + - * / ^ **, unary signs, parentheses and calls to
// sin cos tan exp ln log sqrt abs asin acos atan sinh cosh tanh. E and e are
// Euler's number, pi is the circle constant. Implicit multiplication is an error.
func Parse(input string) (Expr, error) {
	p := &parser{input: input}
	if err := p.tokenize(); err != nil {
		return nil, err
	}
	if len(p.toks) == 1 {
		return nil, p.errorf(p.toks[0], "empty expression")
	}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return e.Simplify(), nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(input string) Expr {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

type parser struct {
	input string
	toks  []token
	i     int
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	return &ParseError{Input: p.input, Offset: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) tokenize() error {
	s := p.input
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(s) && isDigit(s[i+1])):
			start := i
			for i < len(s) && isDigit(s[i]) {
				i++
			}
			if i < len(s) && s[i] == '.' {
				i++
				for i < len(s) && isDigit(s[i]) {
					i++
				}
			}
			if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
				j := i + 1
				if j < len(s) && (s[j] == '+' || s[j] == '-') {
					j++
				}
				if j < len(s) && isDigit(s[j]) {
					for j < len(s) && isDigit(s[j]) {
						j++
					}
					i = j
				}
			}
			p.toks = append(p.toks, token{kind: tokNum, text: s[start:i], pos: start})
		case isIdentStart(c):
			start := i
			for i < len(s) && (isIdentStart(s[i]) || isDigit(s[i])) {
				i++
			}
			p.toks = append(p.toks, token{kind: tokIdent, text: s[start:i], pos: start})
		case c == '*' && i+1 < len(s) && s[i+1] == '*':
			p.toks = append(p.toks, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case strings.IndexByte("+-*/^", c) >= 0:
			p.toks = append(p.toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			p.toks = append(p.toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			p.toks = append(p.toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return &ParseError{Input: p.input, Offset: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	p.toks = append(p.toks, token{kind: tokEOF, text: "end of input", pos: len(s)})
	return nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func (p *parser) peek() token { return p.toks[p.i] }
func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

// sum := product (("+" | "-") product)*
func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for p.isOp("+", "-") {
		op := p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if op.text == "-" {
			right = negate(right)
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return AddOf(terms...), nil
}

// product := unary (("*" | "/") unary)*
func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/") {
		op := p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op.text == "/" {
			if isNumEqual(right, 0) {
				return nil, p.errorf(op, "division by zero")
			}
			right = PowOf(right, N(-1))
		}
		left = MulOf(left, right)
	}
	if t := p.peek(); t.kind == tokNum || t.kind == tokIdent || t.kind == tokLParen {
		return nil, p.errorf(t, "missing operator before %q (write 2*x, not 2x)", t.text)
	}
	return left, nil
}

// unary := ("+" | "-") unary | power
func (p *parser) parseUnary() (Expr, error) {
	if p.isOp("+", "-") {
		op := p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op.text == "-" {
			return negate(operand), nil
		}
		return operand, nil
	}
	return p.parsePower()
}

// power := primary ("^" unary)?   (right associative)
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

var parseFuncs = map[string]func(Expr) Expr{
	"sin": SinOf, "cos": CosOf, "tan": TanOf,
	"exp": ExpOf, "ln": LnOf, "log": LnOf, "sqrt": SqrtOf, "abs": AbsOf,
	"asin": AsinOf, "acos": AcosOf, "atan": AtanOf,
	"arcsin": AsinOf, "arccos": AcosOf, "arctan": AtanOf,
	"sinh": SinhOf, "cosh": CoshOf, "tanh": TanhOf,
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, p.errorf(t, "invalid number %q", t.text)
		}
		return &Num{val: r}, nil
	case tokIdent:
		if fn, ok := parseFuncs[t.text]; ok {
			if p.peek().kind != tokLParen {
				return nil, p.errorf(p.peek(), "function %s needs an argument in parentheses", t.text)
			}
			p.next()
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			if r := p.next(); r.kind != tokRParen {
				return nil, p.errorf(r, "expected ')' to close %s(", t.text)
			}
			return fn(arg), nil
		}
		if p.peek().kind == tokLParen {
			return nil, p.errorf(t, "unknown function %q", t.text)
		}
		switch t.text {
		case "E", "e":
			return Euler(), nil
		case "pi":
			return Pi, nil
		}
		return S(t.text), nil
	case tokLParen:
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if r := p.next(); r.kind != tokRParen {
			return nil, p.errorf(r, "expected ')'")
		}
		return e, nil
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of input")
	}
	return nil, p.errorf(t, "unexpected %q", t.text)
}
