package rules

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// The formula language is a small, total expression language over decimal
// values: arithmetic, comparisons, boolean operators, a conditional
// (cond ? a : b), a handful of numeric functions and named context fields
// (dotted identifiers, e.g. contract.monthly_wage or prior.LIQUID_ANTIG).
// Booleans are represented as decimals: zero is false, anything else true.
// There is no I/O, no assignment and no recursion, so every well-formed
// formula terminates.

// Env resolves identifiers to decimal values during evaluation.
type Env interface {
	Resolve(name string) (decimal.Decimal, bool)
}

// Vars is a map-backed Env.
type Vars map[string]decimal.Decimal

func (v Vars) Resolve(name string) (decimal.Decimal, bool) {
	value, ok := v[name]
	return value, ok
}

// Expr is a compiled formula.
type Expr struct {
	src  string
	root node
}

// Source returns the original formula text.
func (e *Expr) Source() string {
	return e.src
}

// Eval evaluates the formula against the environment.
func (e *Expr) Eval(env Env) (decimal.Decimal, error) {
	return e.root.eval(env)
}

// Refs returns every identifier the formula mentions, dotted form included.
// Used at rule-set load time to reject forward prior references.
func (e *Expr) Refs() []string {
	seen := map[string]bool{}
	var out []string
	e.root.refs(func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	})
	return out
}

// Parse compiles a formula. An empty formula is not valid here; callers
// treat empty conditions as "always true" before reaching Parse.
func Parse(formula string) (*Expr, error) {
	p := &parser{lex: newLexer(formula)}
	p.next()
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, &SyntaxError{Formula: formula, Pos: p.tok.pos, Msg: "entrada inesperada: " + p.tok.text}
	}
	return &Expr{src: formula, root: root}, nil
}

// -- AST --------------------------------------------------------------------

type node interface {
	eval(env Env) (decimal.Decimal, error)
	refs(emit func(string))
}

type numberNode struct{ value decimal.Decimal }

func (n *numberNode) eval(Env) (decimal.Decimal, error) { return n.value, nil }
func (n *numberNode) refs(func(string))                 {}

type identNode struct{ name string }

func (n *identNode) eval(env Env) (decimal.Decimal, error) {
	value, ok := env.Resolve(n.name)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownIdentifier, n.name)
	}
	return value, nil
}

func (n *identNode) refs(emit func(string)) { emit(n.name) }

type unaryNode struct {
	op string
	x  node
}

func (n *unaryNode) eval(env Env) (decimal.Decimal, error) {
	value, err := n.x.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	switch n.op {
	case "-":
		return value.Neg(), nil
	case "!":
		return boolDec(value.IsZero()), nil
	}
	return decimal.Zero, fmt.Errorf("operador unario desconocido %q", n.op)
}

func (n *unaryNode) refs(emit func(string)) { n.x.refs(emit) }

type binaryNode struct {
	op   string
	l, r node
}

func (n *binaryNode) eval(env Env) (decimal.Decimal, error) {
	left, err := n.l.eval(env)
	if err != nil {
		return decimal.Zero, err
	}

	// Short-circuit boolean operators.
	switch n.op {
	case "&&":
		if left.IsZero() {
			return decimal.Zero, nil
		}
		right, err := n.r.eval(env)
		if err != nil {
			return decimal.Zero, err
		}
		return boolDec(!right.IsZero()), nil
	case "||":
		if !left.IsZero() {
			return decimal.NewFromInt(1), nil
		}
		right, err := n.r.eval(env)
		if err != nil {
			return decimal.Zero, err
		}
		return boolDec(!right.IsZero()), nil
	}

	right, err := n.r.eval(env)
	if err != nil {
		return decimal.Zero, err
	}

	switch n.op {
	case "+":
		return left.Add(right), nil
	case "-":
		return left.Sub(right), nil
	case "*":
		return left.Mul(right), nil
	case "/":
		if right.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		return left.Div(right), nil
	case "<":
		return boolDec(left.LessThan(right)), nil
	case "<=":
		return boolDec(left.LessThanOrEqual(right)), nil
	case ">":
		return boolDec(left.GreaterThan(right)), nil
	case ">=":
		return boolDec(left.GreaterThanOrEqual(right)), nil
	case "==":
		return boolDec(left.Equal(right)), nil
	case "!=":
		return boolDec(!left.Equal(right)), nil
	}
	return decimal.Zero, fmt.Errorf("operador desconocido %q", n.op)
}

func (n *binaryNode) refs(emit func(string)) {
	n.l.refs(emit)
	n.r.refs(emit)
}

type condNode struct {
	cond, then, els node
}

func (n *condNode) eval(env Env) (decimal.Decimal, error) {
	cond, err := n.cond.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	if !cond.IsZero() {
		return n.then.eval(env)
	}
	return n.els.eval(env)
}

func (n *condNode) refs(emit func(string)) {
	n.cond.refs(emit)
	n.then.refs(emit)
	n.els.refs(emit)
}

type callNode struct {
	fn   string
	args []node
}

func (n *callNode) eval(env Env) (decimal.Decimal, error) {
	values := make([]decimal.Decimal, len(n.args))
	for i, arg := range n.args {
		value, err := arg.eval(env)
		if err != nil {
			return decimal.Zero, err
		}
		values[i] = value
	}

	switch n.fn {
	case "max":
		if len(values) == 0 {
			return decimal.Zero, fmt.Errorf("max requiere al menos un argumento")
		}
		out := values[0]
		for _, v := range values[1:] {
			if v.GreaterThan(out) {
				out = v
			}
		}
		return out, nil
	case "min":
		if len(values) == 0 {
			return decimal.Zero, fmt.Errorf("min requiere al menos un argumento")
		}
		out := values[0]
		for _, v := range values[1:] {
			if v.LessThan(out) {
				out = v
			}
		}
		return out, nil
	case "abs":
		if len(values) != 1 {
			return decimal.Zero, fmt.Errorf("abs requiere un argumento")
		}
		return values[0].Abs(), nil
	case "floor":
		if len(values) != 1 {
			return decimal.Zero, fmt.Errorf("floor requiere un argumento")
		}
		return values[0].Floor(), nil
	case "ceil":
		if len(values) != 1 {
			return decimal.Zero, fmt.Errorf("ceil requiere un argumento")
		}
		return values[0].Ceil(), nil
	case "round":
		switch len(values) {
		case 1:
			return values[0].Round(2), nil
		case 2:
			return values[0].Round(int32(values[1].IntPart())), nil
		}
		return decimal.Zero, fmt.Errorf("round requiere uno o dos argumentos")
	}
	return decimal.Zero, fmt.Errorf("función desconocida %q", n.fn)
}

func (n *callNode) refs(emit func(string)) {
	for _, arg := range n.args {
		arg.refs(emit)
	}
}

func boolDec(b bool) decimal.Decimal {
	if b {
		return decimal.NewFromInt(1)
	}
	return decimal.Zero
}

// -- Lexer ------------------------------------------------------------------

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokDot
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case isDigit(c):
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
			l.pos++
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], pos: start}, nil

	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil
	}

	// Two-character operators first.
	if l.pos+1 < len(l.src) {
		two := l.src[l.pos : l.pos+2]
		switch two {
		case "<=", ">=", "==", "!=", "&&", "||":
			l.pos += 2
			return token{kind: tokOp, text: two, pos: start}, nil
		}
	}

	l.pos++
	switch c {
	case '+', '-', '*', '/', '<', '>', '!', '?', ':':
		return token{kind: tokOp, text: string(c), pos: start}, nil
	case '(':
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case ',':
		return token{kind: tokComma, text: ",", pos: start}, nil
	case '.':
		return token{kind: tokDot, text: ".", pos: start}, nil
	}
	return token{}, &SyntaxError{Formula: l.src, Pos: start, Msg: "carácter inválido " + string(c)}
}

func isSpace(c byte) bool      { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

// -- Parser -----------------------------------------------------------------

type parser struct {
	lex *lexer
	tok token
	err error
}

func (p *parser) next() {
	if p.err != nil {
		return
	}
	tok, err := p.lex.next()
	if err != nil {
		p.err = err
		p.tok = token{kind: tokEOF, pos: p.lex.pos}
		return
	}
	p.tok = tok
}

func (p *parser) parseExpr() (node, error) {
	return p.parseTernary()
}

func (p *parser) parseTernary() (node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokOp && p.tok.text == "?" {
		p.next()
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokOp || p.tok.text != ":" {
			return nil, p.unexpected("se esperaba ':'")
		}
		p.next()
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &condNode{cond: cond, then: then, els: els}, nil
	}
	return cond, nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && p.tok.text == "||" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "||", l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && p.tok.text == "&&" {
		p.next()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "&&", l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokOp {
		switch p.tok.text {
		case "<", "<=", ">", ">=", "==", "!=":
			op := p.tok.text
			p.next()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &binaryNode{op: op, l: left, r: right}, nil
		}
	}
	return left, nil
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.tok.kind == tokOp && (p.tok.text == "-" || p.tok.text == "!") {
		op := p.tok.text
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, x: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.err != nil {
		return nil, p.err
	}

	switch p.tok.kind {
	case tokNumber:
		value, err := decimal.NewFromString(p.tok.text)
		if err != nil {
			return nil, &SyntaxError{Pos: p.tok.pos, Msg: "número inválido " + p.tok.text}
		}
		p.next()
		return &numberNode{value: value}, nil

	case tokIdent:
		name := p.tok.text
		p.next()

		// Function call
		if p.tok.kind == tokLParen {
			p.next()
			var args []node
			if p.tok.kind != tokRParen {
				for {
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.tok.kind != tokComma {
						break
					}
					p.next()
				}
			}
			if p.tok.kind != tokRParen {
				return nil, p.unexpected("se esperaba ')'")
			}
			p.next()
			return &callNode{fn: name, args: args}, nil
		}

		// Dotted identifier (prior.CODE, contract.monthly_wage, ...)
		parts := []string{name}
		for p.tok.kind == tokDot {
			p.next()
			if p.tok.kind != tokIdent {
				return nil, p.unexpected("se esperaba un identificador tras '.'")
			}
			parts = append(parts, p.tok.text)
			p.next()
		}
		return &identNode{name: strings.Join(parts, ".")}, nil

	case tokLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.unexpected("se esperaba ')'")
		}
		p.next()
		return inner, nil
	}

	return nil, p.unexpected("expresión inválida")
}

func (p *parser) unexpected(msg string) error {
	if p.err != nil {
		return p.err
	}
	return &SyntaxError{Pos: p.tok.pos, Msg: msg}
}
