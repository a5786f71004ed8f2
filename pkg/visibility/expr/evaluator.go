package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-valuation/pkg/visibility"
)

// Evaluator is a small applicability rule evaluator.
//
// Grammar:
//
//	rule    = or
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" or ")" | ident [ ("==" | "!=") literal ]
//
// Literals are quoted strings, numbers, true/false and null. A bare identifier
// is true when its value is set and non-zero. Compiled rules are cached.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*Rule
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// New returns an Evaluator with an empty rule cache.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]*Rule)}
}

// Eval compiles rule (once) and evaluates it against ctx. An empty rule is
// always true.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	compiled, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	return compiled.Eval(ctx), nil
}

func (e *Evaluator) compile(rule string) (*Rule, error) {
	key := strings.TrimSpace(rule)
	e.mu.RLock()
	compiled, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := Compile(key)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[key] = compiled
	e.mu.Unlock()
	return compiled, nil
}

// Rule is a parsed expression ready for repeated evaluation.
type Rule struct {
	source string
	root   node
}

// Compile parses rule. An empty rule compiles to one that is always true.
func Compile(rule string) (*Rule, error) {
	src := strings.TrimSpace(rule)
	if src == "" {
		return &Rule{root: constNode(true)}, nil
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("visibility/expr: unexpected %q in %q", p.peek().text, src)
	}
	return &Rule{source: src, root: root}, nil
}

// MustCompile is Compile that panics; intended for package-level rule tables.
func MustCompile(rule string) *Rule {
	r, err := Compile(rule)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the rule source.
func (r *Rule) String() string { return r.source }

// Eval evaluates the rule. Unknown identifiers read as null.
func (r *Rule) Eval(ctx visibility.Context) bool {
	if r == nil || r.root == nil {
		return true
	}
	return r.root.eval(ctx)
}

type kind int

const (
	kIdent kind = iota
	kString
	kNumber
	kBool
	kNull
	kEq
	kNeq
	kAnd
	kOr
	kNot
	kLParen
	kRParen
)

type tok struct {
	kind kind
	text string
}

func lex(src string) ([]tok, error) {
	var out []tok
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			out = append(out, tok{kLParen, "("})
			i++
		case c == ')':
			out = append(out, tok{kRParen, ")"})
			i++
		case strings.HasPrefix(src[i:], "=="):
			out = append(out, tok{kEq, "=="})
			i += 2
		case strings.HasPrefix(src[i:], "!="):
			out = append(out, tok{kNeq, "!="})
			i += 2
		case strings.HasPrefix(src[i:], "&&"):
			out = append(out, tok{kAnd, "&&"})
			i += 2
		case strings.HasPrefix(src[i:], "||"):
			out = append(out, tok{kOr, "||"})
			i += 2
		case c == '!':
			out = append(out, tok{kNot, "!"})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return nil, errors.New("visibility/expr: unterminated string literal")
			}
			out = append(out, tok{kString, src[i+1 : i+1+end]})
			i += end + 2
		default:
			start := i
			for i < len(src) && !strings.ContainsRune(" \t\n\r()!=&|\"'", rune(src[i])) {
				i++
			}
			if start == i {
				return nil, fmt.Errorf("visibility/expr: unexpected %q", string(c))
			}
			out = append(out, classify(src[start:i]))
		}
	}
	return out, nil
}

func classify(word string) tok {
	switch strings.ToLower(word) {
	case "true", "false":
		return tok{kBool, strings.ToLower(word)}
	case "null", "nil":
		return tok{kNull, "null"}
	}
	if _, err := strconv.ParseFloat(word, 64); err == nil {
		return tok{kNumber, word}
	}
	return tok{kIdent, word}
}

type parser struct {
	toks []tok
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() tok {
	if p.done() {
		return tok{}
	}
	return p.toks[p.pos]
}

func (p *parser) accept(k kind) bool {
	if !p.done() && p.toks[p.pos].kind == k {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept(kOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept(kAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.accept(kNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.accept(kLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(kRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}
	if p.done() {
		return nil, errors.New("visibility/expr: unexpected end of rule")
	}
	ident := p.peek()
	if ident.kind != kIdent {
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", ident.text)
	}
	p.pos++

	var negate bool
	switch {
	case p.accept(kEq):
	case p.accept(kNeq):
		negate = true
	default:
		return truthyNode(ident.text), nil
	}
	if p.done() {
		return nil, errors.New("visibility/expr: missing literal")
	}
	lit := p.peek()
	p.pos++
	switch lit.kind {
	case kString, kNumber, kBool, kNull, kIdent:
	default:
		return nil, fmt.Errorf("visibility/expr: expected literal, got %q", lit.text)
	}
	return cmpNode{ident: ident.text, lit: lit, negate: negate}, nil
}

type node interface {
	eval(ctx visibility.Context) bool
}

type constNode bool

func (n constNode) eval(visibility.Context) bool { return bool(n) }

type orNode struct{ l, r node }

func (n orNode) eval(ctx visibility.Context) bool { return n.l.eval(ctx) || n.r.eval(ctx) }

type andNode struct{ l, r node }

func (n andNode) eval(ctx visibility.Context) bool { return n.l.eval(ctx) && n.r.eval(ctx) }

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) bool { return !n.inner.eval(ctx) }

type truthyNode string

func (n truthyNode) eval(ctx visibility.Context) bool {
	v, ok := resolve(ctx, string(n))
	return ok && truthy(v)
}

type cmpNode struct {
	ident  string
	lit    tok
	negate bool
}

func (n cmpNode) eval(ctx visibility.Context) bool {
	v, ok := resolve(ctx, n.ident)
	eq := equal(v, ok, n.lit)
	if n.negate {
		return !eq
	}
	return eq
}

func equal(v any, present bool, lit tok) bool {
	switch lit.kind {
	case kNull:
		return !present || v == nil
	case kBool:
		if s, ok := v.(string); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(s))
			return err == nil && b == (lit.text == "true")
		}
		return truthy(v) == (lit.text == "true")
	case kNumber:
		want, _ := strconv.ParseFloat(lit.text, 64)
		got, ok := number(v)
		return ok && got == want
	default:
		return present && fmt.Sprint(v) == lit.text
	}
}

func resolve(ctx visibility.Context, ident string) (any, bool) {
	if rest, ok := strings.CutPrefix(ident, "extras."); ok {
		v, found := ctx.Extras[rest]
		return v, found
	}
	v, found := ctx.Values[ident]
	return v, found
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	case fmt.Stringer:
		return t.String() != ""
	}
	if f, ok := number(v); ok {
		return f != 0
	}
	return strings.TrimSpace(fmt.Sprint(v)) != ""
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
