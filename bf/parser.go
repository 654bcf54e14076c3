package bf

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrSyntax is returned when a formula cannot be parsed.
var ErrSyntax = errors.New("syntax error")

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNot
	tokAnd
	tokOr
	tokImplies
	tokEq
	tokLParen
	tokRParen
	tokTrue
	tokFalse
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// Operator spellings, longest first so that "<->" wins over "<" or "-".
var operators = []struct {
	text string
	kind tokenKind
}{
	{"<->", tokEq}, {"<=>", tokEq}, {"->", tokImplies}, {"=>", tokImplies},
	{"&&", tokAnd}, {"||", tokOr},
	{"↔", tokEq}, {"=", tokEq}, {"→", tokImplies}, {"⇒", tokImplies},
	{"∧", tokAnd}, {"&", tokAnd}, {"∨", tokOr}, {"|", tokOr},
	{"~", tokNot}, {"¬", tokNot}, {"!", tokNot},
	{"(", tokLParen}, {")", tokRParen}, {"⊤", tokTrue}, {"⊥", tokFalse},
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) skipSpaces() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

// operator returns the operator starting at pos, if any.
func (l *lexer) operator(pos int) (string, tokenKind, bool) {
	for _, op := range operators {
		if strings.HasPrefix(l.input[pos:], op.text) {
			return op.text, op.kind, true
		}
	}
	return "", tokEOF, false
}

// word reads a run of non-space, non-operator characters.
func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.input) {
		if _, _, ok := l.operator(l.pos); ok {
			break
		}
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	return l.input[start:l.pos]
}

func (l *lexer) next() token {
	l.skipSpaces()
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}
	}
	start := l.pos
	if text, kind, ok := l.operator(l.pos); ok {
		l.pos += len(text)
		return token{kind: kind, text: text, pos: start}
	}
	words := []string{l.word()}
	for {
		save := l.pos
		l.skipSpaces()
		if l.pos >= len(l.input) {
			break
		}
		if _, _, ok := l.operator(l.pos); ok {
			l.pos = save
			break
		}
		words = append(words, l.word())
	}
	return token{kind: tokIdent, text: strings.Join(words, " "), pos: start}
}

type parser struct {
	lex   lexer
	token token // Last token read
}

// Parse parses the formula from the given string.
// It returns the corresponding Formula.
// Operators are, from lowest to highest priority:
//
// - for an equivalence, "↔", "<->", "<=>" or "=",
// - for an implication, "→", "->" or "=>",
// - for a disjunction, "∨", "|" or "||",
// - for a conjunction, "∧", "&" or "&&",
// - for a negation, the "~", "¬" or "!" unary operators.
//
// Parentheses can be used to group subformulas.
// Implication and equivalence are right-associative.
func Parse(expr string) (Formula, error) {
	p := parser{lex: lexer{input: expr}}
	p.scan()
	f, err := p.parseEquiv()
	if err != nil {
		return nil, err
	}
	if p.token.kind != tokEOF {
		return nil, p.errorf("unexpected token %q", p.token.text)
	}
	return f, nil
}

func (p *parser) scan() {
	p.token = p.lex.next()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w at position %d: %s", ErrSyntax, p.token.pos, fmt.Sprintf(format, args...))
}

func (p *parser) parseEquiv() (Formula, error) {
	f, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	if p.token.kind == tokEq {
		p.scan()
		f2, err := p.parseEquiv()
		if err != nil {
			return nil, err
		}
		return Eq(f, f2), nil
	}
	return f, nil
}

func (p *parser) parseImplies() (Formula, error) {
	f, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.token.kind == tokImplies {
		p.scan()
		f2, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return Implies(f, f2), nil
	}
	return f, nil
}

func (p *parser) parseOr() (Formula, error) {
	f, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	subs := []Formula{f}
	for p.token.kind == tokOr {
		p.scan()
		f2, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		subs = append(subs, f2)
	}
	if len(subs) == 1 {
		return f, nil
	}
	return Or(subs...), nil
}

func (p *parser) parseAnd() (Formula, error) {
	f, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	subs := []Formula{f}
	for p.token.kind == tokAnd {
		p.scan()
		f2, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		subs = append(subs, f2)
	}
	if len(subs) == 1 {
		return f, nil
	}
	return And(subs...), nil
}

func (p *parser) parseNot() (Formula, error) {
	if p.token.kind == tokNot {
		p.scan()
		f, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not(f), nil
	}
	return p.parseBasic()
}

func (p *parser) parseBasic() (Formula, error) {
	switch p.token.kind {
	case tokEOF:
		return nil, p.errorf("expected expression, found end of input")
	case tokLParen:
		p.scan()
		f, err := p.parseEquiv()
		if err != nil {
			return nil, err
		}
		if p.token.kind != tokRParen {
			if p.token.kind == tokEOF {
				return nil, p.errorf("expected closing parenthesis, found end of input")
			}
			return nil, p.errorf("expected closing parenthesis, found %q", p.token.text)
		}
		p.scan()
		return f, nil
	case tokIdent:
		defer p.scan()
		return Var(p.token.text), nil
	case tokTrue:
		p.scan()
		return True, nil
	case tokFalse:
		p.scan()
		return False, nil
	default:
		return nil, p.errorf("unexpected token %q", p.token.text)
	}
}
