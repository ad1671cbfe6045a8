package visibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	return isSpace(ch) || strings.IndexByte("()!=<>&|\"'", ch) >= 0
}

func lex(input string) ([]token, error) {
	var tokens []token
	emit := func(kind tokenKind, raw string) { tokens = append(tokens, token{kind: kind, raw: raw}) }

	for i := 0; i < len(input); {
		ch := input[i]
		peek := byte(0)
		if i+1 < len(input) {
			peek = input[i+1]
		}

		switch {
		case isSpace(ch):
			i++
		case ch == '(':
			emit(tokLParen, "(")
			i++
		case ch == ')':
			emit(tokRParen, ")")
			i++
		case ch == '!' && peek == '=':
			emit(tokNeq, "!=")
			i += 2
		case ch == '!':
			emit(tokNot, "!")
			i++
		case ch == '=' && peek == '=':
			emit(tokEq, "==")
			i += 2
		case ch == '=':
			return nil, errors.New("visibility: unexpected '='; use '=='")
		case ch == '<' && peek == '=':
			emit(tokLte, "<=")
			i += 2
		case ch == '<':
			emit(tokLt, "<")
			i++
		case ch == '>' && peek == '=':
			emit(tokGte, ">=")
			i += 2
		case ch == '>':
			emit(tokGt, ">")
			i++
		case ch == '&' && peek == '&':
			emit(tokAnd, "&&")
			i += 2
		case ch == '|' && peek == '|':
			emit(tokOr, "||")
			i += 2
		case ch == '&' || ch == '|':
			return nil, fmt.Errorf("visibility: unexpected %q; use %q", string(ch), string([]byte{ch, ch}))
		case ch == '"' || ch == '\'':
			end := i + 1
			for end < len(input) && input[end] != ch {
				if input[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(input) {
				return nil, errors.New("visibility: unterminated string literal")
			}
			body := input[i+1 : end]
			if ch == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, fmt.Errorf("visibility: invalid string literal: %w", err)
			}
			emit(tokString, value)
			i = end + 1
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			word := input[start:i]
			switch lower := strings.ToLower(word); {
			case lower == "true" || lower == "false":
				emit(tokBool, lower)
			case isNumberLiteral(word):
				emit(tokNumber, word)
			default:
				emit(tokIdent, word)
			}
		}
	}
	return tokens, nil
}

func isNumberLiteral(word string) bool {
	if word == "" || strings.IndexByte("0123456789+-.", word[0]) < 0 {
		return false
	}
	_, err := strconv.ParseFloat(word, 64)
	return err == nil
}

type node interface {
	eval(src Source) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(src Source) bool { return n.left.eval(src) || n.right.eval(src) }

type andNode struct{ left, right node }

func (n andNode) eval(src Source) bool { return n.left.eval(src) && n.right.eval(src) }

type notNode struct{ inner node }

func (n notNode) eval(src Source) bool { return !n.inner.eval(src) }

type truthyNode struct{ name string }

func (n truthyNode) eval(src Source) bool {
	value, ok := src.Lookup(n.name)
	if !ok {
		return false
	}
	return truthy(value)
}

type compareNode struct {
	name    string
	op      tokenKind
	operand token
}

func (n compareNode) eval(src Source) bool {
	value, _ := src.Lookup(n.name)
	value = strings.TrimSpace(value)

	switch n.operand.kind {
	case tokNumber:
		want, _ := strconv.ParseFloat(n.operand.raw, 64)
		got, err := strconv.ParseFloat(value, 64)
		if err != nil {
			got = 0
		}
		return compareFloat(got, want, n.op)
	case tokBool:
		want := n.operand.raw == "true"
		got := truthy(value)
		if n.op == tokNeq {
			return got != want
		}
		return got == want
	default:
		if n.op == tokNeq {
			return value != n.operand.raw
		}
		return value == n.operand.raw
	}
}

func compareFloat(got, want float64, op tokenKind) bool {
	switch op {
	case tokEq:
		return got == want
	case tokNeq:
		return got != want
	case tokLt:
		return got < want
	case tokLte:
		return got <= want
	case tokGt:
		return got > want
	case tokGte:
		return got >= want
	default:
		return false
	}
}

func truthy(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	switch strings.ToLower(value) {
	case "no", "false", "off":
		return false
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f != 0
	}
	return true
}

type parser struct {
	tokens []token
	pos    int
	names  []string
}

func (p *parser) parse() (node, error) {
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("visibility: unexpected token %q", p.tokens[p.pos].raw)
	}
	return root, nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(tokAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.match(tokNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.match(tokLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(tokRParen) {
			return nil, errors.New("visibility: missing closing ')'")
		}
		return inner, nil
	}

	if p.pos >= len(p.tokens) {
		return nil, errors.New("visibility: incomplete expression")
	}
	ident := p.tokens[p.pos]
	if ident.kind != tokIdent {
		return nil, fmt.Errorf("visibility: expected field name, got %q", ident.raw)
	}
	p.pos++
	p.remember(ident.raw)

	if p.pos >= len(p.tokens) {
		return truthyNode{name: ident.raw}, nil
	}
	op := p.tokens[p.pos].kind
	switch op {
	case tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte:
	default:
		return truthyNode{name: ident.raw}, nil
	}
	p.pos++

	if p.pos >= len(p.tokens) {
		return nil, fmt.Errorf("visibility: missing operand after %s", ident.raw)
	}
	operand := p.tokens[p.pos]
	p.pos++
	switch operand.kind {
	case tokString, tokNumber, tokBool:
	case tokIdent:
		// Bare words compare as strings: `realEstateYN == yes`.
		operand.kind = tokString
	default:
		return nil, fmt.Errorf("visibility: expected literal, got %q", operand.raw)
	}
	if op != tokEq && op != tokNeq && operand.kind != tokNumber {
		return nil, fmt.Errorf("visibility: ordering operator on %s needs a number", ident.raw)
	}
	return compareNode{name: ident.raw, op: op, operand: operand}, nil
}

func (p *parser) match(kind tokenKind) bool {
	if p.pos < len(p.tokens) && p.tokens[p.pos].kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) remember(name string) {
	for _, existing := range p.names {
		if existing == name {
			return
		}
	}
	p.names = append(p.names, name)
}
