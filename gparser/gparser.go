// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gparser is the recursive-descent grammar parser: it turns the
// lexer's token stream into an *expr.Grammar. Grammar size is capped well
// below what makes eager tokenisation wasteful, so the parser reads the
// whole token stream up front (like the teacher's bootstrap
// parser/parser.go reads the whole grammar source with bufio.Scanner
// before building any rule) rather than pulling tokens lazily; this also
// gives the one-token-of-lookahead the Rule/Sequence disambiguation
// needs for free.
package gparser

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/dvoran/pegcore/charclass"
	"github.com/dvoran/pegcore/expr"
	"github.com/dvoran/pegcore/lexer"
	"github.com/dvoran/pegcore/position"
)

func parseCharClass(body string) (*charclass.CharClass, error) {
	return charclass.Parse(body)
}

// Parser holds parser state over a pre-tokenised grammar source.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse tokenises and parses source into a Grammar. It does not run the
// validator; call validate.Check on the result.
func Parse(source string) (*expr.Grammar, error) {
	l := lexer.New(source)
	var toks []lexer.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == lexer.Eof {
			break
		}
	}
	p := &Parser{toks: toks}
	return p.parseGrammar(source)
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) at(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) isOp(text string) bool {
	t := p.cur()
	return t.Kind == lexer.Operator && t.Text == text
}

func (p *Parser) expectOp(text string) (lexer.Token, error) {
	if !p.isOp(text) {
		return lexer.Token{}, p.errorf("expected %q, got %s %q", text, p.cur().Kind, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	log.V(3).Infof("grammar parse error at %s: %s", p.cur().Span.Start, msg)
	return &ParseError{Span: p.cur().Span, Message: msg}
}

// ParseError is a semantic error raised while parsing the grammar source.
type ParseError struct {
	Span    position.Span
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Span.Start)
}

func (p *Parser) parseGrammar(source string) (*expr.Grammar, error) {
	g := &expr.Grammar{Rules: make(map[string]*expr.Rule), Source: source}
	for p.cur().Kind != lexer.Eof {
		if p.cur().Kind == lexer.Error {
			return nil, &ParseError{Span: p.cur().Span, Message: p.cur().Text}
		}
		if p.cur().Kind == lexer.Directive {
			if err := p.parseDirective(g); err != nil {
				return nil, err
			}
			continue
		}
		if p.cur().Kind == lexer.Identifier {
			rule, err := p.parseRule()
			if err != nil {
				return nil, err
			}
			// Last definition shadows earlier ones. The name is listed
			// again in RuleNames so the validator can report it as a
			// non-fatal diagnostic.
			g.RuleNames = append(g.RuleNames, rule.Name)
			g.Rules[rule.Name] = rule
			continue
		}
		return nil, p.errorf("expected a rule or directive, got %s %q", p.cur().Kind, p.cur().Text)
	}
	return g, nil
}

func (p *Parser) parseDirective(g *expr.Grammar) error {
	name := p.advance().Text
	if _, err := p.expectOp("<-"); err != nil {
		return err
	}
	e, err := p.parseChoice()
	if err != nil {
		return err
	}
	switch name {
	case "whitespace":
		g.WhitespaceExpr = e
	case "word":
		g.WordExpr = e
	default:
		// Unknown directive names are ignored, per the grammar surface
		// contract; the expression is still parsed (and discarded) so
		// the token stream stays in sync.
	}
	return nil
}

func (p *Parser) parseRule() (*expr.Rule, error) {
	start := p.cur().Span
	name := p.advance().Text
	if _, err := p.expectOp("<-"); err != nil {
		return nil, err
	}
	e, err := p.parseChoice()
	if err != nil {
		return nil, err
	}
	rule := &expr.Rule{Name: name, Expr: e}
	if p.cur().Kind == lexer.Action {
		rule.Action = p.advance().Text
	}
	rule.Span = position.Join(start, e.Span)
	return rule, nil
}

// atRuleStart reports whether the parser is positioned at an identifier
// that begins a new rule (Identifier directly followed by '<-'), the
// one-token-lookahead disambiguation the grammar surface requires so a
// Sequence knows where to stop consuming Primaries.
func (p *Parser) atRuleStart() bool {
	return p.cur().Kind == lexer.Identifier && p.at(1).Kind == lexer.Operator && p.at(1).Text == "<-"
}

func (p *Parser) parseChoice() (*expr.Expr, error) {
	start := p.cur().Span
	first, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	alts := []*expr.Expr{first}
	for p.isOp("/") {
		p.advance()
		next, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &expr.Expr{Kind: expr.Choice, Elements: alts, Span: position.Join(start, alts[len(alts)-1].Span)}, nil
}

func (p *Parser) parseSequence() (*expr.Expr, error) {
	start := p.cur().Span
	var elems []*expr.Expr
	for p.canStartPrefix() {
		e, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if len(elems) == 0 {
		return nil, p.errorf("expected an expression, got %s %q", p.cur().Kind, p.cur().Text)
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return &expr.Expr{Kind: expr.Sequence, Elements: elems, Span: position.Join(start, elems[len(elems)-1].Span)}, nil
}

func (p *Parser) canStartPrefix() bool {
	if p.atRuleStart() || p.cur().Kind == lexer.Eof || p.cur().Kind == lexer.Directive {
		return false
	}
	if p.isOp("/") || p.isOp(")") || p.isOp(">") {
		return false
	}
	if p.cur().Kind == lexer.Action {
		return false
	}
	switch p.cur().Kind {
	case lexer.Identifier, lexer.StringLit, lexer.CharClassLit:
		return true
	}
	if p.isOp("&") || p.isOp("!") || p.isOp("~") || p.isOp(".") || p.isOp("↑") ||
		p.isOp("(") || p.isOp("<") || p.isOp("$") {
		return true
	}
	return false
}

func (p *Parser) parsePrefix() (*expr.Expr, error) {
	start := p.cur().Span
	switch {
	case p.isOp("&"):
		p.advance()
		sub, err := p.parseSuffix()
		if err != nil {
			return nil, err
		}
		return &expr.Expr{Kind: expr.And, Sub: sub, Span: position.Join(start, sub.Span)}, nil
	case p.isOp("!"):
		p.advance()
		sub, err := p.parseSuffix()
		if err != nil {
			return nil, err
		}
		return &expr.Expr{Kind: expr.Not, Sub: sub, Span: position.Join(start, sub.Span)}, nil
	case p.isOp("~"):
		p.advance()
		sub, err := p.parseSuffix()
		if err != nil {
			return nil, err
		}
		return &expr.Expr{Kind: expr.Ignore, Sub: sub, Span: position.Join(start, sub.Span)}, nil
	default:
		return p.parseSuffix()
	}
}

func (p *Parser) parseSuffix() (*expr.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("*"):
			end := p.advance().Span
			e = &expr.Expr{Kind: expr.ZeroOrMore, Sub: e, Span: position.Join(e.Span, end)}
		case p.isOp("+"):
			end := p.advance().Span
			e = &expr.Expr{Kind: expr.OneOrMore, Sub: e, Span: position.Join(e.Span, end)}
		case p.isOp("?"):
			end := p.advance().Span
			e = &expr.Expr{Kind: expr.Optional, Sub: e, Span: position.Join(e.Span, end)}
		case p.isOp("{"):
			p.advance()
			min, max, err := p.parseRepetitionBounds()
			if err != nil {
				return nil, err
			}
			end, err := p.expectOp("}")
			if err != nil {
				return nil, err
			}
			e = &expr.Expr{Kind: expr.Repetition, Sub: e, Min: min, Max: max, Span: position.Join(e.Span, end.Span)}
		default:
			return e, nil
		}
	}
}

func (p *Parser) parseRepetitionBounds() (min, max int, err error) {
	if p.cur().Kind != lexer.IntLit {
		return 0, 0, p.errorf("expected an integer in repetition bounds, got %s %q", p.cur().Kind, p.cur().Text)
	}
	min = p.advance().Value
	if !p.isOp(",") {
		return min, min, nil
	}
	p.advance()
	if p.isOp("}") {
		return min, expr.Unbounded, nil
	}
	if p.cur().Kind != lexer.IntLit {
		return 0, 0, p.errorf("expected an integer or '}' in repetition bounds, got %s %q", p.cur().Kind, p.cur().Text)
	}
	max = p.advance().Value
	if max < min {
		return 0, 0, p.errorf("repetition upper bound %d is less than lower bound %d", max, min)
	}
	return min, max, nil
}

func (p *Parser) parsePrimary() (*expr.Expr, error) {
	tok := p.cur()
	switch {
	case tok.Kind == lexer.Identifier:
		p.advance()
		return &expr.Expr{Kind: expr.Reference, Name: tok.Text, Span: tok.Span}, nil
	case tok.Kind == lexer.StringLit:
		p.advance()
		return &expr.Expr{Kind: expr.Literal, Text: tok.Text, CaseInsensitive: tok.CaseInsensitive, Span: tok.Span}, nil
	case tok.Kind == lexer.CharClassLit:
		p.advance()
		cc, err := parseCharClass(tok.Text)
		if err != nil {
			return nil, &ParseError{Span: tok.Span, Message: err.Error()}
		}
		return &expr.Expr{Kind: expr.CharClass, Class: cc, CaseInsensitive: tok.CaseInsensitive, Span: tok.Span}, nil
	case p.isOp("."):
		p.advance()
		return &expr.Expr{Kind: expr.Any, Span: tok.Span}, nil
	case p.isOp("↑"):
		p.advance()
		return &expr.Expr{Kind: expr.Cut, Span: tok.Span}, nil
	case p.isOp("("):
		p.advance()
		inner, err := p.parseChoice()
		if err != nil {
			return nil, err
		}
		end, err := p.expectOp(")")
		if err != nil {
			return nil, err
		}
		return &expr.Expr{Kind: expr.Group, Sub: inner, Span: position.Join(tok.Span, end.Span)}, nil
	case p.isOp("<"):
		p.advance()
		inner, err := p.parseChoice()
		if err != nil {
			return nil, err
		}
		end, err := p.expectOp(">")
		if err != nil {
			return nil, err
		}
		return &expr.Expr{Kind: expr.TokenBoundary, Sub: inner, Span: position.Join(tok.Span, end.Span)}, nil
	case p.isOp("$"):
		p.advance()
		if p.cur().Kind != lexer.Identifier {
			return nil, p.errorf("expected a capture name after '$', got %s %q", p.cur().Kind, p.cur().Text)
		}
		name := p.advance().Text
		if p.isOp("<") {
			p.advance()
			inner, err := p.parseChoice()
			if err != nil {
				return nil, err
			}
			end, err := p.expectOp(">")
			if err != nil {
				return nil, err
			}
			return &expr.Expr{Kind: expr.Capture, Name: name, Sub: inner, Span: position.Join(tok.Span, end.Span)}, nil
		}
		return &expr.Expr{Kind: expr.BackReference, Name: name, Span: tok.Span}, nil
	}
	return nil, p.errorf("expected an expression, got %s %q", tok.Kind, tok.Text)
}
