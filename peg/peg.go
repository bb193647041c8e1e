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

// Package peg is the toolkit's facade: it wires the lexer, the grammar
// parser, the validator and the execution engine behind the four entry
// points a caller actually needs, the same role parser.New/parser2.New
// played for the teacher's own bootstrap grammar.
package peg

import (
	"fmt"

	"github.com/dvoran/pegcore/diag"
	"github.com/dvoran/pegcore/engine"
	"github.com/dvoran/pegcore/expr"
	"github.com/dvoran/pegcore/gparser"
	"github.com/dvoran/pegcore/recovery"
	"github.com/dvoran/pegcore/tree"
	"github.com/dvoran/pegcore/validate"
)

// Config selects the parser's optional behaviors. The zero value disables
// packrat memoization, recovery and trivia capture, matching a minimal
// one-shot PEG evaluator.
type Config struct {
	// Packrat enables memoization of (rule, offset) results.
	Packrat bool
	// RecoveryStrategy selects how a match failure is handled; see
	// package recovery.
	RecoveryStrategy recovery.Strategy
	// CaptureTrivia attaches %whitespace matches to the CST as Trivia
	// rather than merely skipping over them.
	CaptureTrivia bool
	// CascadeBound overrides recovery.DefaultCascadeBound when > 0.
	CascadeBound int
}

func (c Config) toEngineConfig() engine.Config {
	return engine.Config{
		Packrat:       c.Packrat,
		Recovery:      c.RecoveryStrategy,
		CaptureTrivia: c.CaptureTrivia,
		CascadeBound:  c.CascadeBound,
	}
}

// Parser is a compiled, validated grammar ready to run against input.
type Parser struct {
	grammar  *expr.Grammar
	warnings []validate.Warning
	config   Config
	eng      *engine.Engine
}

// New compiles source through the lexer, the grammar parser and the
// validator, and returns a Parser bound to the resulting grammar. Actions
// may be nil; rules with no bound Action contribute no AST value.
func New(source string, actions map[string]engine.Action, cfg Config) (*Parser, error) {
	g, err := gparser.Parse(source)
	if err != nil {
		return nil, err
	}
	g, warnings, err := validate.Check(g)
	if err != nil {
		return nil, err
	}
	return &Parser{
		grammar:  g,
		warnings: warnings,
		config:   cfg,
		eng:      engine.New(g, actions, cfg.toEngineConfig()),
	}, nil
}

// Grammar returns the compiled, validated grammar.
func (p *Parser) Grammar() *expr.Grammar { return p.grammar }

// Warnings returns the non-fatal diagnostics recorded while validating
// the grammar (e.g. a rule redefined later in the source).
func (p *Parser) Warnings() []validate.Warning { return p.warnings }

// Parse runs the start rule's bound Action chain over input and returns
// its AST value.
func (p *Parser) Parse(input string) (any, error) {
	return p.eng.Parse(input)
}

// ParseCst runs the start rule over input and returns the lossless CST.
// In recovery.Advanced mode, a failing or partial parse still returns a
// best-effort tree with synthesised Error nodes instead of an error.
func (p *Parser) ParseCst(input string) (*tree.CstNode, error) {
	return p.eng.ParseCst(input)
}

// ParseAst runs the start rule over input and returns the trivia-stripped
// AST: each node's Value is the result of its rule's bound Action (nil
// for rules with none bound). Unlike Parse, which returns only the start
// rule's own value, ParseAst exposes the whole valued tree.
func (p *Parser) ParseAst(input string) (*tree.AstNode, error) {
	_, ast, err := p.eng.ParseCstAndAst(input)
	return ast, err
}

// ParseResult is the outcome of ParseCstWithDiagnostics: the best-effort
// CST, the source it was parsed from (needed to render diagnostics), and
// every diagnostic recorded while recovering.
type ParseResult struct {
	Node        *tree.CstNode
	Source      string
	Diagnostics []diag.Diagnostic
}

// Render formats every diagnostic in r against its source, in the
// Rust-style multi-line form.
func (r ParseResult) Render(filename string) string {
	renderer := diag.NewRenderer(filename, r.Source)
	return renderer.FormatAll(r.Diagnostics)
}

// ParseCstWithDiagnostics always parses in recovery.Advanced mode for
// this one call, regardless of the Parser's configured strategy, and
// returns the partial tree together with every diagnostic recorded.
func (p *Parser) ParseCstWithDiagnostics(input string) ParseResult {
	res := p.eng.ParseCstWithDiagnostics(input)
	diags := make([]diag.Diagnostic, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		diags[i] = diag.Diagnostic{
			Severity: diag.Error,
			Code:     "unexpected-input",
			Message:  d.Message,
			Span:     d.Span,
			Help:     d.Help,
		}
	}
	return ParseResult{Node: res.Node, Source: input, Diagnostics: diags}
}

// ParseCstFromRule runs a named rule (rather than the grammar's start
// rule) over input, returning the lossless CST for that rule alone. It
// fails if the rule is undefined or does not consume the entire input.
func (p *Parser) ParseCstFromRule(ruleName, input string) (*tree.CstNode, error) {
	if p.grammar.Rule(ruleName) == nil {
		return nil, fmt.Errorf("peg: rule %q is not defined", ruleName)
	}
	sub := *p.grammar
	sub.StartRule = ruleName
	eng := engine.New(&sub, nil, p.config.toEngineConfig())
	return eng.ParseCst(input)
}
