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

// Package validate performs the single structural pass over a parsed
// grammar that the engine depends on: every Reference must resolve, an
// explicit start rule must exist, no rule may be left-recursive, and
// duplicate rule definitions must be reported even though gparser's
// last-wins behaviour already made the Grammar usable.
package validate

import (
	"fmt"

	"github.com/dvoran/pegcore/expr"
	"github.com/dvoran/pegcore/position"
)

// SemanticError is returned for an undefined start rule, the first
// unresolved reference found, or a left-recursive rule;
// per spec this aborts grammar loading, the engine is never invoked.
type SemanticError struct {
	Span    position.Span
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Span.Start)
}

// Warning is a non-fatal diagnostic collected during validation, e.g. a
// shadowed rule name.
type Warning struct {
	Span    position.Span
	Message string
}

// Check walks every rule's expression tree, in source order, and returns
// the first unresolved Reference as a *SemanticError, plus any
// non-fatal Warnings (duplicate rule names). An undefined start rule and
// left recursion are also reported as a *SemanticError. On success it
// returns the same Grammar unchanged.
func Check(g *expr.Grammar) (*expr.Grammar, []Warning, error) {
	var warnings []Warning
	seen := make(map[string]bool)
	for _, name := range g.RuleNames {
		if seen[name] {
			warnings = append(warnings, Warning{
				Span:    g.Rules[name].Span,
				Message: fmt.Sprintf("rule %q is defined more than once; the last definition wins", name),
			})
		}
		seen[name] = true
	}
	if g.StartRule != "" {
		if _, ok := g.Rules[g.StartRule]; !ok {
			return nil, warnings, &SemanticError{Message: fmt.Sprintf("start rule %q is not defined", g.StartRule)}
		}
	}
	for _, name := range g.RuleNames {
		rule := g.Rules[name]
		if err := checkExpr(g, rule.Expr); err != nil {
			return nil, warnings, err
		}
	}
	if g.WhitespaceExpr != nil {
		if err := checkExpr(g, g.WhitespaceExpr); err != nil {
			return nil, warnings, err
		}
	}
	if g.WordExpr != nil {
		if err := checkExpr(g, g.WordExpr); err != nil {
			return nil, warnings, err
		}
	}
	if err := checkLeftRecursion(g); err != nil {
		return nil, warnings, err
	}
	return g, warnings, nil
}

// leftCorners collects the set of rule names e may call into at its own
// starting offset, without first consuming input: the first element of a
// Sequence, every alternative of a Choice, predicate and repetition bodies
// (which are always attempted at the entry offset even if they go on to
// match zero or more times), and Reference itself. Terminals contribute
// nothing, since matching one always consumes input or fails outright.
func leftCorners(e *expr.Expr, out map[string]bool) {
	if e == nil {
		return
	}
	switch e.Kind {
	case expr.Reference:
		out[e.Name] = true
	case expr.Sequence:
		if len(e.Elements) > 0 {
			leftCorners(e.Elements[0], out)
		}
	case expr.Choice:
		for _, el := range e.Elements {
			leftCorners(el, out)
		}
	case expr.Group, expr.ZeroOrMore, expr.OneOrMore, expr.Optional, expr.Repetition, expr.And, expr.Not,
		expr.TokenBoundary, expr.Ignore, expr.Capture, expr.CaptureScope:
		leftCorners(e.Sub, out)
	}
}

// checkLeftRecursion walks the graph of each rule's left corners looking
// for a cycle back to the rule that started it: a grammar where expanding
// the leftmost alternative can reach the same rule again before any input
// is consumed recurses without bound, regardless of packrat memoization
// (the cache for (rule, offset) isn't populated until the first call
// returns, so a second nested call at the same offset simply recurses
// again). Reports the first such cycle found, rules walked in source
// order.
func checkLeftRecursion(g *expr.Grammar) error {
	corners := make(map[string]map[string]bool, len(g.RuleNames))
	for _, name := range g.RuleNames {
		set := make(map[string]bool)
		leftCorners(g.Rules[name].Expr, set)
		corners[name] = set
	}
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.RuleNames))
	var path []string
	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			start := 0
			for i, n := range path {
				if n == name {
					start = i
					break
				}
			}
			cycle := append(append([]string{}, path[start:]...), name)
			return &SemanticError{
				Span:    g.Rules[name].Span,
				Message: fmt.Sprintf("left recursion detected: %s", joinCycle(cycle)),
			}
		}
		color[name] = gray
		path = append(path, name)
		for next := range corners[name] {
			if _, ok := g.Rules[next]; !ok {
				continue // unresolved references are reported by checkExpr
			}
			if err := visit(next); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		return nil
	}
	for _, name := range g.RuleNames {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinCycle(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += " -> "
		}
		s += n
	}
	return s
}

func checkExpr(g *expr.Grammar, e *expr.Expr) error {
	if e == nil {
		return nil
	}
	if e.Kind == expr.Reference {
		if _, ok := g.Rules[e.Name]; !ok {
			return &SemanticError{Span: e.Span, Message: fmt.Sprintf("undefined rule %q", e.Name)}
		}
	}
	for _, el := range e.Elements {
		if err := checkExpr(g, el); err != nil {
			return err
		}
	}
	if e.Sub != nil {
		if err := checkExpr(g, e.Sub); err != nil {
			return err
		}
	}
	return nil
}
