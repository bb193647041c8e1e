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

// Package expr is the expression model: one flat Expr struct carrying a
// Kind discriminant and only the fields relevant to that Kind, the same
// closed-variant shape the teacher uses for parser2.Term/Special. Keeping
// one struct instead of an interface per construct means the engine
// dispatches with a single exhaustive switch instead of a type switch per
// node, and new fields are free to add without touching every existing
// variant's method set.
package expr

import (
	"fmt"
	"strings"

	"github.com/dvoran/pegcore/charclass"
	"github.com/dvoran/pegcore/position"
)

// Kind discriminates the PEG construct an Expr represents.
type Kind int

const (
	Literal Kind = iota
	CharClass
	Any
	Reference
	BackReference
	Cut
	Dictionary
	Sequence
	Choice
	Group
	ZeroOrMore
	OneOrMore
	Optional
	Repetition
	And
	Not
	TokenBoundary
	Ignore
	Capture
	CaptureScope
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "Literal"
	case CharClass:
		return "CharClass"
	case Any:
		return "Any"
	case Reference:
		return "Reference"
	case BackReference:
		return "BackReference"
	case Cut:
		return "Cut"
	case Dictionary:
		return "Dictionary"
	case Sequence:
		return "Sequence"
	case Choice:
		return "Choice"
	case Group:
		return "Group"
	case ZeroOrMore:
		return "ZeroOrMore"
	case OneOrMore:
		return "OneOrMore"
	case Optional:
		return "Optional"
	case Repetition:
		return "Repetition"
	case And:
		return "And"
	case Not:
		return "Not"
	case TokenBoundary:
		return "TokenBoundary"
	case Ignore:
		return "Ignore"
	case Capture:
		return "Capture"
	case CaptureScope:
		return "CaptureScope"
	default:
		return "Unknown"
	}
}

// Unbounded marks Repetition.Max as having no upper bound ("{n,}").
const Unbounded = -1

// Expr is one node of the compiled expression tree. Only the fields
// documented for its Kind are meaningful; the rest are zero.
type Expr struct {
	Kind Kind
	Span position.Span

	// Literal.
	Text            string
	CaseInsensitive bool

	// CharClass.
	Class *charclass.CharClass

	// Reference, BackReference, Capture.
	Name string

	// Dictionary.
	Words []string

	// Sequence, Choice: ordered operands.
	Elements []*Expr

	// Group, ZeroOrMore, OneOrMore, Optional, Repetition, And, Not,
	// TokenBoundary, Ignore, Capture, CaptureScope: the single child.
	Sub *Expr

	// Repetition.
	Min int
	Max int // Unbounded for no upper bound; the zero value means a maximum of 0
}

func (e *Expr) String() string {
	if e == nil {
		return "(nil)"
	}
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	b.WriteString("(")
	b.WriteString(e.Kind.String())
	switch e.Kind {
	case Literal:
		fmt.Fprintf(b, " %q", e.Text)
		if e.CaseInsensitive {
			b.WriteString(" i")
		}
	case CharClass:
		fmt.Fprintf(b, " %s", e.Class)
		if e.CaseInsensitive {
			b.WriteString(" i")
		}
	case Reference, BackReference, Capture:
		fmt.Fprintf(b, " %s", e.Name)
	case Dictionary:
		fmt.Fprintf(b, " %v", e.Words)
		if e.CaseInsensitive {
			b.WriteString(" i")
		}
	case Repetition:
		if e.Max == Unbounded {
			fmt.Fprintf(b, " {%d,}", e.Min)
		} else {
			fmt.Fprintf(b, " {%d,%d}", e.Min, e.Max)
		}
	}
	for _, el := range e.Elements {
		b.WriteString(" ")
		el.write(b)
	}
	if e.Sub != nil {
		b.WriteString(" ")
		e.Sub.write(b)
	}
	b.WriteString(")")
}

// Rule represents one PEG rule (Name <- Expr), optionally carrying an
// opaque action source and an error-message override.
type Rule struct {
	Span         position.Span
	Name         string
	Expr         *Expr
	Action       string // opaque; handed to the external action compiler, never inspected here
	ErrorMessage string // overrides the default expectation string, if non-empty
}

// Grammar is the fully parsed and validated collection of rules.
type Grammar struct {
	Rules          map[string]*Rule
	RuleNames      []string // original source order
	StartRule      string
	WhitespaceExpr *Expr // %whitespace, nil if undeclared
	WordExpr       *Expr // %word, nil if undeclared
	Source         string
}

// Rule looks up a rule by name, or returns nil if undefined.
func (g *Grammar) Rule(name string) *Rule {
	if g == nil {
		return nil
	}
	return g.Rules[name]
}

// Start returns the grammar's start rule: the explicit StartRule if set,
// otherwise the first rule in source order.
func (g *Grammar) Start() *Rule {
	if g == nil || len(g.RuleNames) == 0 {
		return nil
	}
	if g.StartRule != "" {
		if r := g.Rules[g.StartRule]; r != nil {
			return r
		}
	}
	return g.Rules[g.RuleNames[0]]
}
