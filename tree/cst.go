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

// Package tree provides the lossless Concrete Syntax Tree and the
// trivia-stripped Abstract Syntax Tree produced by the engine, plus
// utilities for serializing, diffing and querying them.
//
// CstNode is modelled as one flat struct discriminated by Kind, with only
// the fields relevant to that Kind populated, rather than as an interface
// with one implementation per variant. This follows the teacher's own
// pattern for closed variant sets (see salikh/peg parser2.Term, which
// represents Parens/NegPred/Pred/Capture/CharClass/Literal/Ident as
// optional fields on one struct dispatched over by the grammar compiler)
// and matches the design note to avoid virtual dispatch over a set that
// is closed by construction.
package tree

import (
	"fmt"
	"strings"

	"github.com/dvoran/pegcore/position"
)

// Kind discriminates the variant of a CstNode.
type Kind int

const (
	// NonTerminalKind nodes have Children and no Text.
	NonTerminalKind Kind = iota
	// TerminalKind nodes have no children: a rule match that produced no
	// child nodes, or the unnamed input between a NonTerminal's child nodes.
	TerminalKind
	// TokenKind nodes are produced by a rule whose top-level expression is
	// a TokenBoundary, or by a TokenBoundary nested inside a rule's
	// expression (Rule is then empty); Text holds the captured region verbatim.
	TokenKind
	// ErrorKind nodes are synthesised by the recovery controller.
	ErrorKind
)

func (k Kind) String() string {
	switch k {
	case NonTerminalKind:
		return "NonTerminal"
	case TerminalKind:
		return "Terminal"
	case TokenKind:
		return "Token"
	case ErrorKind:
		return "Error"
	default:
		return "Unknown"
	}
}

// ErrorRule is the sentinel rule name carried by ErrorKind nodes, per the
// grammar's CST invariant that a node's rule name is "<error>" iff it was
// synthesised by recovery.
const ErrorRule = "<error>"

// CstNode is one node of the lossless concrete syntax tree.
type CstNode struct {
	Kind Kind
	Span position.Span
	Rule string

	// Terminal, Token: the exact matched text.
	Text string

	// NonTerminal: the ordered, non-overlapping children.
	Children []*CstNode

	// Error: the input skipped while recovering, and the expectation
	// description that failed to match at Span.Start.
	SkippedText string
	Expected    string

	LeadingTrivia  []Trivia
	TrailingTrivia []Trivia
}

// Walk invokes fn for n and, depth-first, for every descendant.
func (n *CstNode) Walk(fn func(*CstNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, ch := range n.Children {
		ch.Walk(fn)
	}
}

// First returns the first child with the given rule name at index >= start,
// or nil if there is none.
func (n *CstNode) First(rule string, start int) *CstNode {
	for i := start; i < len(n.Children); i++ {
		if n.Children[i].Rule == rule {
			return n.Children[i]
		}
	}
	return nil
}

// All returns every child with the given rule name, in document order.
func (n *CstNode) All(rule string) []*CstNode {
	var r []*CstNode
	for _, ch := range n.Children {
		if ch.Rule == rule {
			r = append(r, ch)
		}
	}
	return r
}

// Reconstitute concatenates every terminal/token text and every trivia
// text, in document order, verifying the CST round-trip law of spec.md §8
// invariant 2: the result must equal the original input exactly.
func (n *CstNode) Reconstitute() string {
	var b strings.Builder
	n.writeTrivia(&b, n.LeadingTrivia)
	n.reconstitute(&b)
	n.writeTrivia(&b, n.TrailingTrivia)
	return b.String()
}

func (n *CstNode) writeTrivia(b *strings.Builder, trivia []Trivia) {
	for _, tr := range trivia {
		b.WriteString(tr.Text)
	}
}

func (n *CstNode) reconstitute(b *strings.Builder) {
	switch n.Kind {
	case TerminalKind, TokenKind, ErrorKind:
		if n.Kind == ErrorKind {
			b.WriteString(n.SkippedText)
		} else {
			b.WriteString(n.Text)
		}
	case NonTerminalKind:
		for _, ch := range n.Children {
			n.writeTrivia(b, ch.LeadingTrivia)
			ch.reconstitute(b)
			n.writeTrivia(b, ch.TrailingTrivia)
		}
	}
}

func (n *CstNode) String() string {
	return n.dump(false)
}

// Dump renders the node with position information, useful in test failures.
func (n *CstNode) Dump() string {
	return n.dump(true)
}

func (n *CstNode) dump(full bool) string {
	if n == nil {
		return "(nil)"
	}
	var b strings.Builder
	n.writeDump(&b, "", full)
	return b.String()
}

func (n *CstNode) writeDump(b *strings.Builder, indent string, full bool) {
	b.WriteString("(")
	b.WriteString(n.Rule)
	if n.Kind == ErrorKind {
		fmt.Fprintf(b, " :skipped(%q) :expected(%q)", n.SkippedText, n.Expected)
	} else if n.Text != "" {
		fmt.Fprintf(b, " %q", n.Text)
	}
	if full {
		fmt.Fprintf(b, " span(%d,%d)", n.Span.Start.Offset, n.Span.End.Offset)
	}
	for _, ch := range n.Children {
		b.WriteString(" ")
		ch.writeDump(b, indent+"  ", full)
	}
	b.WriteString(")")
}
