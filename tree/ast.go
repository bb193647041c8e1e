package tree

import (
	"fmt"
	"strings"

	"github.com/dvoran/pegcore/position"
)

// AstKind discriminates the two AST variants: Terminal (a leaf match) and
// NonTerminal (a rule with children). Unlike CstNode, the AST carries no
// Token/Error variant: token regions collapse to Terminal once trivia is
// gone, and error recovery never reaches AST construction (only the CST
// entry points, ParseCst and ParseCstWithDiagnostics, tolerate a partial tree).
type AstKind int

const (
	AstNonTerminal AstKind = iota
	AstTerminal
)

// AstNode is the trivia-stripped counterpart of CstNode, optionally carrying
// the value produced by a rule's attached action.
type AstNode struct {
	Kind     AstKind
	Span     position.Span
	Rule     string
	Text     string // AstTerminal only
	Children []*AstNode
	Value    any
}

// Strip converts a CstNode into an AstNode: trivia is dropped and Error
// nodes are rejected (the caller must not have reached here with a
// partial tree; ParseCstAndAst calls it after successful parses only). values
// maps a rule-invocation CstNode to the result of that rule's bound
// action, as recorded by the engine while it built n; pass nil if no
// actions were run. A node absent from values keeps a nil Value, which
// is the normal case for rules with no attached action.
func Strip(n *CstNode, values map[*CstNode]any) (*AstNode, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == ErrorKind {
		return nil, fmt.Errorf("cannot build an AST from a tree containing an error node at %s", n.Span)
	}
	out := &AstNode{Span: n.Span, Rule: n.Rule}
	if v, ok := values[n]; ok {
		out.Value = v
	}
	switch n.Kind {
	case TerminalKind, TokenKind:
		out.Kind = AstTerminal
		out.Text = n.Text
	case NonTerminalKind:
		out.Kind = AstNonTerminal
		for _, ch := range n.Children {
			child, err := Strip(ch, values)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, child)
		}
	}
	return out, nil
}

func (n *AstNode) String() string {
	if n == nil {
		return "(nil)"
	}
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(n.Rule)
	if n.Kind == AstTerminal {
		fmt.Fprintf(&b, " %q", n.Text)
	}
	for _, ch := range n.Children {
		b.WriteString(" ")
		b.WriteString(ch.String())
	}
	b.WriteString(")")
	return b.String()
}
