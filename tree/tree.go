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
package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads the s-expression form produced by CstNode.String (Dump's
// span annotations are not accepted), e.g.
// `(Expr "a" (Term "b"))` or `(Error :skipped("junk") :expected("identifier"))`.
// It exists so tests can write trees as literals instead of building
// *CstNode by hand, the same role the teacher's tree.go Parse/Pretty pair
// played for parser.Node golden-file tests.
func Parse(s string) (*CstNode, error) {
	p := &sexprParser{src: s}
	p.skipSpace()
	n, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("tree.Parse: trailing input at offset %d: %q", p.pos, p.src[p.pos:])
	}
	return n, nil
}

type sexprParser struct {
	src string
	pos int
}

func (p *sexprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *sexprParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *sexprParser) parseNode() (*CstNode, error) {
	if p.peek() != '(' {
		return nil, fmt.Errorf("tree.Parse: expected '(' at offset %d", p.pos)
	}
	p.pos++
	p.skipSpace()
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	n := &CstNode{Rule: name, Kind: NonTerminalKind}
	for {
		p.skipSpace()
		switch p.peek() {
		case ')':
			p.pos++
			return n, nil
		case '"':
			text, err := p.parseString()
			if err != nil {
				return nil, err
			}
			if text != "" {
				n.Kind = TerminalKind
			}
			n.Text = text
		case '(':
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case ':':
			if err := p.parseAttr(n); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("tree.Parse: unexpected character %q at offset %d", p.peek(), p.pos)
		}
	}
}

func (p *sexprParser) parseAttr(n *CstNode) error {
	p.pos++ // ':'
	name, err := p.parseIdent()
	if err != nil {
		return err
	}
	if p.peek() != '(' {
		return fmt.Errorf("tree.Parse: expected '(' after :%s at offset %d", name, p.pos)
	}
	p.pos++
	p.skipSpace()
	value, err := p.parseString()
	if err != nil {
		return err
	}
	p.skipSpace()
	if p.peek() != ')' {
		return fmt.Errorf("tree.Parse: expected ')' closing :%s at offset %d", name, p.pos)
	}
	p.pos++
	switch name {
	case "skipped":
		n.Kind = ErrorKind
		n.SkippedText = value
	case "expected":
		n.Kind = ErrorKind
		n.Expected = value
	default:
		return fmt.Errorf("tree.Parse: unknown attribute :%s", name)
	}
	return nil
}

func (p *sexprParser) parseIdent() (string, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '(' || c == ')' || c == '"' || c == ':' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("tree.Parse: expected identifier at offset %d", p.pos)
	}
	return p.src[start:p.pos], nil
}

func (p *sexprParser) parseString() (string, error) {
	if p.peek() != '"' {
		return "", fmt.Errorf("tree.Parse: expected '\"' at offset %d", p.pos)
	}
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
		case '"':
			p.pos++
			return strconv.Unquote(p.src[start:p.pos])
		default:
			p.pos++
		}
	}
	return "", fmt.Errorf("tree.Parse: unterminated string starting at offset %d", start)
}

// Pretty is an alias for CstNode.String, provided for symmetry with Parse.
func Pretty(n *CstNode) string {
	return n.String()
}

// Extract walks a tree following a path expression of the form
// "Child[0] Grandchild text", returning the named field of the final node
// reached. Each path segment other than the last selects a child by rule
// name (optionally index-qualified with "[n]", default 0); the last
// segment selects "text" (the node's Text, "" if absent) or "num" (the
// node's Text re-emitted only if it parses as an integer, else "0"), or
// is itself a further child selector whose Text is returned.
func Extract(n *CstNode, expr string) (string, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return "", fmt.Errorf("tree.Extract: empty expression")
	}
	cur := n
	for _, seg := range fields[:len(fields)-1] {
		rule, idx, err := parseSegment(seg)
		if err != nil {
			return "", err
		}
		matches := cur.All(rule)
		if idx >= len(matches) {
			return "", fmt.Errorf("tree.Extract: no child %q[%d] under (%s)", rule, idx, cur.Rule)
		}
		cur = matches[idx]
	}
	switch last := fields[len(fields)-1]; last {
	case "text":
		return cur.Text, nil
	case "num":
		if cur.Text == "" {
			return "0", nil
		}
		if _, err := strconv.Atoi(cur.Text); err != nil {
			return "0", nil
		}
		return cur.Text, nil
	default:
		rule, idx, err := parseSegment(last)
		if err != nil {
			return "", err
		}
		matches := cur.All(rule)
		if idx >= len(matches) {
			return "", fmt.Errorf("tree.Extract: no child %q[%d] under (%s)", rule, idx, cur.Rule)
		}
		return matches[idx].Text, nil
	}
}

func parseSegment(seg string) (rule string, idx int, err error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, 0, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return "", 0, fmt.Errorf("tree.Extract: malformed segment %q", seg)
	}
	rule = seg[:open]
	idx, err = strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil {
		return "", 0, fmt.Errorf("tree.Extract: malformed index in %q: %w", seg, err)
	}
	return rule, idx, nil
}
