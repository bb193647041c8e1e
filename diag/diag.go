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

// Package diag is the diagnostic model and Rust-style renderer shared by
// the grammar validator, the grammar parser and the recovery controller.
package diag

import (
	"fmt"
	"strings"

	"github.com/dvoran/pegcore/position"
)

// Severity orders a Diagnostic's importance.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Label annotates one span within a diagnostic; Primary labels render
// with '^', secondary labels with '-'.
type Label struct {
	Span    position.Span
	Message string
	Primary bool
}

// Diagnostic is one immutable structured parse diagnostic.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Span     position.Span
	Labels   []Label
	Help     []string
	Notes    []string
}

// Renderer formats Diagnostics against their source text.
type Renderer struct {
	Filename string
	Source   string
}

// NewRenderer returns a Renderer for source under the given filename
// (used only in the "--> filename:line:col" header line).
func NewRenderer(filename, source string) *Renderer {
	return &Renderer{Filename: filename, Source: source}
}

// Format renders a single Diagnostic in the Rust-style multi-line form
// documented in the package's component design.
func (r *Renderer) Format(d Diagnostic) string {
	lines := strings.Split(r.Source, "\n")
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]: %s\n", d.Severity, d.Code, d.Message)
	fmt.Fprintf(&b, "  --> %s:%d:%d\n", r.Filename, d.Span.Start.Line, d.Span.Start.Column)

	allLabels := append([]Label{{Span: d.Span, Message: "", Primary: true}}, d.Labels...)
	width := gutterWidth(allLabels)
	gutter := strings.Repeat(" ", width)
	fmt.Fprintf(&b, "%s |\n", gutter)

	for _, l := range allLabels {
		r.writeLabel(&b, l, width, lines)
	}
	fmt.Fprintf(&b, "%s |\n", gutter)
	for _, h := range d.Help {
		fmt.Fprintf(&b, "%s = help: %s\n", gutter, h)
	}
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "%s = note: %s\n", gutter, n)
	}
	return b.String()
}

// FormatAll renders every diagnostic, joined by a blank line, in the
// order given.
func (r *Renderer) FormatAll(ds []Diagnostic) string {
	var parts []string
	for _, d := range ds {
		parts = append(parts, r.Format(d))
	}
	return strings.Join(parts, "\n")
}

func gutterWidth(labels []Label) int {
	max := 1
	for _, l := range labels {
		w := len(fmt.Sprintf("%d", l.Span.End.Line))
		if w > max {
			max = w
		}
	}
	return max
}

func (r *Renderer) writeLabel(b *strings.Builder, l Label, width int, lines []string) {
	startLine := l.Span.Start.Line
	endLine := l.Span.End.Line
	for ln := startLine; ln <= endLine; ln++ {
		if ln-1 < 0 || ln-1 >= len(lines) {
			continue
		}
		text := lines[ln-1]
		fmt.Fprintf(b, "%*d | %s\n", width, ln, text)
		startCol := 1
		endCol := len(text) + 1
		if ln == startLine {
			startCol = l.Span.Start.Column
		}
		if ln == endLine {
			endCol = l.Span.End.Column
		}
		if endCol <= startCol {
			endCol = startCol + 1
		}
		marker := "^"
		if !l.Primary {
			marker = "-"
		}
		fmt.Fprintf(b, "%s | %s%s", strings.Repeat(" ", width), strings.Repeat(" ", startCol-1), strings.Repeat(marker, endCol-startCol))
		if l.Message != "" {
			fmt.Fprintf(b, " %s", l.Message)
		}
		b.WriteString("\n")
	}
}

// LSPDiagnostic is the 0-based, 1-4 severity projection consumed by
// editors over the Language Server Protocol.
type LSPDiagnostic struct {
	StartLine      int
	StartCharacter int
	EndLine        int
	EndCharacter   int
	Severity       int // 1=Error 2=Warning 3=Information 4=Hint
	Message        string
}

// ToLSP projects a Diagnostic into its LSP-compatible form.
func ToLSP(d Diagnostic) LSPDiagnostic {
	return LSPDiagnostic{
		StartLine:      d.Span.Start.Line - 1,
		StartCharacter: d.Span.Start.Column - 1,
		EndLine:        d.Span.End.Line - 1,
		EndCharacter:   d.Span.End.Column - 1,
		Severity:       int(d.Severity) + 1,
		Message:        d.Message,
	}
}
