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

// Package testutil holds table-driven fixtures: grammars that must be
// rejected at construction time, grammars that must accept or reject a
// list of inputs, and grammars that must capture a particular substring.
// This package's own tests drive them through the peg facade.
// This is the teacher's tests package, generalized from one hand-rolled
// parser generator's acceptance suite into fixtures any caller in this
// module can drive through its own entry point (gparser+validate+engine,
// or the peg facade).
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dvoran/pegcore/tree"
)

// InvalidCase is a grammar that must fail to construct a parser, either
// at grammar-parse time or at validation time.
type InvalidCase struct {
	Name    string
	Grammar string
}

// Outcome is one input and whether a constructed parser should accept it.
type Outcome struct {
	Input string
	Ok    bool
}

// PositiveCase is a grammar that must construct successfully, paired
// with inputs it must accept or reject.
type PositiveCase struct {
	Name     string
	Grammar  string
	Outcomes []Outcome
}

// CaptureOutcome is one input for a CaptureCase: whether it must parse,
// and if so, the text the grammar's outermost token-boundary must
// capture.
type CaptureOutcome struct {
	Input  string
	Ok     bool
	Result string
}

// CaptureCase is a grammar that must construct successfully and, for
// each accepted input, capture a specific substring via a token
// boundary (`< ... >`).
type CaptureCase struct {
	Name     string
	Grammar  string
	Outcomes []CaptureOutcome
}

// Invalid holds grammars that must be rejected, either by gparser.Parse
// (malformed syntax) or by validate.Check (unresolved references).
// Duplicate rule definitions are deliberately absent here: they are only
// a validate.Warning (last definition wins), not a construction failure.
// Left recursion, which validate.Check also rejects, is not listed here;
// validate's own tests cover it.
var Invalid = []InvalidCase{
	{Name: "DoubleArrow", Grammar: "Ident <- abc <- xyz"},
	{Name: "UnterminatedCharClass", Grammar: "I <- ["},
	{Name: "UnterminatedString", Grammar: `S <- "abc`},
	{Name: "MissingArrow", Grammar: "Start 'a'"},
	{Name: "DanglingChoice", Grammar: "Start <- 'a' /"},
	{Name: "UnbalancedGroup", Grammar: "Start <- ( 'a'"},
	{Name: "UndefinedReference", Grammar: "Start <- Missing"},
	{Name: "EmptyCharClass", Grammar: "Start <- []"},
	{Name: "UnterminatedTokenBoundary", Grammar: "Start <- < 'a'"},
}

// Positive holds grammars that must construct successfully, covering
// literals, repetition operators and character classes, graduated from
// the simplest single-literal rule to escaped classes and a quoted string.
var Positive = []PositiveCase{
	{
		Name:    "Space1",
		Grammar: `Space1 <- " "`,
		Outcomes: []Outcome{
			{"", false},
			{" ", true},
			{"  ", false},
			{"\t", false},
		},
	},
	{
		Name:    "Space2",
		Grammar: `Space2 <- " "*`,
		Outcomes: []Outcome{
			{"", true},
			{" ", true},
			{"   ", true},
			{"\t", false},
		},
	},
	{
		Name:    "Space3",
		Grammar: `Space3 <- " "+`,
		Outcomes: []Outcome{
			{"", false},
			{" ", true},
			{"   ", true},
			{"\t", false},
		},
	},
	{
		Name:    "Newline1",
		Grammar: `Newline1 <- [\n]`,
		Outcomes: []Outcome{
			{"", false},
			{"\n", true},
			{"\n\n", false},
			{" ", false},
		},
	},
	{
		Name:    "Newline2",
		Grammar: `Newline2 <- "\n"`,
		Outcomes: []Outcome{
			{"", false},
			{"\n", true},
			{" ", false},
		},
	},
	{
		Name:    "Tab",
		Grammar: `Tab <- "\t"`,
		Outcomes: []Outcome{
			{"", false},
			{"\t", true},
			{"\t\t", false},
			{" ", false},
		},
	},
	{
		Name:    "Letter",
		Grammar: "Letter <- [a-z]",
		Outcomes: []Outcome{
			{"", false},
			{"a", true},
			{"z", true},
			{"ab", false},
			{"1", false},
		},
	},
	{
		Name:    "Whitespace",
		Grammar: `Whitespace <- [\n\t ]`,
		Outcomes: []Outcome{
			{"", false},
			{" ", true},
			{"\t", true},
			{"\n", true},
			{"  ", false},
		},
	},
	{
		Name:    "Caret",
		Grammar: "Caret <- [v^]",
		Outcomes: []Outcome{
			{"", false},
			{"^", true},
			{"v", true},
			{"^^", false},
		},
	},
	{
		Name:    "TrailingDash",
		Grammar: "TrailingDash <- [v-]",
		Outcomes: []Outcome{
			{"", false},
			{"v", true},
			{"-", true},
			{"^", false},
		},
	},
	{
		Name:    "QuotedString",
		Grammar: `String <- '"' ( '\\"' / !'"' . )* '"'`,
		Outcomes: []Outcome{
			{``, false},
			{`"`, false},
			{`""`, true},
			{`"x"`, true},
			{`"xx\"xxx"`, true},
			{`"xx"x"xx"`, false},
		},
	},
}

// Captures holds grammars exercising the `<...>` token-boundary
// construct as a capture mechanism: each outcome's Result is the text
// of the first token-kind node found in the parse tree.
var Captures = []CaptureCase{
	{
		Name:    "Bracketed",
		Grammar: "X <- 'x' < 'y'* > 'z'",
		Outcomes: []CaptureOutcome{
			{"", false, ""},
			{"x", false, ""},
			{"xz", true, ""},
			{"xyz", true, "y"},
			{"xyyz", true, "yy"},
			{"xt", false, ""},
		},
	},
	{
		Name:    "IdentWithSurroundingSpace",
		Grammar: "X <- Space < Ident > Space\nSpace <- \" \"*\nIdent <- ('x' / 'y' / 'z')+",
		Outcomes: []CaptureOutcome{
			{"", false, ""},
			{"x", true, "x"},
			{" x", true, "x"},
			{"x ", true, "x"},
			{" x ", true, "x"},
			{"xyz", true, "xyz"},
			{"xt", false, ""},
		},
	},
}

// RunPositive drives accept returning whether input parsed successfully
// for every outcome of tc, failing t if the result disagrees.
func RunPositive(t *testing.T, tc PositiveCase, accept func(input string) bool) {
	t.Helper()
	for _, o := range tc.Outcomes {
		got := accept(o.Input)
		if got != o.Ok {
			t.Errorf("%s: accept(%q) = %v, want %v", tc.Name, o.Input, got, o.Ok)
		}
	}
}

// RunCapture drives parseCst, which must return a parse tree on success
// and a non-nil error on failure, for every outcome of tc. On success it
// locates the first token-kind node and compares its text against the
// expected Result.
func RunCapture(t *testing.T, tc CaptureCase, parseCst func(input string) (*tree.CstNode, error)) {
	t.Helper()
	for _, o := range tc.Outcomes {
		node, err := parseCst(o.Input)
		ok := err == nil
		if ok != o.Ok {
			t.Errorf("%s: parseCst(%q) ok = %v, want %v (err=%v)", tc.Name, o.Input, ok, o.Ok, err)
			continue
		}
		if !ok {
			continue
		}
		got := firstTokenText(node)
		if got != o.Result {
			t.Errorf("%s: parseCst(%q) captured %q, want %q", tc.Name, o.Input, got, o.Result)
		}
	}
}

func firstTokenText(n *tree.CstNode) string {
	var found string
	seen := false
	n.Walk(func(c *tree.CstNode) {
		if seen || c.Kind != tree.TokenKind {
			return
		}
		found = c.Text
		seen = true
	})
	return found
}

// FixtureDir returns the on-disk directory holding grammar and input
// fixtures for standalone (non-memfs) tests: <repo root>/testutil/testdata.
// The repo root is found by walking up from the current working
// directory looking for a ".git" directory, the same heuristic the
// teacher's compat/workspace.GetGitDir used; if none is found (e.g. when
// the module is vendored without its VCS metadata) it falls back to the
// current working directory.
func FixtureDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, err := findGitRoot(cwd)
	if err != nil {
		root = cwd
	}
	return filepath.Join(root, "testutil", "testdata"), nil
}

func findGitRoot(start string) (string, error) {
	dir := filepath.Clean(start)
	for {
		if fi, err := os.Stat(filepath.Join(dir, ".git")); err == nil && fi.IsDir() {
			return dir, nil
		}
		up := filepath.Dir(dir)
		if up == dir {
			break
		}
		dir = up
	}
	return "", fmt.Errorf("testutil: no .git directory above %q", start)
}

// GrammarPath joins FixtureDir with a "/"-separated relative path, the
// way the teacher's compat/runfiles.Path resolved fixture paths relative
// to a source root.
func GrammarPath(rel string) (string, error) {
	dir, err := FixtureDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, strings.Split(rel, "/")...)...), nil
}
