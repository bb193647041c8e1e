package engine

import (
	"testing"

	"github.com/dvoran/pegcore/expr"
	"github.com/dvoran/pegcore/gparser"
	"github.com/dvoran/pegcore/recovery"
	"github.com/dvoran/pegcore/tree"
	"github.com/dvoran/pegcore/validate"
)

func mustGrammar(t *testing.T, src string) *expr.Grammar {
	t.Helper()
	g, err := gparser.Parse(src)
	if err != nil {
		t.Fatalf("gparser.Parse(%q): %v", src, err)
	}
	g, _, err = validate.Check(g)
	if err != nil {
		t.Fatalf("validate.Check: %v", err)
	}
	return g
}

func TestParseCstLiteralSequenceChoice(t *testing.T) {
	g := mustGrammar(t, `Start <- "a" "b" / "c"`)
	e := New(g, nil, Config{})

	for _, tt := range []struct {
		input   string
		wantErr bool
	}{
		{"ab", false},
		{"c", false},
		{"d", true},
	} {
		node, err := e.ParseCst(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCst(%q) = %v, want error", tt.input, node)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCst(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if node.Reconstitute() != tt.input {
			t.Errorf("ParseCst(%q).Reconstitute() = %q", tt.input, node.Reconstitute())
		}
	}
}

func TestParseCstRepetitionAndCharClass(t *testing.T) {
	g := mustGrammar(t, `Start <- [0-9]+`)
	e := New(g, nil, Config{})

	node, err := e.ParseCst("1234")
	if err != nil {
		t.Fatalf("ParseCst: %v", err)
	}
	if node.Kind.String() != "Terminal" || node.Text != "1234" {
		t.Errorf("ParseCst(%q) = %s, want a Terminal with text %q", "1234", node.Dump(), "1234")
	}
	if _, err := e.ParseCst(""); err == nil {
		t.Error("ParseCst(\"\") succeeded, want OneOrMore to require at least one digit")
	}
}

func TestParseCstNonTerminalHasChildren(t *testing.T) {
	g := mustGrammar(t, `
Start <- Digits "+" Digits
Digits <- [0-9]+
`)
	e := New(g, nil, Config{})
	node, err := e.ParseCst("12+34")
	if err != nil {
		t.Fatalf("ParseCst: %v", err)
	}
	if node.Kind.String() != "NonTerminal" {
		t.Fatalf("ParseCst(%q) = %s, want NonTerminal", "12+34", node.Dump())
	}
	digits := node.All("Digits")
	if len(digits) != 2 || digits[0].Text != "12" || digits[1].Text != "34" {
		t.Errorf("children = %v, want Digits \"12\" and Digits \"34\"", digits)
	}
	if node.Reconstitute() != "12+34" {
		t.Errorf("Reconstitute() = %q, want %q", node.Reconstitute(), "12+34")
	}
}

func TestAndNotPredicates(t *testing.T) {
	g := mustGrammar(t, `Start <- &[0-9] [0-9]+ / !"x" .`)
	e := New(g, nil, Config{})

	if _, err := e.ParseCst("7"); err != nil {
		t.Errorf("ParseCst(%q): %v", "7", err)
	}
	node, err := e.ParseCst("y")
	if err != nil {
		t.Fatalf("ParseCst(%q): %v", "y", err)
	}
	if node.Text != "y" {
		t.Errorf("node.Text = %q, want %q", node.Text, "y")
	}
	if _, err := e.ParseCst("x"); err == nil {
		t.Error("ParseCst(\"x\") succeeded, want the Not predicate to reject it")
	}
}

func TestTokenBoundaryProducesTokenKind(t *testing.T) {
	g := mustGrammar(t, `Start <- < [0-9]+ "." [0-9]+ >`)
	e := New(g, nil, Config{})
	node, err := e.ParseCst("3.14")
	if err != nil {
		t.Fatalf("ParseCst: %v", err)
	}
	if node.Kind.String() != "Token" || node.Text != "3.14" {
		t.Errorf("ParseCst(%q) = %s, want a Token with text %q", "3.14", node.Dump(), "3.14")
	}
}

func TestCutCommitsChoice(t *testing.T) {
	g := mustGrammar(t, `Start <- "a" ↑ "b" / "a" "c"`)
	e := New(g, nil, Config{})

	if _, err := e.ParseCst("ab"); err != nil {
		t.Errorf("ParseCst(%q): %v", "ab", err)
	}
	if _, err := e.ParseCst("ac"); err == nil {
		t.Error("ParseCst(\"ac\") succeeded, want the cut in the first alternative to block falling through to the second")
	}
}

func TestBackReferenceMatchesEarlierCapture(t *testing.T) {
	g := mustGrammar(t, `Start <- $tag<[a-z]+> "=" $tag`)
	e := New(g, nil, Config{})

	if _, err := e.ParseCst("foo=foo"); err != nil {
		t.Errorf("ParseCst(%q): %v", "foo=foo", err)
	}
	if _, err := e.ParseCst("foo=bar"); err == nil {
		t.Error("ParseCst(\"foo=bar\") succeeded, want the back-reference to require the same text")
	}
}

func TestDictionaryLongestMatch(t *testing.T) {
	g := &expr.Grammar{
		Rules: map[string]*expr.Rule{
			"Start": {Name: "Start", Expr: &expr.Expr{Kind: expr.Dictionary, Words: []string{"in", "instanceof"}}},
		},
		RuleNames: []string{"Start"},
	}
	e := New(g, nil, Config{})
	node, err := e.ParseCst("instanceof")
	if err != nil {
		t.Fatalf("ParseCst: %v", err)
	}
	if node.Text != "instanceof" {
		t.Errorf("node.Text = %q, want the longest dictionary match %q", node.Text, "instanceof")
	}
}

func TestWordBoundaryRejectsKeywordPrefix(t *testing.T) {
	g := mustGrammar(t, "%word <- [A-Za-z0-9_]\nStart <- \"if\" / [A-Za-z]+")
	e := New(g, nil, Config{})

	node, err := e.ParseCst("iffy")
	if err != nil {
		t.Fatalf("ParseCst(%q): %v", "iffy", err)
	}
	if node.Text != "iffy" {
		t.Errorf("ParseCst(%q).Text = %q, want the whole identifier %q (the \"if\" keyword must not match a prefix of it)", "iffy", node.Text, "iffy")
	}

	node, err = e.ParseCst("if")
	if err != nil {
		t.Fatalf("ParseCst(%q): %v", "if", err)
	}
	if node.Text != "if" {
		t.Errorf("ParseCst(%q).Text = %q, want %q", "if", node.Text, "if")
	}
}

func TestCaptureScopeIsolatesNames(t *testing.T) {
	g := &expr.Grammar{
		Rules: map[string]*expr.Rule{
			"Start": {Name: "Start", Expr: &expr.Expr{
				Kind: expr.Sequence,
				Elements: []*expr.Expr{
					{Kind: expr.CaptureScope, Sub: &expr.Expr{Kind: expr.Capture, Name: "x", Sub: &expr.Expr{Kind: expr.Literal, Text: "a"}}},
					{Kind: expr.Not, Sub: &expr.Expr{Kind: expr.BackReference, Name: "x"}},
				},
			}},
		},
		RuleNames: []string{"Start"},
	}
	e := New(g, nil, Config{})
	// The capture made inside the CaptureScope must not be visible once the
	// scope has popped, so the Not predicate for a leaked "x" must succeed.
	if _, err := e.ParseCst("a"); err != nil {
		t.Errorf("ParseCst(%q): %v", "a", err)
	}
}

type upperAction struct{}

func (upperAction) Apply(sv SemanticValues) (any, error) {
	return len(sv.Token()), nil
}

func TestParseRunsAction(t *testing.T) {
	g := mustGrammar(t, `Start <- [a-z]+`)
	e := New(g, map[string]Action{"Start": upperAction{}}, Config{})
	v, err := e.Parse("hello")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v != 5 {
		t.Errorf("Parse(%q) = %v, want 5", "hello", v)
	}
}

type countingAction struct{ n *int }

func (c countingAction) Apply(sv SemanticValues) (any, error) {
	*c.n++
	return sv.Token(), nil
}

func TestPackratMemoizesSharedRuleApplication(t *testing.T) {
	src := `
Start <- Digits "a" / Digits "b"
Digits <- [0-9]+
`
	var calls int
	actions := map[string]Action{"Digits": countingAction{n: &calls}}

	g := mustGrammar(t, src)
	withPackrat := New(g, actions, Config{Packrat: true})
	calls = 0
	if _, err := withPackrat.Parse("123b"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if calls != 1 {
		t.Errorf("with packrat, Digits action ran %d times, want 1", calls)
	}

	withoutPackrat := New(g, actions, Config{Packrat: false})
	calls = 0
	if _, err := withoutPackrat.Parse("123b"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if calls != 2 {
		t.Errorf("without packrat, Digits action ran %d times, want 2", calls)
	}
}

func TestIgnoreSuppressesCstAndValue(t *testing.T) {
	g := mustGrammar(t, `Start <- Digits ~(" " Digits)
Digits <- [0-9]+`)
	e := New(g, nil, Config{})
	node, err := e.ParseCst("12 34")
	if err != nil {
		t.Fatalf("ParseCst: %v", err)
	}
	if len(node.All("Digits")) != 1 {
		t.Errorf("Digits children = %v, want exactly 1 (the ignored group's Digits must not attach)", node.All("Digits"))
	}
	if node.Reconstitute() != "12 34" {
		t.Errorf("Reconstitute() = %q, want %q", node.Reconstitute(), "12 34")
	}
}

func TestRecoveryAdvancedSynthesizesErrorNodes(t *testing.T) {
	g := mustGrammar(t, `
List <- Item ("," Item)*
Item <- <[a-z]+>
`)
	e := New(g, nil, Config{Recovery: recovery.Advanced})
	diags := e.ParseCstWithDiagnostics("abc,123,def,@@@,ghi")
	if diags.Node == nil {
		t.Fatal("ParseCstWithDiagnostics returned a nil node")
	}
	var items, errs int
	diags.Node.Walk(func(n *tree.CstNode) {
		switch {
		case n.Rule == "Item":
			items++
		case n.Kind == tree.ErrorKind:
			errs++
		}
	})
	if items == 0 {
		t.Error("no Item nodes in the recovered tree, want the valid items to still parse")
	}
	if errs == 0 {
		t.Error("no Error nodes in the recovered tree, want the malformed items to be skipped")
	}
	if len(diags.Diagnostics) == 0 {
		t.Error("Diagnostics is empty, want at least one recorded failure")
	}
}

func TestTokenBoundaryAroundReferenceProducesOneNode(t *testing.T) {
	g := mustGrammar(t, `
X <- Space < Ident > Space
Space <- " "*
Ident <- ("x" / "y" / "z")+
`)
	e := New(g, nil, Config{})
	node, err := e.ParseCst(" xyz ")
	if err != nil {
		t.Fatalf("ParseCst: %v", err)
	}
	var tokens int
	node.Walk(func(n *tree.CstNode) {
		if n.Kind == tree.TokenKind {
			tokens++
			if n.Text != "xyz" {
				t.Errorf("token text = %q, want %q", n.Text, "xyz")
			}
		}
		if n.Rule == "Ident" {
			t.Errorf("an Ident node leaked out of the token boundary: %s", n.Dump())
		}
	})
	if tokens != 1 {
		t.Errorf("found %d Token nodes, want exactly 1 (no duplicate wrapper+inner nodes)", tokens)
	}
}
