package peg

import (
	"strings"
	"testing"

	"github.com/dvoran/pegcore/engine"
	"github.com/dvoran/pegcore/recovery"
	"github.com/dvoran/pegcore/tree"
)

func TestNewRejectsUndefinedReference(t *testing.T) {
	if _, err := New(`Start <- Missing`, nil, Config{}); err == nil {
		t.Fatal("New succeeded over a grammar with an undefined reference")
	}
}

func TestParseCstRoundTrips(t *testing.T) {
	p, err := New(`
Sum <- Number ("+" Number)*
Number <- [0-9]+
`, nil, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	node, err := p.ParseCst("12+34+5")
	if err != nil {
		t.Fatalf("ParseCst: %v", err)
	}
	if node.Reconstitute() != "12+34+5" {
		t.Errorf("Reconstitute() = %q, want %q", node.Reconstitute(), "12+34+5")
	}
}

type sumAction struct{}

func (sumAction) Apply(sv engine.SemanticValues) (any, error) {
	total := 0
	for _, v := range sv.Values() {
		total += v.(int)
	}
	return total, nil
}

type numberAction struct{}

func (numberAction) Apply(sv engine.SemanticValues) (any, error) {
	return int(sv.ToInt()), nil
}

func TestParseRunsActions(t *testing.T) {
	p, err := New(`
Sum <- Number ("+" Number)*
Number <- [0-9]+
`, map[string]engine.Action{"Sum": sumAction{}, "Number": numberAction{}}, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := p.Parse("1+2+3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v != 6 {
		t.Errorf("Parse(%q) = %v, want 6", "1+2+3", v)
	}
}

func TestParseAstCarriesActionValues(t *testing.T) {
	p, err := New(`
Sum <- Number ("+" Number)*
Number <- [0-9]+
`, map[string]engine.Action{"Sum": sumAction{}, "Number": numberAction{}}, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ast, err := p.ParseAst("1+2+3")
	if err != nil {
		t.Fatalf("ParseAst: %v", err)
	}
	if ast.Value != 6 {
		t.Errorf("ast.Value = %v, want 6", ast.Value)
	}
	if ast.Kind != tree.AstNonTerminal {
		t.Errorf("ast.Kind = %v, want AstNonTerminal", ast.Kind)
	}
	for _, child := range ast.Children {
		if child.Rule == "Number" && child.Value == nil {
			t.Errorf("Number child Value = nil, want its action's int result")
		}
	}
}

func TestParseCstFromRule(t *testing.T) {
	p, err := New(`
Doc <- Number ("," Number)*
Number <- [0-9]+
`, nil, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	node, err := p.ParseCstFromRule("Number", "42")
	if err != nil {
		t.Fatalf("ParseCstFromRule: %v", err)
	}
	if node.Text != "42" {
		t.Errorf("node.Text = %q, want %q", node.Text, "42")
	}
	if _, err := p.ParseCstFromRule("Missing", "42"); err == nil {
		t.Error("ParseCstFromRule(\"Missing\", ...) succeeded, want an error")
	}
}

func TestParseCstWithDiagnosticsRenders(t *testing.T) {
	p, err := New(`
List <- Item ("," Item)*
Item <- <[a-z]+>
`, nil, Config{RecoveryStrategy: recovery.Advanced})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result := p.ParseCstWithDiagnostics("abc,123,def")
	if len(result.Diagnostics) == 0 {
		t.Fatal("Diagnostics is empty, want at least one recorded failure")
	}
	out := result.Render("list.peg")
	if !strings.Contains(out, "list.peg") {
		t.Errorf("Render() = %q, want it to mention the filename", out)
	}
}

func TestWarningsSurfaceDuplicateRules(t *testing.T) {
	p, err := New(`
Start <- "a"
Start <- "b"
`, nil, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(p.Warnings()) != 1 {
		t.Errorf("Warnings() = %v, want exactly 1", p.Warnings())
	}
}
