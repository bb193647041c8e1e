package validate

import (
	"testing"

	"github.com/dvoran/pegcore/gparser"
)

func TestUndefinedReference(t *testing.T) {
	g, err := gparser.Parse("A <- Foo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, err := Check(g); err == nil {
		t.Fatal("Check = nil error, want a SemanticError naming Foo")
	} else if _, ok := err.(*SemanticError); !ok {
		t.Errorf("Check error = %T, want *SemanticError", err)
	}
}

func TestResolvedReference(t *testing.T) {
	g, err := gparser.Parse("A <- B\nB <- 'x'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, err := Check(g); err != nil {
		t.Errorf("Check = %v, want success", err)
	}
}

func TestDuplicateRuleWarning(t *testing.T) {
	g, err := gparser.Parse("A <- 'x'\nA <- 'y'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, warnings, err := Check(g)
	if err != nil {
		t.Fatalf("Check = %v, want success", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly 1", warnings)
	}
	if g.Rule("A").Expr.Text != "y" {
		t.Errorf("A.Expr.Text = %q, want %q (last definition wins)", g.Rule("A").Expr.Text, "y")
	}
}

func TestDirectLeftRecursionRejected(t *testing.T) {
	g, err := gparser.Parse("A <- A 'x' / 'y'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, err := Check(g); err == nil {
		t.Fatal("Check = nil error, want a SemanticError reporting left recursion")
	} else if _, ok := err.(*SemanticError); !ok {
		t.Errorf("Check error = %T, want *SemanticError", err)
	}
}

func TestIndirectLeftRecursionRejected(t *testing.T) {
	g, err := gparser.Parse("A <- B 'x'\nB <- A 'y' / 'z'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, err := Check(g); err == nil {
		t.Fatal("Check = nil error, want a SemanticError reporting left recursion")
	}
}

func TestRightRecursionAccepted(t *testing.T) {
	g, err := gparser.Parse("A <- 'x' A / 'y'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, err := Check(g); err != nil {
		t.Errorf("Check = %v, want success (recursion is not in leftmost position)", err)
	}
}

func TestRepeatedReferenceInTailAccepted(t *testing.T) {
	g, err := gparser.Parse("List <- Item (',' Item)*\nItem <- < [a-z]+ >")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, err := Check(g); err != nil {
		t.Errorf("Check = %v, want success", err)
	}
}

func TestUndefinedStartRule(t *testing.T) {
	g, err := gparser.Parse("A <- 'x'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g.StartRule = "Missing"
	if _, _, err := Check(g); err == nil {
		t.Error("Check with undefined start rule = nil error, want failure")
	}
}
