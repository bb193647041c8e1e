package recovery

import (
	"testing"

	"github.com/dvoran/pegcore/position"
	"github.com/dvoran/pegcore/tree"
)

func TestRecoverStopsAtSyncToken(t *testing.T) {
	input := "abc, 123, def"
	c := NewController(input, position.NewCounter(input), 0)
	n := c.Recover(5, "identifier")
	if n.Kind != tree.ErrorKind || n.Rule != tree.ErrorRule {
		t.Fatalf("Recover() = %+v, want an ErrorKind node", n)
	}
	if n.SkippedText != "123" {
		t.Errorf("SkippedText = %q, want %q", n.SkippedText, "123")
	}
	if len(c.Diagnostics()) != 1 {
		t.Fatalf("Diagnostics() = %v, want exactly 1", c.Diagnostics())
	}
}

func TestRecoverRunsToEndOfInput(t *testing.T) {
	input := "abc"
	c := NewController(input, position.NewCounter(input), 0)
	n := c.Recover(0, "digit")
	if n.SkippedText != "abc" {
		t.Errorf("SkippedText = %q, want %q", n.SkippedText, "abc")
	}
}

func TestCascadeBound(t *testing.T) {
	input := ",,,,,"
	c := NewController(input, position.NewCounter(input), 2)
	c.Recover(0, "x")
	if c.CascadeExceeded() {
		t.Fatal("CascadeExceeded() = true after 1 recovery, want false")
	}
	c.Recover(1, "x")
	if !c.CascadeExceeded() {
		t.Error("CascadeExceeded() = false after reaching the bound, want true")
	}
}

func TestDefaultCascadeBound(t *testing.T) {
	c := NewController("x", position.NewCounter("x"), 0)
	if c.cascadeBound != DefaultCascadeBound {
		t.Errorf("cascadeBound = %d, want %d", c.cascadeBound, DefaultCascadeBound)
	}
}
