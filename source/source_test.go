package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemfsRoundTrip(t *testing.T) {
	ctx := context.Background()
	name := "/memfs/grammars/number.peg"
	want := "Number <- [0-9]+\n"
	if err := WriteFixture(ctx, name, want); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	got, err := ReadGrammar(ctx, name)
	if err != nil {
		t.Fatalf("ReadGrammar: %v", err)
	}
	if got != want {
		t.Errorf("ReadGrammar(%q) = %q, want %q", name, got, want)
	}
	if _, err := Stat(ctx, name); err != nil {
		t.Errorf("Stat(%q): %v", name, err)
	}
}

func TestRealFilesystemPathsBypassMemfs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	name := filepath.Join(dir, "fixture.txt")
	want := "abc, 123\n"
	if err := os.WriteFile(name, []byte(want), 0664); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	got, err := ReadFixture(ctx, name)
	if err != nil {
		t.Fatalf("ReadFixture: %v", err)
	}
	if got != want {
		t.Errorf("ReadFixture(%q) = %q, want %q", name, got, want)
	}
}

func TestReadGrammarMissingFile(t *testing.T) {
	if _, err := ReadGrammar(context.Background(), "/memfs/does/not/exist.peg"); err == nil {
		t.Error("ReadGrammar succeeded over a missing file, want an error")
	}
}
