package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCodeSearchTool_FindsMatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc Hello() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tool := NewCodeSearchTool(dir, true)
	res := tool.Execute(context.Background(), map[string]any{"pattern": "func Hello"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.ForLLM)
	}
	if !strings.Contains(res.ForLLM, "main.go") {
		t.Errorf("expected match to reference main.go, got %q", res.ForLLM)
	}
}

func TestCodeSearchTool_NoMatches(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tool := NewCodeSearchTool(dir, true)
	res := tool.Execute(context.Background(), map[string]any{"pattern": "NoSuchThing12345"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.ForLLM)
	}
	if res.ForLLM != "no matches" {
		t.Errorf("got %q", res.ForLLM)
	}
}

func TestCodeSearchTool_QueryAlias(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("foo bar"), 0o644)
	tool := NewCodeSearchTool(dir, true)
	res := tool.Execute(context.Background(), map[string]any{"query": "foo"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.ForLLM)
	}
}

func TestBrainstormSearchTermsTool_ExpandsSynonyms(t *testing.T) {
	tool := NewBrainstormSearchTermsTool()
	res := tool.Execute(context.Background(), map[string]any{"query": "fix the function error"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.ForLLM)
	}
	for _, want := range []string{"function", "func", "method", "error", "bug"} {
		if !strings.Contains(res.ForLLM, want) {
			t.Errorf("expected output to contain %q, got %q", want, res.ForLLM)
		}
	}
}

func TestBrainstormSearchTermsTool_RequiresQuery(t *testing.T) {
	tool := NewBrainstormSearchTermsTool()
	res := tool.Execute(context.Background(), map[string]any{})
	if !res.IsError {
		t.Error("expected error for missing query")
	}
}
