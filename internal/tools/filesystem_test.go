package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestReadFileTool_Success(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("Hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	tool := NewReadFileTool(dir, true)
	res := tool.Execute(context.Background(), map[string]any{"file_path": "README.md"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.ForLLM)
	}
	if res.ForLLM != "Hello" {
		t.Errorf("got %q", res.ForLLM)
	}
}

func TestReadFileTool_MissingPath(t *testing.T) {
	tool := NewReadFileTool(t.TempDir(), true)
	res := tool.Execute(context.Background(), map[string]any{})
	if !res.IsError {
		t.Error("expected error for missing file_path")
	}
}

func TestReadFileTool_RejectsEscape(t *testing.T) {
	dir := t.TempDir()
	tool := NewReadFileTool(dir, true)
	res := tool.Execute(context.Background(), map[string]any{"file_path": "../../etc/passwd"})
	if !res.IsError {
		t.Error("expected escape attempt to be rejected")
	}
}

func TestWriteFileTool_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	tool := NewWriteFileTool(dir, true)
	res := tool.Execute(context.Background(), map[string]any{"file_path": "hello.txt", "content": "hi"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.ForLLM)
	}
	data, err := os.ReadFile(filepath.Join(dir, "hello.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hi" {
		t.Errorf("got %q", string(data))
	}
}

func TestWriteFileTool_IsDestructive(t *testing.T) {
	tool := NewWriteFileTool(t.TempDir(), true)
	if !tool.IsDestructive() {
		t.Error("write_file must be destructive")
	}
}

func TestMoveFileTool_Moves(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	tool := NewMoveFileTool(dir, true)
	res := tool.Execute(context.Background(), map[string]any{"source": "a.txt", "destination": "sub/b.txt"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.ForLLM)
	}
	if _, err := os.Stat(filepath.Join(dir, "sub", "b.txt")); err != nil {
		t.Errorf("expected moved file to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(err) {
		t.Error("expected source to no longer exist")
	}
}
