package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ReadFileTool reads a file's contents from the workspace.
type ReadFileTool struct {
	workspace string
	restrict  bool
}

func NewReadFileTool(workspace string, restrict bool) *ReadFileTool {
	return &ReadFileTool{workspace: workspace, restrict: restrict}
}

func (t *ReadFileTool) Name() string        { return "read_file" }
func (t *ReadFileTool) Description() string { return "Read the contents of a file in the workspace" }
func (t *ReadFileTool) IsDestructive() bool { return false }
func (t *ReadFileTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{"type": "string", "description": "Path to the file to read"},
		},
		"required": []string{"file_path"},
	}
}

// Execute accepts file_path, aliasing the bare "path" key some planners emit.
func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) *Result {
	path, _ := args["file_path"].(string)
	if path == "" {
		path, _ = args["path"].(string)
	}
	if path == "" {
		return ErrorResult("file_path is required")
	}
	resolved, err := resolvePath(path, t.workspace, t.restrict)
	if err != nil {
		return ErrorResult(err.Error())
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to read file: %v", err))
	}
	return NewResult(string(data))
}

// WriteFileTool overwrites or creates a file in the workspace. Destructive:
// the Executor must gate it behind confirmation unless auto-confirmed.
type WriteFileTool struct {
	workspace string
	restrict  bool
}

func NewWriteFileTool(workspace string, restrict bool) *WriteFileTool {
	return &WriteFileTool{workspace: workspace, restrict: restrict}
}

func (t *WriteFileTool) Name() string        { return "write_file" }
func (t *WriteFileTool) Description() string { return "Write content to a file, creating or overwriting it" }
func (t *WriteFileTool) IsDestructive() bool { return true }
func (t *WriteFileTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{"type": "string", "description": "Path to the file to write"},
			"content":   map[string]any{"type": "string", "description": "Content to write"},
		},
		"required": []string{"file_path", "content"},
	}
}

// Execute accepts file_path, aliasing the bare "path" key some planners emit.
func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) *Result {
	path, _ := args["file_path"].(string)
	if path == "" {
		path, _ = args["path"].(string)
	}
	content, _ := args["content"].(string)
	if path == "" {
		return ErrorResult("file_path is required")
	}
	resolved, err := resolvePath(path, t.workspace, t.restrict)
	if err != nil {
		return ErrorResult(err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return ErrorResult(fmt.Sprintf("failed to create directories: %v", err))
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return ErrorResult(fmt.Sprintf("failed to write file: %v", err))
	}
	return NewResult(fmt.Sprintf("wrote %d bytes to %s", len(content), path))
}

// MoveFileTool renames or relocates a file within the workspace.
// Destructive: overwrites any existing file at dest.
type MoveFileTool struct {
	workspace string
	restrict  bool
}

func NewMoveFileTool(workspace string, restrict bool) *MoveFileTool {
	return &MoveFileTool{workspace: workspace, restrict: restrict}
}

func (t *MoveFileTool) Name() string        { return "move_file" }
func (t *MoveFileTool) Description() string { return "Move or rename a file within the workspace" }
func (t *MoveFileTool) IsDestructive() bool { return true }
func (t *MoveFileTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source":      map[string]any{"type": "string", "description": "Existing file path"},
			"destination": map[string]any{"type": "string", "description": "New file path"},
		},
		"required": []string{"source", "destination"},
	}
}

func (t *MoveFileTool) Execute(ctx context.Context, args map[string]any) *Result {
	src, _ := args["source"].(string)
	dst, _ := args["destination"].(string)
	if src == "" || dst == "" {
		return ErrorResult("source and destination are required")
	}
	resolvedSrc, err := resolvePath(src, t.workspace, t.restrict)
	if err != nil {
		return ErrorResult(err.Error())
	}
	resolvedDst, err := resolvePath(dst, t.workspace, t.restrict)
	if err != nil {
		return ErrorResult(err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(resolvedDst), 0o755); err != nil {
		return ErrorResult(fmt.Sprintf("failed to create directories: %v", err))
	}
	if err := os.Rename(resolvedSrc, resolvedDst); err != nil {
		return ErrorResult(fmt.Sprintf("failed to move file: %v", err))
	}
	return NewResult(fmt.Sprintf("moved %s to %s", src, dst))
}
