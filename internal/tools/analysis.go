package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/nextlevelbuilder/codeagent/internal/providers"
)

// SummarizeCodeTool produces a natural-language summary of a file's
// contents by delegating to the Model Client. Invoking the model from
// inside a tool is a deliberate, bounded reentrancy: it happens during
// Executor tool execution, not during the Driver's own Planner call, so no
// mutable per-request state is shared beyond the prompt string built here.
type SummarizeCodeTool struct {
	workspace string
	restrict  bool
	model     providers.ModelClient
}

func NewSummarizeCodeTool(workspace string, restrict bool, model providers.ModelClient) *SummarizeCodeTool {
	return &SummarizeCodeTool{workspace: workspace, restrict: restrict, model: model}
}

func (t *SummarizeCodeTool) Name() string        { return "summarize_code" }
func (t *SummarizeCodeTool) Description() string { return "Summarize a source file's purpose and structure" }
func (t *SummarizeCodeTool) IsDestructive() bool { return false }
func (t *SummarizeCodeTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{"type": "string", "description": "File to summarize"},
		},
		"required": []string{"file_path"},
	}
}

func (t *SummarizeCodeTool) Execute(ctx context.Context, args map[string]any) *Result {
	path, _ := args["file_path"].(string)
	if path == "" {
		return ErrorResult("file_path is required")
	}
	resolved, err := resolvePath(path, t.workspace, t.restrict)
	if err != nil {
		return ErrorResult(err.Error())
	}
	content, err := os.ReadFile(resolved)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to read file: %v", err))
	}

	prompt := fmt.Sprintf("Summarize the purpose and structure of this file in 3-5 sentences:\n\n%s", string(content))
	resp, err := t.model.Generate(ctx, prompt, nil)
	if err != nil {
		return ErrorResult(fmt.Sprintf("summarize failed: %v", err))
	}
	if resp.Metadata["error"] != nil {
		return ErrorResult(fmt.Sprintf("summarize failed: %v", resp.Metadata["error"]))
	}
	return NewResult(resp.Content)
}

// AnalyzeCodeTool asks the Model Client for an assessment of a file's
// quality, issues, or patterns. Like SummarizeCodeTool it calls the model
// from inside tool execution.
type AnalyzeCodeTool struct {
	workspace string
	restrict  bool
	model     providers.ModelClient
}

func NewAnalyzeCodeTool(workspace string, restrict bool, model providers.ModelClient) *AnalyzeCodeTool {
	return &AnalyzeCodeTool{workspace: workspace, restrict: restrict, model: model}
}

func (t *AnalyzeCodeTool) Name() string        { return "analyze_code" }
func (t *AnalyzeCodeTool) Description() string { return "Analyze a source file for issues, patterns, or risks" }
func (t *AnalyzeCodeTool) IsDestructive() bool { return false }
func (t *AnalyzeCodeTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{"type": "string", "description": "File to analyze"},
			"focus":     map[string]any{"type": "string", "description": "Optional area to focus on, e.g. \"error handling\""},
		},
		"required": []string{"file_path"},
	}
}

func (t *AnalyzeCodeTool) Execute(ctx context.Context, args map[string]any) *Result {
	path, _ := args["file_path"].(string)
	if path == "" {
		return ErrorResult("file_path is required")
	}
	focus, _ := args["focus"].(string)
	resolved, err := resolvePath(path, t.workspace, t.restrict)
	if err != nil {
		return ErrorResult(err.Error())
	}
	content, err := os.ReadFile(resolved)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to read file: %v", err))
	}

	prompt := "Analyze this file for issues, risky patterns, or missing error handling"
	if focus != "" {
		prompt = fmt.Sprintf("Analyze this file, focusing on %s", focus)
	}
	prompt = fmt.Sprintf("%s:\n\n%s", prompt, string(content))

	resp, err := t.model.Generate(ctx, prompt, nil)
	if err != nil {
		return ErrorResult(fmt.Sprintf("analyze failed: %v", err))
	}
	if resp.Metadata["error"] != nil {
		return ErrorResult(fmt.Sprintf("analyze failed: %v", resp.Metadata["error"]))
	}
	return NewResult(resp.Content)
}
