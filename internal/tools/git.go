package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// gitCommand runs git inside workspace and returns trimmed stdout.
func gitCommand(ctx context.Context, workspace string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = workspace
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// GitStatusTool reports the working tree's modified/untracked files.
type GitStatusTool struct {
	workspace string
}

func NewGitStatusTool(workspace string) *GitStatusTool { return &GitStatusTool{workspace: workspace} }

func (t *GitStatusTool) Name() string        { return "git_status" }
func (t *GitStatusTool) Description() string { return "Show the working tree status (modified, staged, untracked files)" }
func (t *GitStatusTool) IsDestructive() bool { return false }
func (t *GitStatusTool) ParametersSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (t *GitStatusTool) Execute(ctx context.Context, args map[string]any) *Result {
	out, err := gitCommand(ctx, t.workspace, "status", "--porcelain")
	if err != nil {
		return ErrorResult(err.Error())
	}
	if out == "" {
		return NewResult("working tree clean")
	}
	return NewResult(out)
}

// GitDiffTool shows unstaged (or, with staged=true, staged) changes.
type GitDiffTool struct {
	workspace string
}

func NewGitDiffTool(workspace string) *GitDiffTool { return &GitDiffTool{workspace: workspace} }

func (t *GitDiffTool) Name() string        { return "git_diff" }
func (t *GitDiffTool) Description() string { return "Show uncommitted changes as a unified diff" }
func (t *GitDiffTool) IsDestructive() bool { return false }
func (t *GitDiffTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":   map[string]any{"type": "string", "description": "Limit the diff to this path (optional)"},
			"staged": map[string]any{"type": "boolean", "description": "Show staged changes instead of unstaged"},
		},
	}
}

func (t *GitDiffTool) Execute(ctx context.Context, args map[string]any) *Result {
	gitArgs := []string{"diff"}
	if staged, _ := args["staged"].(bool); staged {
		gitArgs = append(gitArgs, "--cached")
	}
	if path, _ := args["path"].(string); path != "" {
		gitArgs = append(gitArgs, "--", path)
	}
	out, err := gitCommand(ctx, t.workspace, gitArgs...)
	if err != nil {
		return ErrorResult(err.Error())
	}
	if out == "" {
		return NewResult("no changes")
	}
	return NewResult(out)
}

// GitCommitHashTool returns the current HEAD commit hash — the same value
// the cache uses as its validity key (see internal/cache).
type GitCommitHashTool struct {
	workspace string
}

func NewGitCommitHashTool(workspace string) *GitCommitHashTool {
	return &GitCommitHashTool{workspace: workspace}
}

func (t *GitCommitHashTool) Name() string        { return "git_commit_hash" }
func (t *GitCommitHashTool) Description() string { return "Return the current HEAD commit hash" }
func (t *GitCommitHashTool) IsDestructive() bool { return false }
func (t *GitCommitHashTool) ParametersSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (t *GitCommitHashTool) Execute(ctx context.Context, args map[string]any) *Result {
	out, err := gitCommand(ctx, t.workspace, "rev-parse", "HEAD")
	if err != nil {
		return ErrorResult(err.Error())
	}
	return NewResult(out)
}

// CurrentCommitHash is the direct (non-Result) form of git_commit_hash,
// returning the hash as a plain string rather than a tool Result. The
// cache and context builder run git themselves and do not call it.
func CurrentCommitHash(ctx context.Context, workspace string) (string, error) {
	return gitCommand(ctx, workspace, "rev-parse", "HEAD")
}
