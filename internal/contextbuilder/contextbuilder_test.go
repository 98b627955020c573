package contextbuilder

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

type fakeSummaryLister struct {
	summaries []string
}

func (f *fakeSummaryLister) RecentSummaries(_ context.Context, limit int) ([]string, error) {
	if limit < len(f.summaries) {
		return f.summaries[:limit], nil
	}
	return f.summaries, nil
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.com",
			"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v: %s", args, err, out)
		}
	}
	run("init", "-q")
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a"), 0o644)
	run("add", ".")
	run("commit", "-q", "-m", "initial")
	return dir
}

func TestBuilder_Build_CommitAndModifiedFiles(t *testing.T) {
	dir := initRepo(t)
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n// edit"), 0o644)

	b := NewBuilder(dir, &fakeSummaryLister{}, 5, false, 0)
	ctx := b.Build(context.Background(), "do something")

	if ctx.CurrentCommit == "" || ctx.CurrentCommit == "unknown" {
		t.Errorf("expected a real commit hash, got %q", ctx.CurrentCommit)
	}
	found := false
	for _, f := range ctx.ModifiedFiles {
		if f == "a.go" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a.go in modified files, got %v", ctx.ModifiedFiles)
	}
}

func TestBuilder_Build_UnknownCommitWithoutGit(t *testing.T) {
	b := NewBuilder(t.TempDir(), &fakeSummaryLister{}, 5, false, 0)
	ctx := b.Build(context.Background(), "")
	if ctx.CurrentCommit != "unknown" {
		t.Errorf("expected unknown commit, got %q", ctx.CurrentCommit)
	}
	if ctx.UserPrompt != "" {
		t.Errorf("expected empty prompt coerced, got %q", ctx.UserPrompt)
	}
}

func TestBuilder_RecentSummaries_NoFilter(t *testing.T) {
	lister := &fakeSummaryLister{summaries: []string{"one", "two", "three"}}
	b := NewBuilder(t.TempDir(), lister, 2, false, 0)
	ctx := b.Build(context.Background(), "anything")
	if len(ctx.RecentSummaries) != 2 {
		t.Errorf("expected summaries capped at maxSummaries, got %v", ctx.RecentSummaries)
	}
}

func TestBuilder_RecentSummaries_RelevanceFilter(t *testing.T) {
	lister := &fakeSummaryLister{summaries: []string{
		"implemented the login handler and session middleware",
		"fixed a typo in the README",
		"refactored the login handler error paths",
	}}
	b := NewBuilder(t.TempDir(), lister, 5, true, 0.15)
	ctx := b.Build(context.Background(), "improve the login handler")

	if len(ctx.RecentSummaries) == 0 {
		t.Fatal("expected at least one relevant summary")
	}
	for _, s := range ctx.RecentSummaries {
		if s == "fixed a typo in the README" {
			t.Error("expected irrelevant summary to be filtered out")
		}
	}
}

func TestJaccard(t *testing.T) {
	a := tokenize("the quick brown fox")
	b := tokenize("the quick brown fox")
	if got := jaccard(a, b); got != 1.0 {
		t.Errorf("expected identical sets to score 1.0, got %v", got)
	}

	c := tokenize("completely different words here")
	if got := jaccard(a, c); got != 0 {
		t.Errorf("expected disjoint sets to score 0, got %v", got)
	}
}
