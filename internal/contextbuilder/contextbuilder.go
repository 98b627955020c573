// Package contextbuilder assembles the per-request Context the Planner
// renders into its prompt: current commit, modified files, and relevant
// prior session summaries.
package contextbuilder

import (
	"bufio"
	"context"
	"os/exec"
	"sort"
	"strings"

	"github.com/nextlevelbuilder/codeagent/internal/model"
)

// SummaryLister is the subset of the Session Store the Context Builder
// reads from.
type SummaryLister interface {
	RecentSummaries(ctx context.Context, limit int) ([]string, error)
}

// Builder constructs a Context for each request.
type Builder struct {
	workspace        string
	summaries        SummaryLister
	maxSummaries     int
	relevanceFilter  bool
	relevanceThresh  float64
}

// NewBuilder returns a Builder. relevanceThreshold defaults to 0.15 when
// <= 0 (the spec's Jaccard similarity cutoff).
func NewBuilder(workspace string, summaries SummaryLister, maxSummaries int, relevanceFilter bool, relevanceThreshold float64) *Builder {
	if relevanceThreshold <= 0 {
		relevanceThreshold = 0.15
	}
	if maxSummaries <= 0 {
		maxSummaries = 5
	}
	return &Builder{
		workspace:       workspace,
		summaries:       summaries,
		maxSummaries:    maxSummaries,
		relevanceFilter: relevanceFilter,
		relevanceThresh: relevanceThreshold,
	}
}

// Build assembles a Context for userPrompt.
func (b *Builder) Build(ctx context.Context, userPrompt string) model.Context {
	commit := b.currentCommit(ctx)
	modified := b.modifiedFiles(ctx)
	summaries := b.recentSummaries(ctx, userPrompt)

	return model.Context{
		UserPrompt:      userPrompt,
		CurrentCommit:   commit,
		ModifiedFiles:   modified,
		RecentSummaries: summaries,
	}
}

func (b *Builder) currentCommit(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "git", "-C", b.workspace, "rev-parse", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

// modifiedFiles runs git status --porcelain and extracts the filename
// column, ignoring the two-character status prefix.
func (b *Builder) modifiedFiles(ctx context.Context) []string {
	out, err := exec.CommandContext(ctx, "git", "-C", b.workspace, "status", "--porcelain").Output()
	if err != nil {
		return nil
	}
	var files []string
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 4 {
			continue
		}
		name := strings.TrimSpace(line[3:])
		if idx := strings.Index(name, " -> "); idx >= 0 {
			name = name[idx+4:]
		}
		files = append(files, name)
	}
	return files
}

func (b *Builder) recentSummaries(ctx context.Context, userPrompt string) []string {
	if b.summaries == nil {
		return nil
	}
	// Over-fetch before filtering so the relevance pass has a pool to
	// choose from; the store itself already orders newest-first (I5).
	fetchLimit := b.maxSummaries
	if b.relevanceFilter {
		fetchLimit = b.maxSummaries * 4
		if fetchLimit < 20 {
			fetchLimit = 20
		}
	}
	candidates, err := b.summaries.RecentSummaries(ctx, fetchLimit)
	if err != nil || len(candidates) == 0 {
		return nil
	}
	if !b.relevanceFilter {
		return truncate(candidates, b.maxSummaries)
	}

	type scored struct {
		summary string
		score   float64
	}
	promptTokens := tokenize(userPrompt)
	var relevant []scored
	for _, s := range candidates {
		score := jaccard(promptTokens, tokenize(s))
		if score >= b.relevanceThresh {
			relevant = append(relevant, scored{summary: s, score: score})
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool { return relevant[i].score > relevant[j].score })

	out := make([]string, 0, b.maxSummaries)
	for _, r := range relevant {
		if len(out) >= b.maxSummaries {
			break
		}
		out = append(out, r.summary)
	}
	return out
}

func truncate(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// tokenize lowercases and splits on whitespace, matching the spec's
// "bag-of-words similarity (Jaccard over lowercased whitespace tokens)".
func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		tokens[word] = true
	}
	return tokens
}

// jaccard computes |a ∩ b| / |a ∪ b| over two token sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	union := make(map[string]bool, len(a)+len(b))
	for tok := range a {
		union[tok] = true
		if b[tok] {
			intersection++
		}
	}
	for tok := range b {
		union[tok] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}
