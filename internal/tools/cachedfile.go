package tools

import (
	"context"
	"fmt"

	"github.com/nextlevelbuilder/codeagent/internal/cache"
)

// ReadFileCachedTool exposes the Cache Service's read-through cache as a
// tool, so a Plan can request a file without paying for a disk read on
// every step while the commit hasn't moved.
type ReadFileCachedTool struct {
	cache *cache.Service
}

func NewReadFileCachedTool(cacheService *cache.Service) *ReadFileCachedTool {
	return &ReadFileCachedTool{cache: cacheService}
}

func (t *ReadFileCachedTool) Name() string { return "read_file_cached" }
func (t *ReadFileCachedTool) Description() string {
	return "Read a file's contents through the commit-scoped cache, avoiding a re-read when the commit hasn't changed"
}
func (t *ReadFileCachedTool) IsDestructive() bool { return false }
func (t *ReadFileCachedTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{"type": "string", "description": "Path to the file to read"},
		},
		"required": []string{"file_path"},
	}
}

func (t *ReadFileCachedTool) Execute(ctx context.Context, args map[string]any) *Result {
	path, _ := args["file_path"].(string)
	if path == "" {
		return ErrorResult("file_path is required")
	}
	content, _, err := t.cache.ReadFileCached(ctx, path)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to read %s: %v", path, err))
	}
	return NewResult(content)
}

// CacheFileSummaryTool lets a Plan attach a summary to an already-cached
// file's current-commit entry, without re-supplying its content.
type CacheFileSummaryTool struct {
	cache *cache.Service
}

func NewCacheFileSummaryTool(cacheService *cache.Service) *CacheFileSummaryTool {
	return &CacheFileSummaryTool{cache: cacheService}
}

func (t *CacheFileSummaryTool) Name() string { return "cache_file_summary" }
func (t *CacheFileSummaryTool) Description() string {
	return "Attach a summary to a file's cached entry at the current commit"
}
func (t *CacheFileSummaryTool) IsDestructive() bool { return false }
func (t *CacheFileSummaryTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{"type": "string"},
			"summary":   map[string]any{"type": "string"},
		},
		"required": []string{"file_path", "summary"},
	}
}

func (t *CacheFileSummaryTool) Execute(ctx context.Context, args map[string]any) *Result {
	path, _ := args["file_path"].(string)
	summary, _ := args["summary"].(string)
	if path == "" || summary == "" {
		return ErrorResult("file_path and summary are required")
	}
	if err := t.cache.CacheFileSummary(ctx, path, summary); err != nil {
		return ErrorResult(fmt.Sprintf("failed to cache summary for %s: %v", path, err))
	}
	return NewResult(fmt.Sprintf("cached summary for %s", path))
}
