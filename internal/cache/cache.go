// Package cache implements the commit-scoped file cache the read-oriented
// cache tools use to avoid re-reading unchanged files.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nextlevelbuilder/codeagent/internal/model"
	"github.com/nextlevelbuilder/codeagent/internal/store"
)

// noGitCommit is the sentinel commit hash used when the workspace isn't a
// git repository, grounded on original_source's "no-git" fallback.
const noGitCommit = "no-git"

// Service is the Cache Service: commit-scoped reads backed by a Store.
type Service struct {
	workspace string
	store     store.CacheStore
}

func NewService(workspace string, cacheStore store.CacheStore) *Service {
	return &Service{workspace: workspace, store: cacheStore}
}

// CurrentCommit returns the workspace's HEAD commit hash, or "no-git" when
// the workspace isn't a git repository (invariant I3 validity key).
func (s *Service) CurrentCommit(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "git", "-C", s.workspace, "rev-parse", "HEAD").Output()
	if err != nil {
		return noGitCommit
	}
	return strings.TrimSpace(string(out))
}

// ReadFileCached reads filePath through the commit-scoped cache: a hit at
// the current commit returns the cached content, a miss reads the file
// fresh and populates the cache.
func (s *Service) ReadFileCached(ctx context.Context, filePath string) (content string, summary string, err error) {
	commit := s.CurrentCommit(ctx)

	cached, ok, getErr := s.store.GetFile(ctx, filePath)
	if getErr == nil && ok && cached.CommitHash == commit {
		return cached.Content, cached.Summary, nil
	}

	data, readErr := os.ReadFile(s.diskPath(filePath))
	if readErr != nil {
		return "", "", fmt.Errorf("read file: %w", readErr)
	}
	content = string(data)

	if putErr := s.store.PutFile(ctx, model.CachedFile{
		FilePath:    filePath,
		CommitHash:  commit,
		ContentHash: contentHash(data),
		Content:     content,
		LastUpdated: time.Now().UTC(),
	}); putErr != nil {
		slog.Warn("cache: failed to store file", "path", filePath, "error", putErr)
	}
	return content, "", nil
}

// CacheFileSummary attaches a summary to filePath's entry at the current
// commit, reading and caching the file fresh if it wasn't cached yet.
func (s *Service) CacheFileSummary(ctx context.Context, filePath, summary string) error {
	commit := s.CurrentCommit(ctx)

	cached, ok, _ := s.store.GetFile(ctx, filePath)
	if ok && cached.CommitHash == commit {
		cached.Summary = summary
		cached.LastUpdated = time.Now().UTC()
		return s.store.PutFile(ctx, cached)
	}

	data, err := os.ReadFile(s.diskPath(filePath))
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	return s.store.PutFile(ctx, model.CachedFile{
		FilePath:    filePath,
		CommitHash:  commit,
		ContentHash: contentHash(data),
		Content:     string(data),
		Summary:     summary,
		LastUpdated: time.Now().UTC(),
	})
}

// CleanupOldCache evicts cache entries outside the last keepLastNCommits
// commits. If git history can't be read, it keeps everything rather than
// evicting blindly.
func (s *Service) CleanupOldCache(ctx context.Context, keepLastNCommits int) (int, error) {
	if keepLastNCommits <= 0 {
		keepLastNCommits = 10
	}
	out, err := exec.CommandContext(ctx, "git", "-C", s.workspace, "log",
		fmt.Sprintf("-%d", keepLastNCommits), "--format=%H").Output()
	if err != nil {
		return 0, nil
	}
	commits := strings.Split(strings.TrimSpace(string(out)), "\n")
	commits = append(commits, noGitCommit)
	return s.store.DeleteStaleCommits(ctx, commits)
}

// diskPath resolves a relative filePath against the workspace. The cache
// key stays filePath as given.
func (s *Service) diskPath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(s.workspace, filePath)
}

func contentHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
