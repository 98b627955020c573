// Package store defines the persistence contracts for the cache and
// session subsystems, and provides sqlite and Postgres backends.
package store

import (
	"context"

	"github.com/nextlevelbuilder/codeagent/internal/model"
)

// CacheStore persists commit-scoped file cache entries. At most one entry
// exists per file path (invariant I1 on the cache's data model);
// re-caching replaces the prior entry.
type CacheStore interface {
	GetFile(ctx context.Context, filePath string) (model.CachedFile, bool, error)
	PutFile(ctx context.Context, file model.CachedFile) error
	DeleteStaleCommits(ctx context.Context, keepCommits []string) (int, error)
}

// SessionStore persists SessionRecords and optional ModelInteraction audit
// rows. Session IDs are monotonic and never reused (invariant I4).
type SessionStore interface {
	CreateSession(ctx context.Context, rec model.SessionRecord) (int64, error)
	RecentSummaries(ctx context.Context, limit int) ([]string, error)
	RecordInteraction(ctx context.Context, interaction model.ModelInteraction) error
	Close() error
}

// Store bundles both contracts over a single connection, matching the
// spec's requirement that cache and sessions share one relational engine
// with single-writer semantics.
type Store interface {
	CacheStore
	SessionStore
}
