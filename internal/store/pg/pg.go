// Package pg implements internal/store's Store contract on Postgres via
// pgx/v5, for deployments that want a shared server-backed store instead of
// the default embedded sqlite file.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nextlevelbuilder/codeagent/internal/model"
	"github.com/nextlevelbuilder/codeagent/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and applies pending schema migrations via
// golang-migrate's postgres database driver against the shared migrations
// tree.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := applyMigrations(dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

// applyMigrations runs the shared migration tree through golang-migrate's
// postgres driver. It opens a short-lived database/sql connection via
// pgx/v5's stdlib adapter purely for schema management; all runtime
// queries go through the pgxpool.Pool instead.
func applyMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init postgres migrate driver: %w", err)
	}
	sourceDriver, err := iofs.New(store.MigrationsFS(), "migrations")
	if err != nil {
		return fmt.Errorf("open migrations source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) GetFile(ctx context.Context, filePath string) (model.CachedFile, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT file_path, commit_hash, content_hash, content, COALESCE(summary, ''), last_updated
		FROM file_cache WHERE file_path = $1`, filePath)

	var f model.CachedFile
	var lastUpdated string
	if err := row.Scan(&f.FilePath, &f.CommitHash, &f.ContentHash, &f.Content, &f.Summary, &lastUpdated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CachedFile{}, false, nil
		}
		return model.CachedFile{}, false, fmt.Errorf("get file: %w", err)
	}
	f.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)
	return f, true, nil
}

func (s *Store) PutFile(ctx context.Context, file model.CachedFile) error {
	if file.LastUpdated.IsZero() {
		file.LastUpdated = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO file_cache (file_path, commit_hash, content_hash, content, summary, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (file_path) DO UPDATE SET
			commit_hash = excluded.commit_hash,
			content_hash = excluded.content_hash,
			content = excluded.content,
			summary = excluded.summary,
			last_updated = excluded.last_updated`,
		file.FilePath, file.CommitHash, file.ContentHash, file.Content,
		file.Summary, file.LastUpdated.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put file: %w", err)
	}
	return nil
}

func (s *Store) DeleteStaleCommits(ctx context.Context, keepCommits []string) (int, error) {
	if len(keepCommits) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM file_cache WHERE commit_hash != ALL($1)`, keepCommits)
	if err != nil {
		return 0, fmt.Errorf("delete stale cache entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) CreateSession(ctx context.Context, rec model.SessionRecord) (int64, error) {
	modifiedFiles, err := json.Marshal(rec.ModifiedFiles)
	if err != nil {
		return 0, fmt.Errorf("marshal modified_files: %w", err)
	}
	var executionLog []byte
	if len(rec.ExecutionLog) > 0 {
		executionLog, err = json.Marshal(rec.ExecutionLog)
		if err != nil {
			return 0, fmt.Errorf("marshal execution_log: %w", err)
		}
	}
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var id int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO sessions (timestamp, user_prompt, commit_hash, modified_files, summary, execution_log)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		ts.Format(time.RFC3339), rec.UserPrompt, rec.CommitHash, string(modifiedFiles), rec.Summary, executionLog,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *Store) RecentSummaries(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT summary FROM sessions
		WHERE summary != ''
		ORDER BY timestamp DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent summaries: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var summary string
		if err := rows.Scan(&summary); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func (s *Store) RecordInteraction(ctx context.Context, interaction model.ModelInteraction) error {
	var metadata []byte
	if len(interaction.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(interaction.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}
	ts := interaction.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO model_interactions (session_id, timestamp, step_number, prompt, response, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		interaction.SessionID, ts.Format(time.RFC3339), interaction.StepNumber,
		interaction.Prompt, interaction.Response, metadata)
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}
