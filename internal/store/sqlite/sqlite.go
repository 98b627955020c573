// Package sqlite implements internal/store's Store contract on top of
// modernc.org/sqlite, a cgo-free driver. The schema is applied directly
// from the shared migrations tree (see migrate.go) rather than through
// golang-migrate's own Migrate orchestrator, since golang-migrate's
// upstream sqlite3 driver assumes the cgo mattn/go-sqlite3 binding; the
// Postgres backend (internal/store/pg) uses golang-migrate's postgres
// driver directly.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nextlevelbuilder/codeagent/internal/model"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// applies pending schema migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc.org/sqlite connections are not safe for concurrent writers;
	// the core's own single-writer assumption (§5) makes one connection
	// sufficient and avoids SQLITE_BUSY under concurrent readers+writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) GetFile(ctx context.Context, filePath string) (model.CachedFile, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT file_path, commit_hash, content_hash, content, summary, last_updated
		FROM file_cache WHERE file_path = ?`, filePath)

	var f model.CachedFile
	var summary sql.NullString
	var lastUpdated string
	if err := row.Scan(&f.FilePath, &f.CommitHash, &f.ContentHash, &f.Content, &summary, &lastUpdated); err != nil {
		if err == sql.ErrNoRows {
			return model.CachedFile{}, false, nil
		}
		return model.CachedFile{}, false, fmt.Errorf("get file: %w", err)
	}
	f.Summary = summary.String
	f.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)
	return f, true, nil
}

func (s *Store) PutFile(ctx context.Context, file model.CachedFile) error {
	if file.LastUpdated.IsZero() {
		file.LastUpdated = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_cache (file_path, commit_hash, content_hash, content, summary, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			commit_hash = excluded.commit_hash,
			content_hash = excluded.content_hash,
			content = excluded.content,
			summary = excluded.summary,
			last_updated = excluded.last_updated`,
		file.FilePath, file.CommitHash, file.ContentHash, file.Content,
		nullableString(file.Summary), file.LastUpdated.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put file: %w", err)
	}
	return nil
}

func (s *Store) DeleteStaleCommits(ctx context.Context, keepCommits []string) (int, error) {
	if len(keepCommits) == 0 {
		return 0, nil
	}
	placeholders := make([]any, len(keepCommits))
	query := "DELETE FROM file_cache WHERE commit_hash NOT IN ("
	for i, c := range keepCommits {
		if i > 0 {
			query += ","
		}
		query += "?"
		placeholders[i] = c
	}
	query += ")"
	res, err := s.db.ExecContext(ctx, query, placeholders...)
	if err != nil {
		return 0, fmt.Errorf("delete stale cache entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *Store) CreateSession(ctx context.Context, rec model.SessionRecord) (int64, error) {
	modifiedFiles, err := json.Marshal(rec.ModifiedFiles)
	if err != nil {
		return 0, fmt.Errorf("marshal modified_files: %w", err)
	}
	var executionLog sql.NullString
	if len(rec.ExecutionLog) > 0 {
		raw, err := json.Marshal(rec.ExecutionLog)
		if err != nil {
			return 0, fmt.Errorf("marshal execution_log: %w", err)
		}
		executionLog = sql.NullString{String: string(raw), Valid: true}
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (timestamp, user_prompt, commit_hash, modified_files, summary, execution_log)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339), rec.UserPrompt, rec.CommitHash, string(modifiedFiles), rec.Summary, executionLog)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) RecentSummaries(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT summary FROM sessions
		WHERE summary != ''
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
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
	var metadata sql.NullString
	if len(interaction.Metadata) > 0 {
		raw, err := json.Marshal(interaction.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}
	ts := interaction.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO model_interactions (session_id, timestamp, step_number, prompt, response, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`,
		interaction.SessionID, ts.Format(time.RFC3339), interaction.StepNumber,
		interaction.Prompt, interaction.Response, metadata)
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
