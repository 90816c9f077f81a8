package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dotnet-bindgen/internal/extractor"
	"dotnet-bindgen/internal/ffi"

	_ "modernc.org/sqlite"
)

// SQLiteStore caches extracted modules keyed by source path, so unchanged
// files are not parsed again.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; extraction workers share one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// schemaVersion is bumped whenever the cached encoding changes. The cache
// holds derived data only, so an old schema is dropped and rebuilt.
const schemaVersion = 2

func (s *SQLiteStore) initSchema() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS modules (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			program JSON NOT NULL,
			spans JSON NOT NULL,
			diagnostics JSON NOT NULL
		);`,
		fmt.Sprintf("PRAGMA user_version = %d", schemaVersion),
	}
	if version != schemaVersion {
		queries = append([]string{"DROP TABLE IF EXISTS modules"}, queries...)
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveModule upserts the extraction result of one file.
func (s *SQLiteStore) SaveModule(ctx context.Context, mod *extractor.Module) error {
	program, err := json.Marshal(mod.Program)
	if err != nil {
		return fmt.Errorf("failed to encode program for %s: %w", mod.Path, err)
	}
	diags := mod.Diagnostics
	if diags == nil {
		diags = extractor.Diagnostics{}
	}
	spans := mod.Spans
	if spans == nil {
		spans = []extractor.Span{}
	}
	spanJSON, err := json.Marshal(spans)
	if err != nil {
		return fmt.Errorf("failed to encode spans for %s: %w", mod.Path, err)
	}
	diagJSON, err := json.Marshal(diags)
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics for %s: %w", mod.Path, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO modules (path, name, content_hash, program, spans, diagnostics)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name=excluded.name,
			content_hash=excluded.content_hash,
			program=excluded.program,
			spans=excluded.spans,
			diagnostics=excluded.diagnostics
	`, mod.Path, mod.Name, mod.ContentHash, string(program), string(spanJSON), string(diagJSON))
	return err
}

// GetModule returns the cached module for path if its content hash matches.
// The boolean is false on a miss or a stale entry.
func (s *SQLiteStore) GetModule(ctx context.Context, path, contentHash string) (*extractor.Module, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT path, name, content_hash, program, spans, diagnostics FROM modules WHERE path = ?", path)

	var mod extractor.Module
	var program, spans, diags string
	if err := row.Scan(&mod.Path, &mod.Name, &mod.ContentHash, &program, &spans, &diags); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if mod.ContentHash != contentHash {
		return nil, false, nil
	}

	mod.Program = ffi.NewProgram()
	if err := json.Unmarshal([]byte(program), mod.Program); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached program for %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(spans), &mod.Spans); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached spans for %s: %w", path, err)
	}
	if len(mod.Spans) == 0 {
		mod.Spans = nil
	}
	if err := json.Unmarshal([]byte(diags), &mod.Diagnostics); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached diagnostics for %s: %w", path, err)
	}
	if len(mod.Diagnostics) == 0 {
		mod.Diagnostics = nil
	}

	return &mod, true, nil
}

// ListPaths returns every cached path in ascending order.
func (s *SQLiteStore) ListPaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path FROM modules ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DeleteModules removes cached entries for the given paths.
func (s *SQLiteStore) DeleteModules(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM modules WHERE path = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range paths {
		if _, err := stmt.ExecContext(ctx, p); err != nil {
			return err
		}
	}

	return tx.Commit()
}
