package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS schemas (
	table_id   TEXT PRIMARY KEY,
	family     TEXT NOT NULL DEFAULT 'assessment',
	document   TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteSource stores schema documents in a SQLite database.
type SQLiteSource struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteSource opens (and creates if needed) a schema database.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout=5000", "PRAGMA journal_mode=WAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteSource{db: db, dbPath: dbPath}, nil
}

// Put stores or replaces a document after checking that it decodes.
func (s *SQLiteSource) Put(ctx context.Context, tableID string, document []byte) error {
	table, err := Decode(tableID, document)
	if err != nil {
		return fmt.Errorf("schema %s: %w", tableID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schemas (table_id, family, document, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(table_id) DO UPDATE SET
			family = excluded.family,
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP`,
		tableID, string(table.Family), string(document))
	if err != nil {
		return fmt.Errorf("store schema %s: %w", tableID, err)
	}
	return nil
}

// Import copies every document of another source into the database.
// It returns the number of documents stored.
func (s *SQLiteSource) Import(ctx context.Context, from Source) (int, error) {
	ids, err := from.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, id := range ids {
		data, err := from.Fetch(ctx, id)
		if err != nil {
			return count, err
		}
		if err := s.Put(ctx, id, data); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Fetch implements Source.
func (s *SQLiteSource) Fetch(ctx context.Context, tableID string) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM schemas WHERE table_id = ?`, tableID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", tableID, ErrNoDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("query schema %s: %w", tableID, err)
	}
	return []byte(doc), nil
}

// List implements Source.
func (s *SQLiteSource) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT table_id FROM schemas ORDER BY table_id`)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan schema id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a document.
func (s *SQLiteSource) Delete(ctx context.Context, tableID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM schemas WHERE table_id = ?`, tableID)
	if err != nil {
		return fmt.Errorf("delete schema %s: %w", tableID, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
