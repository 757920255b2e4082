package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hengadev/tagxml"
	"github.com/hengadev/tagxml/internal/digest"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	content    BLOB NOT NULL,
	digest     TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Store keeps documents as rows of a SQLite table. Every row carries a
// digest of its content which is checked on read.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and prepares its schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = tagxml.DefaultSQLitePath
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database %s: %w", tagxml.ErrIO, path, err)
	}
	// An in-memory database only lives as long as its connection.
	db.SetMaxOpenConns(1)

	store, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an open database and creates the documents table if needed.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database cannot be nil", tagxml.ErrInvalidInput)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("%w: failed to create documents table: %w", tagxml.ErrIO, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Put inserts or replaces the document stored under key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", tagxml.ErrIO, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (key, content, digest, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			content = excluded.content,
			digest = excluded.digest,
			updated_at = excluded.updated_at
	`, key, data, digest.Sum(data), s.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: failed to store document '%s': %w", tagxml.ErrIO, key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit document '%s': %w", tagxml.ErrIO, key, err)
	}
	return nil
}

// Get returns the document stored under key after checking its digest.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT content, digest FROM documents WHERE key = ?
	`, key)
	var (
		content []byte
		sum     string
	)
	err := row.Scan(&content, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", tagxml.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load document '%s': %w", tagxml.ErrIO, key, err)
	}
	if err := digest.Verify(content, sum); err != nil {
		return nil, fmt.Errorf("%w: document '%s': %w", tagxml.ErrIO, key, err)
	}
	return content, nil
}

// Keys lists the stored document keys in order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM documents ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list documents: %w", tagxml.ErrIO, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: failed to scan document key: %w", tagxml.ErrIO, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to list documents: %w", tagxml.ErrIO, err)
	}
	return keys, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
