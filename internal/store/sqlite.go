package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists each collection as one versioned document row in an
// embedded SQLite database. The version column carries the optimistic
// concurrency token; a conditional UPDATE that matches zero rows is a lost
// race.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS collections (
	name    TEXT PRIMARY KEY,
	doc     TEXT NOT NULL,
	version INTEGER NOT NULL
);`

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// PingContext exposes connectivity for readiness checks.
func (s *SQLiteStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Read(ctx context.Context, collection string) ([]json.RawMessage, Token, error) {
	var (
		doc     string
		version int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT doc, version FROM collections WHERE name = ?`, collection,
	).Scan(&doc, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read collection %s: %w", collection, err)
	}

	rows, err := decodeDoc([]byte(doc))
	if err != nil {
		return nil, "", fmt.Errorf("decode collection %s: %w", collection, err)
	}
	return rows, Token(strconv.FormatInt(version, 10)), nil
}

func (s *SQLiteStore) Write(ctx context.Context, collection string, rows []json.RawMessage, expected Token) (Token, error) {
	doc, err := encodeDoc(rows)
	if err != nil {
		return "", fmt.Errorf("encode collection %s: %w", collection, err)
	}

	if expected == "" {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO collections (name, doc, version) VALUES (?, ?, 1)`,
			collection, string(doc),
		)
		if err != nil {
			// Unique constraint means someone created it first.
			return "", ErrConflict
		}
		return Token("1"), nil
	}

	version, err := strconv.ParseInt(string(expected), 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed token %q: %w", expected, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE collections SET doc = ?, version = version + 1 WHERE name = ? AND version = ?`,
		string(doc), collection, version,
	)
	if err != nil {
		return "", fmt.Errorf("write collection %s: %w", collection, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", ErrConflict
	}
	return Token(strconv.FormatInt(version+1, 10)), nil
}
