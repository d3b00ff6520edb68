package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteSlots keeps slots in a single table of an SQLite database.
type SQLiteSlots struct {
	db *sql.DB
}

// NewSQLiteSlots opens (or creates) the database at dsn and creates the slot
// table. Example DSN: "file:companion.db?mode=rwc".
func NewSQLiteSlots(ctx context.Context, dsn string) (*SQLiteSlots, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteSlots{db: db}, nil
}

func (s *SQLiteSlots) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteSlots) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := s.db.Exec(`INSERT INTO slots(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("writing slot %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteSlots) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := s.db.Exec(`DELETE FROM slots WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("removing slot %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteSlots) Close() error {
	return s.db.Close()
}
