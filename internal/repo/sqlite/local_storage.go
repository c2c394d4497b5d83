package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
)

var _ repository.LocalStorage = (*LocalStorage)(nil)

type LocalStorage struct {
	db *sql.DB
}

// Open opens (and creates when missing) the database file at dbPath.
func Open(dbPath string) (*LocalStorage, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite path must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &LocalStorage{db: db}, nil
}

func createSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS local_storage (
	shopper_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (shopper_id, key)
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *LocalStorage) GetItem(ctx context.Context, shopperID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM local_storage WHERE shopper_id = ? AND key = ?`,
		shopperID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %s: %w", key, err)
	}
	return value, true, nil
}

func (s *LocalStorage) SetItem(ctx context.Context, shopperID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO local_storage (shopper_id, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (shopper_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		shopperID, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set item %s: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) RemoveItem(ctx context.Context, shopperID, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM local_storage WHERE shopper_id = ? AND key = ?`,
		shopperID, key)
	if err != nil {
		return fmt.Errorf("remove item %s: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) Close() error {
	return s.db.Close()
}
