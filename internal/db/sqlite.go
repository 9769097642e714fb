// Package db provides the sqlite-backed blob table used by self-hosted
// deployments for durable persistence of the record document.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pmarinho/classxp/internal/blobstore"
)

// Open opens (creating if needed) the sqlite database at path.
func Open(path string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return sqlDB, nil
}

// BlobStore keeps named blobs in a single sqlite table.
type BlobStore struct {
	db *sql.DB
}

var _ blobstore.Backend = (*BlobStore)(nil)

func NewBlobStore(sqlDB *sql.DB) (*BlobStore, error) {
	if sqlDB == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := sqlDB.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	const schema = `CREATE TABLE IF NOT EXISTS blobs (
		key        TEXT PRIMARY KEY,
		data       BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := sqlDB.Exec(schema); err != nil {
		return nil, fmt.Errorf("create blobs table: %w", err)
	}
	return &BlobStore{db: sqlDB}, nil
}

func (s *BlobStore) GetBlob(key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *BlobStore) PutBlob(key string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO blobs (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
