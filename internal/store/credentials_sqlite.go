package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	sqliteFileName = "taskdash.sqlite"
	credentialKey  = "session"
)

// SQLiteCredentials persists the credential in a small key/value table.
// Selected with session.store=sqlite.
type SQLiteCredentials struct {
	Path string
}

func (s Store) SQLiteCredentials() *SQLiteCredentials {
	return &SQLiteCredentials{Path: s.path(sqliteFileName)}
}

func (c *SQLiteCredentials) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", c.Path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (c *SQLiteCredentials) Load(ctx context.Context) (*Credential, error) {
	db, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var raw string
	err = db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, credentialKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cred Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return nil, nil
	}
	if !cred.Complete() {
		return nil, nil
	}
	return &cred, nil
}

func (c *SQLiteCredentials) Save(ctx context.Context, cred Credential) error {
	if cred.SavedAt.IsZero() {
		cred.SavedAt = time.Now().UTC()
	}
	b, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx,
		`INSERT INTO kv (k, v, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`,
		credentialKey, string(b), cred.SavedAt.Format(time.RFC3339Nano))
	return err
}

func (c *SQLiteCredentials) Clear(ctx context.Context) error {
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, credentialKey)
	return err
}
