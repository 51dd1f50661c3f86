package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/cala/engine/core"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS files (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps every payload as a row of a single table.
type SQLiteStore struct {
	db      *sql.DB
	journal *core.Journal
}

func NewSQLiteStore(ctx context.Context, dbPath string, journal *core.Journal) (*SQLiteStore, error) {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// sqlite allows a single writer; job workers share one connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, journal: journal.With("store", "sqlite")}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	s.journal.Debug("sql", "op", "select", "name", clean)

	var framed []byte
	err = s.db.QueryRowContext(ctx, `SELECT data FROM files WHERE name = ?`, clean).Scan(&framed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", name, err)
	}
	data, err := decode(framed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return data, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, data []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	s.journal.Debug("sql", "op", "upsert", "name", clean, "size", len(data))

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO files (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		clean, encode(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, name string) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	s.journal.Debug("sql", "op", "delete", "name", clean)

	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE name = ?`, clean)
	if err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
