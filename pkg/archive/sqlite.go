package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs(
	id           TEXT PRIMARY KEY,
	created_at   INTEGER NOT NULL,
	source       TEXT NOT NULL,
	seed         TEXT NOT NULL,
	nodes        INTEGER NOT NULL,
	ticks        INTEGER NOT NULL,
	reason       TEXT NOT NULL,
	options_hash TEXT NOT NULL,
	options      BLOB,
	tree         BLOB
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at DESC);
`

// SQLiteStore is a Store in a local SQLite database (pure Go driver).
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts a record. Saving an existing id replaces it.
func (s *SQLiteStore) Save(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs(id, created_at, source, seed, nodes, ticks, reason, options_hash, options, tree)
		VALUES(?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.CreatedAt.UnixNano(), r.Source, fmt.Sprint(r.Seed), r.Nodes, r.Ticks,
		r.Reason, r.OptionsHash, r.Options, r.Tree)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

// Get loads a full record.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, source, seed, nodes, ticks, reason, options_hash, options, tree
		FROM runs WHERE id = ?`, id)
	var (
		r    Record
		ts   int64
		seed string
	)
	err := row.Scan(&r.ID, &ts, &r.Source, &seed, &r.Nodes, &r.Ticks, &r.Reason, &r.OptionsHash, &r.Options, &r.Tree)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get run %s: %w", id, err)
	}
	r.CreatedAt = time.Unix(0, ts).UTC()
	if _, err := fmt.Sscan(seed, &r.Seed); err != nil {
		return Record{}, fmt.Errorf("get run %s: bad seed %q", id, seed)
	}
	return r, nil
}

// List returns record summaries, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source, seed, nodes, ticks, reason, options_hash
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r    Record
			ts   int64
			seed string
		)
		if err := rows.Scan(&r.ID, &ts, &r.Source, &seed, &r.Nodes, &r.Ticks, &r.Reason, &r.OptionsHash); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		r.CreatedAt = time.Unix(0, ts).UTC()
		fmt.Sscan(seed, &r.Seed)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)
