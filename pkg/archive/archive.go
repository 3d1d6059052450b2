// Package archive keeps a history of finished growth runs.
//
// Every successful run can be recorded with its options, summary counters and
// the serialised tree (see package graph), so that it can be listed, fetched
// and re-rendered later without simulating again.
//
// Two [Store] implementations are provided:
//
//   - [SQLiteStore]: a single local database file, used by the CLI
//   - [MongoStore]: a shared collection, used by the HTTP server
package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned by Store.Get for unknown run ids.
var ErrNotFound = errors.New("run not found")

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 20

// Record is one archived run.
type Record struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Source      string    `json:"source"`
	Seed        uint64    `json:"seed"`
	Nodes       int       `json:"nodes"`
	Ticks       int       `json:"ticks"`
	Reason      string    `json:"reason"`
	OptionsHash string    `json:"options_hash"`
	Options     []byte    `json:"options,omitempty"` // JSON of the run options
	Tree        []byte    `json:"tree,omitempty"`    // graph.Tree JSON
}

// Store persists run records.
type Store interface {
	Save(ctx context.Context, r Record) error
	// Get returns the full record, including options and tree.
	Get(ctx context.Context, id string) (Record, error)
	// List returns the most recent records first, without Options and Tree.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// DefaultPath returns the CLI history database location:
// $XDG_DATA_HOME/spacecol/history.db, falling back to ~/.local/share.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "spacecol", "history.db"), nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
