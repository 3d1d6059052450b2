package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleRecord(id string, at time.Time) Record {
	return Record{
		ID:          id,
		CreatedAt:   at,
		Source:      "radial",
		Seed:        1<<63 + 5,
		Nodes:       400,
		Ticks:       57,
		Reason:      "node_cap",
		OptionsHash: "abc",
		Options:     []byte(`{"source":"radial"}`),
		Tree:        []byte(`{"dims":2,"nodes":[]}`),
	}
}

func TestSQLiteStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	defer s.Close()

	want := sampleRecord("run-1", time.Date(2026, 3, 1, 12, 0, 0, 42, time.UTC))
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 30 {
		require.NoError(t, s.Save(ctx, sampleRecord(fmt.Sprintf("run-%02d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	recs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, DefaultListLimit)
	require.Equal(t, "run-29", recs[0].ID)
	require.Equal(t, "run-10", recs[len(recs)-1].ID)
	for _, r := range recs {
		require.Nil(t, r.Tree)
		require.Nil(t, r.Options)
		require.Equal(t, uint64(1<<63+5), r.Seed)
	}

	recs, err = s.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	r := sampleRecord("run", time.Now().UTC())
	require.NoError(t, s.Save(ctx, r))
	r.Nodes = 7
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, "run")
	require.NoError(t, err)
	require.Equal(t, 7, got.Nodes)

	all, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	p, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/data", "spacecol", "history.db"), p)
}
