package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func recordDoc(r Record) bson.D {
	d := bson.D{
		{Key: "_id", Value: r.ID},
		{Key: "created_at", Value: r.CreatedAt},
		{Key: "source", Value: r.Source},
		{Key: "seed", Value: int64(r.Seed)},
		{Key: "nodes", Value: r.Nodes},
		{Key: "ticks", Value: r.Ticks},
		{Key: "reason", Value: r.Reason},
		{Key: "options_hash", Value: r.OptionsHash},
	}
	if r.Options != nil {
		d = append(d, bson.E{Key: "options", Value: r.Options})
	}
	if r.Tree != nil {
		d = append(d, bson.E{Key: "tree", Value: r.Tree})
	}
	return d
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("Save", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, s.Save(ctx, sampleRecord("run-1", at)))

		ev := mt.GetStartedEvent()
		require.Equal(mt, "update", ev.CommandName)
	})

	mt.Run("Get", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		want := sampleRecord("run-1", at)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, recordDoc(want)))

		got, err := s.Get(ctx, "run-1")
		require.NoError(mt, err)
		require.Equal(mt, want, got)
	})

	mt.Run("GetNotFound", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.Get(ctx, "missing")
		require.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("List", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		a, b := sampleRecord("b", at.Add(time.Minute)), sampleRecord("a", at)
		a.Options, a.Tree, b.Options, b.Tree = nil, nil, nil, nil
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, recordDoc(a), recordDoc(b)))

		recs, err := s.List(ctx, 5)
		require.NoError(mt, err)
		require.Equal(mt, []Record{a, b}, recs)

		ev := mt.GetStartedEvent()
		require.Equal(mt, "find", ev.CommandName)
		limit, ok := ev.Command.Lookup("limit").AsInt64OK()
		require.True(mt, ok)
		require.Equal(mt, int64(5), limit)
	})

	mt.Run("Close", func(mt *mtest.T) {
		require.NoError(mt, NewMongoStore(mt.Coll).Close())
	})
}
