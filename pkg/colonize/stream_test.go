package colonize

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/errors"
)

func TestStreamOrderedAndNonBlocking(t *testing.T) {
	s := NewStream(context.Background())

	// No consumer yet: publishing must not block.
	const n = 1000
	done := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			s.OnStatus(fmt.Sprint(i))
		}
		s.OnComplete(Result{Ticks: 42})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked without a consumer")
	}

	i := 0
	var last Event
	for ev := range s.Events() {
		if ev.Kind == EventStatus {
			if ev.Status != fmt.Sprint(i) {
				t.Fatalf("event %d out of order: %q", i, ev.Status)
			}
			i++
		}
		last = ev
	}
	if i != n {
		t.Fatalf("received %d status events, want %d", i, n)
	}
	if !last.Terminal() || last.Kind != EventComplete || last.Result.Ticks != 42 {
		t.Fatalf("last event = %+v, want terminal complete", last)
	}
}

func TestStreamDropsAfterTerminal(t *testing.T) {
	s := NewStream(context.Background())
	s.Fail(errors.New(errors.ErrCodeInternal, "boom"))
	s.OnStatus("late")

	var evs []Event
	for ev := range s.Events() {
		evs = append(evs, ev)
	}
	if len(evs) != 1 || evs[0].Kind != EventFailed || evs[0].Err == nil {
		t.Fatalf("events = %+v, want a single failure", evs)
	}
}

func TestStreamStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream(ctx)
	s.OnStatus("pending")
	cancel()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-s.Events():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("stream did not close after cancellation")
		}
	}
}

func TestStreamDropsPublishesAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream(ctx)
	cancel()
	for range s.Events() {
	}

	for i := 0; i < 100; i++ {
		s.OnProgress(float64(i) / 100)
	}
	s.mu.Lock()
	queued, closed := len(s.queue), s.closed
	s.mu.Unlock()
	if !closed || queued != 0 {
		t.Fatalf("closed=%v queued=%d, want a closed stream with nothing queued", closed, queued)
	}
}

func TestStreamDrivenBySimulation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameInterval = 5
	cfg.Seeds = roots(r3.Vec{})

	s := NewStream(context.Background())
	sim, err := New(cfg, &staticField{pts: []r3.Vec{{Y: 100}, {X: 60, Y: 60}}}, WithObserver(s))
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		if _, err := sim.Run(context.Background()); err != nil {
			s.Fail(err)
		}
	}()

	var snapshots, progress int
	var final *Result
	for ev := range s.Events() {
		switch ev.Kind {
		case EventSnapshot:
			snapshots++
		case EventProgress:
			progress++
		case EventComplete:
			final = ev.Result
		case EventFailed:
			t.Fatal(ev.Err)
		}
	}
	if final == nil {
		t.Fatal("no terminal result")
	}
	if snapshots == 0 || progress == 0 {
		t.Errorf("snapshots=%d progress=%d", snapshots, progress)
	}
	if final.Reason != ReasonExhausted || len(final.Edges) != final.Tree.Len()-1 {
		t.Errorf("final = reason %s, %d edges for %d nodes", final.Reason, len(final.Edges), final.Tree.Len())
	}
}
