package colonize

import (
	"context"
	"sync"

	"github.com/matzehuels/spacecol/pkg/tree"
)

// EventKind tags an Event.
type EventKind int

const (
	EventStatus EventKind = iota
	EventProgress
	EventSnapshot
	EventComplete
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStatus:
		return "status"
	case EventProgress:
		return "progress"
	case EventSnapshot:
		return "snapshot"
	case EventComplete:
		return "complete"
	case EventFailed:
		return "failed"
	}
	return "unknown"
}

// Event is one message of a Stream. Only the fields matching Kind are set.
type Event struct {
	Kind     EventKind
	Status   string
	Progress float64
	Tick     int
	Segments []tree.Segment
	Result   *Result
	Err      error
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool { return e.Kind == EventComplete || e.Kind == EventFailed }

// Stream is an Observer that forwards events, in order, to a channel read by
// another goroutine. Publishing never blocks: events queue up in memory until
// the consumer takes them. The stream closes its channel after delivering a
// terminal event (OnComplete or Fail), or when its context is cancelled.
type Stream struct {
	mu     sync.Mutex
	queue  []Event
	closed bool

	notify chan struct{}
	out    chan Event
}

// NewStream starts the delivery goroutine. It exits when the stream is
// closed and drained, or when ctx is done.
func NewStream(ctx context.Context) *Stream {
	s := &Stream{
		notify: make(chan struct{}, 1),
		out:    make(chan Event),
	}
	go s.pump(ctx)
	return s
}

// Events returns the ordered event channel.
func (s *Stream) Events() <-chan Event { return s.out }

func (s *Stream) OnStatus(msg string) { s.publish(Event{Kind: EventStatus, Status: msg}, false) }

func (s *Stream) OnProgress(f float64) { s.publish(Event{Kind: EventProgress, Progress: f}, false) }

func (s *Stream) OnSnapshot(tick int, segs []tree.Segment) {
	s.publish(Event{Kind: EventSnapshot, Tick: tick, Segments: segs}, false)
}

func (s *Stream) OnComplete(res Result) {
	s.publish(Event{Kind: EventComplete, Tick: res.Ticks, Result: &res}, true)
}

// Fail publishes a terminal failure event.
func (s *Stream) Fail(err error) { s.publish(Event{Kind: EventFailed, Err: err}, true) }

// Close ends the stream without a terminal event.
func (s *Stream) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signal()
}

func (s *Stream) publish(ev Event, last bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.closed = last
	s.mu.Unlock()
	s.signal()
}

func (s *Stream) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Stream) pump(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		close(s.out)
	}()
	for {
		s.mu.Lock()
		batch, closed := s.queue, s.closed
		s.queue = nil
		s.mu.Unlock()

		for _, ev := range batch {
			select {
			case s.out <- ev:
			case <-ctx.Done():
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		select {
		case <-s.notify:
		case <-ctx.Done():
			return
		}
	}
}
