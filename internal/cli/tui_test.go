package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/spacecol/pkg/colonize"
	"github.com/matzehuels/spacecol/pkg/tree"
)

func update(t *testing.T, m growModel, msg tea.Msg) (growModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	gm, ok := next.(growModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return gm, cmd
}

func TestGrowModelEvents(t *testing.T) {
	ch := make(chan colonize.Event)
	m := newGrowModel(ch, nil, "ellipse")

	m, cmd := update(t, m, eventMsg{Kind: colonize.EventStatus, Status: "tick 10: 40 nodes, 120 attractors"})
	if cmd == nil || m.status == "" {
		t.Fatal("status event should keep waiting for events")
	}
	m, _ = update(t, m, eventMsg{Kind: colonize.EventProgress, Progress: 0.5})
	m, _ = update(t, m, eventMsg{Kind: colonize.EventSnapshot, Tick: 10, Segments: make([]tree.Segment, 39)})
	if m.progress != 0.5 || m.tick != 10 || m.segments != 39 {
		t.Errorf("progress=%v tick=%d segments=%d", m.progress, m.tick, m.segments)
	}

	view := m.View()
	for _, want := range []string{"Growing ellipse", "50%", "tick 10", "39 segments"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	res := &colonize.Result{Ticks: 14, Reason: colonize.ReasonExhausted, Stats: colonize.Stats{Nodes: 55}}
	m, cmd = update(t, m, eventMsg{Kind: colonize.EventComplete, Tick: 14, Result: res})
	if cmd == nil || m.result != res || m.progress != 1 {
		t.Fatalf("complete event not applied: %+v", m)
	}
	if view := m.View(); !strings.Contains(view, "55 nodes in 14 ticks (exhausted)") {
		t.Errorf("final view:\n%s", view)
	}
}

func TestGrowModelFailure(t *testing.T) {
	m := newGrowModel(nil, nil, "mask")
	m, cmd := update(t, m, eventMsg{Kind: colonize.EventFailed, Err: errors.New("mask has no dark pixels")})
	if cmd == nil || m.err == nil {
		t.Fatal("failure should quit with the error")
	}
	if !strings.Contains(m.View(), "mask has no dark pixels") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestGrowModelCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := newGrowModel(nil, cancel, "radial")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !m.cancelled {
		t.Fatal("ctrl+c should cancel and quit")
	}
	if ctx.Err() == nil {
		t.Error("context not cancelled")
	}
	if !strings.Contains(m.View(), "cancelled") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan colonize.Event, 1)
	ch <- colonize.Event{Kind: colonize.EventProgress, Progress: 0.25}
	close(ch)

	cmd := waitForEvent(ch)
	if msg, ok := cmd().(eventMsg); !ok || msg.Progress != 0.25 {
		t.Fatalf("first message = %#v", msg)
	}
	if _, ok := cmd().(eventsClosedMsg); !ok {
		t.Fatal("closed channel should yield eventsClosedMsg")
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		fraction  float64
		full, all int
	}{
		{0, 0, 10},
		{0.5, 5, 10},
		{1, 10, 10},
		{1.7, 10, 10},
		{-1, 0, 10},
	}
	for _, tt := range tests {
		bar := renderBar(10, tt.fraction)
		full := strings.Count(bar, "█")
		all := full + strings.Count(bar, "░")
		if full != tt.full || all != tt.all {
			t.Errorf("renderBar(10, %v): %d full of %d", tt.fraction, full, all)
		}
	}
}

func TestBarWidth(t *testing.T) {
	m := growModel{}
	if m.barWidth() != defaultBarWidth {
		t.Errorf("default width = %d", m.barWidth())
	}
	m.width = 200
	if m.barWidth() != maxBarWidth {
		t.Errorf("wide terminal width = %d", m.barWidth())
	}
	m.width = 12
	if m.barWidth() != 10 {
		t.Errorf("narrow terminal width = %d", m.barWidth())
	}
}
