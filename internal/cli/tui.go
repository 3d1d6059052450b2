package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/spacecol/pkg/colonize"
)

// =============================================================================
// Growth Progress View
// =============================================================================

const (
	defaultBarWidth = 40
	maxBarWidth     = 60
)

var (
	styleBarFull  = lipgloss.NewStyle().Foreground(colorMoss)
	styleBarEmpty = lipgloss.NewStyle().Foreground(colorShade)
	styleFooter   = lipgloss.NewStyle().Foreground(colorShade).MarginTop(1)
)

// eventMsg carries one simulation event into the model.
type eventMsg colonize.Event

// eventsClosedMsg signals that the event stream ended.
type eventsClosedMsg struct{}

// waitForEvent reads the next event from ch.
func waitForEvent(ch <-chan colonize.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// growModel follows a running growth job.
type growModel struct {
	events <-chan colonize.Event
	cancel context.CancelFunc
	source string
	start  time.Time

	progress  float64
	status    string
	tick      int
	segments  int
	result    *colonize.Result
	err       error
	cancelled bool
	width     int
}

func newGrowModel(events <-chan colonize.Event, cancel context.CancelFunc, source string) growModel {
	return growModel{
		events: events,
		cancel: cancel,
		source: source,
		start:  time.Now(),
	}
}

func (m growModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m growModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case eventMsg:
		switch msg.Kind {
		case colonize.EventStatus:
			m.status = msg.Status
		case colonize.EventProgress:
			m.progress = msg.Progress
		case colonize.EventSnapshot:
			m.tick = msg.Tick
			m.segments = len(msg.Segments)
		case colonize.EventComplete:
			m.progress = 1
			m.tick = msg.Tick
			m.result = msg.Result
			return m, tea.Quit
		case colonize.EventFailed:
			m.err = msg.Err
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m growModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Growing " + m.source))
	b.WriteString("\n\n")
	b.WriteString(renderBar(m.barWidth(), m.progress))
	b.WriteString(" " + StyleNumber.Render(fmt.Sprintf("%3.0f%%", m.progress*100)))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styleFail.Render(markFail) + " " + m.err.Error())
	case m.result != nil:
		b.WriteString(styleOK.Render(markOK) + " " + fmt.Sprintf("%d nodes in %d ticks (%s)",
			m.result.Stats.Nodes, m.result.Ticks, m.result.Reason))
	case m.cancelled:
		b.WriteString(styleMiss.Render("cancelled"))
	default:
		b.WriteString(StyleDim.Render(m.status))
		if m.tick > 0 {
			b.WriteString("\n" + StyleDim.Render(fmt.Sprintf("tick %d · %d segments", m.tick, m.segments)))
		}
	}

	elapsed := time.Since(m.start).Round(100 * time.Millisecond)
	b.WriteString(styleFooter.Render(fmt.Sprintf("%s · q to cancel", elapsed)))
	b.WriteString("\n")
	return b.String()
}

func (m growModel) barWidth() int {
	if m.width <= 0 {
		return defaultBarWidth
	}
	return max(10, min(maxBarWidth, m.width-8))
}

// renderBar draws a horizontal progress bar of the given width.
func renderBar(width int, fraction float64) string {
	fraction = max(0, min(1, fraction))
	full := int(fraction * float64(width))
	return styleBarFull.Render(strings.Repeat("█", full)) +
		styleBarEmpty.Render(strings.Repeat("░", width-full))
}
