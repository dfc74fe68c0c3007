package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-lightcurve/internal/state"
)

// EventsViewModel lists contacts in the current curve and recent runs.
type EventsViewModel struct {
	width    int
	height   int
	snapshot state.Snapshot
	scrollY  int
}

// NewEventsViewModel creates an events view.
func NewEventsViewModel() EventsViewModel {
	return EventsViewModel{}
}

// SetSize updates the viewport size.
func (m EventsViewModel) SetSize(width, height int) EventsViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with a new snapshot.
func (m EventsViewModel) UpdateData(snapshot state.Snapshot) EventsViewModel {
	m.snapshot = snapshot
	return m
}

// Update handles scrolling.
func (m EventsViewModel) Update(msg tea.Msg) (EventsViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			m.scrollY = max(0, m.scrollY-1)
		case "down", "j":
			m.scrollY = min(m.scrollY+1, max(0, len(m.snapshot.Events)-1))
		}
	}
	return m, nil
}

// View renders the events view.
func (m EventsViewModel) View() string {
	var b strings.Builder
	b.WriteString("  " + headerStyle.Render("Contacts") + "\n")
	events := m.snapshot.Events
	if len(events) == 0 {
		b.WriteString("  " + mutedStyle.Render("No ingress or egress in the sampled window") + "\n")
	} else {
		b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-10s %-10s %12s %14s", "CONTACT", "KIND", "TIME", "FLUX")) + "\n")
		visible := len(events)
		if m.height > 0 {
			visible = max(1, m.height/2-2)
		}
		start := min(m.scrollY, len(events)-1)
		end := min(len(events), start+visible)
		for _, e := range events[start:end] {
			b.WriteString("  " + eventStyle.Render(fmt.Sprintf("%-10s", e.Type)) +
				valueStyle.Render(fmt.Sprintf(" %-10s %12.5f %14.8f", e.Kind, e.Time, e.Flux)) + "\n")
		}
		if end < len(events) {
			b.WriteString("  " + mutedStyle.Render(fmt.Sprintf("… %d more", len(events)-end)) + "\n")
		}
	}

	b.WriteString("\n  " + headerStyle.Render("Runs") + "\n")
	hist := m.snapshot.History
	if len(hist) == 0 {
		b.WriteString("  " + mutedStyle.Render("No runs yet") + "\n")
		return b.String()
	}
	b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-10s %8s %8s %12s %10s", "AT", "RADIUS", "IMPACT", "DEPTH ppm", "TOOK")) + "\n")
	// Newest first, at most eight rows.
	for i := len(hist) - 1; i >= 0 && i >= len(hist)-8; i-- {
		r := hist[i]
		b.WriteString("  " + valueStyle.Render(fmt.Sprintf("%-10s %8.4f %8.4f %12.1f %10s",
			r.Timestamp.Format("15:04:05"), r.Params.Radius, r.Params.Impact,
			r.Stats.Depth*1e6, r.Duration.Round(time.Microsecond))) + "\n")
	}
	return b.String()
}
