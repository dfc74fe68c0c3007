package ui

import (
	"fmt"
	"strings"

	"github.com/litescript/ls-lightcurve/internal/state"
)

// ChartWidth is the widest chart the curve view draws.
const ChartWidth = 72

// CurveViewModel shows the current light curve and the interactive knobs.
type CurveViewModel struct {
	width    int
	height   int
	snapshot state.Snapshot
	params   state.Params
	pending  bool
	animTick int
}

// NewCurveViewModel creates a curve view.
func NewCurveViewModel() CurveViewModel {
	return CurveViewModel{}
}

// SetSize updates the viewport size.
func (m CurveViewModel) SetSize(width, height int) CurveViewModel {
	m.width = width
	m.height = height
	return m
}

// SetAnimTick updates the animation tick for the recompute indicator.
func (m CurveViewModel) SetAnimTick(tick int) CurveViewModel {
	m.animTick = tick
	return m
}

// SetParams shows p as the knob values; pending marks a recompute in flight.
func (m CurveViewModel) SetParams(p state.Params, pending bool) CurveViewModel {
	m.params = p
	m.pending = pending
	return m
}

// UpdateData updates with a new snapshot.
func (m CurveViewModel) UpdateData(snapshot state.Snapshot) CurveViewModel {
	m.snapshot = snapshot
	return m
}

func (m CurveViewModel) chartSize() (width, rows int) {
	width = ChartWidth
	if m.width > 0 {
		width = max(16, min(ChartWidth, m.width-14))
	}
	rows = 6
	if m.height > 0 {
		rows = max(3, min(12, m.height-16))
	}
	return width, rows
}

// View renders the curve view.
func (m CurveViewModel) View() string {
	var b strings.Builder
	c := m.snapshot.Curve
	if c == nil {
		b.WriteString("  " + shimmer("Computing light curve...", m.animTick) + "\n")
		return b.String()
	}

	title := c.Name
	if title == "" {
		title = "Light curve"
	}
	b.WriteString("  " + headerStyle.Render(fmt.Sprintf("%s · %s", title, c.Mode)) + "\n\n")

	st := c.Stats()
	width, rows := m.chartSize()
	for i, line := range renderChart(c.Flux, width, rows) {
		axis := strings.Repeat(" ", 12)
		switch i {
		case 0:
			axis = fmt.Sprintf("%11.6f ", st.Max)
		case rows - 1:
			axis = fmt.Sprintf("%11.6f ", st.Min)
		}
		b.WriteString(labelStyle.Render(axis) + line + "\n")
	}
	if len(c.Time) > 0 {
		start := fmt.Sprintf("t=%.4f", c.Time[0])
		stop := fmt.Sprintf("t=%.4f", c.Time[len(c.Time)-1])
		gap := max(1, width-len(start)-len(stop))
		b.WriteString(strings.Repeat(" ", 12) + mutedStyle.Render(start+strings.Repeat(" ", gap)+stop) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderParams())
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	return b.String()
}

func (m CurveViewModel) renderParams() string {
	var b strings.Builder
	row := func(key, name, value string) {
		b.WriteString("  " + accentStyle.Render(fmt.Sprintf("%-4s", key)) + labelStyle.Render(fmt.Sprintf("%-16s", name)) + valueStyle.Render(value) + "\n")
	}
	b.WriteString("  " + headerStyle.Render("Parameters"))
	if m.pending {
		spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		b.WriteString("  " + accentStyle.Render(spinnerFrames[m.animTick%len(spinnerFrames)]) + mutedStyle.Render(" recomputing"))
	}
	b.WriteString("\n")
	row("r/R", "radius", fmt.Sprintf("%.4f", m.params.Radius))
	row("b/B", "impact", fmt.Sprintf("%.4f", m.params.Impact))
	for i, u := range m.params.LD {
		key := ""
		switch i {
		case 0:
			key = "u/U"
		case 1:
			key = "v/V"
		}
		row(key, fmt.Sprintf("u%d", i+1), fmt.Sprintf("%+.4f", u))
	}
	return b.String()
}

func (m CurveViewModel) renderStats() string {
	c := m.snapshot.Curve
	st := c.Stats()
	var b strings.Builder
	b.WriteString("  " + headerStyle.Render("Summary") + "\n")
	line := func(name, value string) {
		b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-20s", name)) + valueStyle.Render(value) + "\n")
	}
	line("Depth", fmt.Sprintf("%.1f ppm at t=%.4f", st.Depth*1e6, st.MinTime))
	line("Mean flux", fmt.Sprintf("%.8f", st.Mean))
	line("Samples in event", fmt.Sprintf("%d / %d", st.InEvent, len(c.Flux)))
	if hist := m.snapshot.History; len(hist) > 1 {
		depths := make([]float64, len(hist))
		for i, r := range hist {
			depths[i] = r.Stats.Depth
		}
		line("Depth history", "")
		b.WriteString("  " + renderFluxSparkline(depths, 40) + "\n")
	}
	return b.String()
}
