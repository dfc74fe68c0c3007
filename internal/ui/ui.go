// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-lightcurve/internal/lightcurve"
	"github.com/litescript/ls-lightcurve/internal/state"
	"github.com/litescript/ls-lightcurve/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewCurve ViewMode = iota
	ViewEvents
)

// Computer evaluates a light curve for a set of interactive parameters.
type Computer interface {
	Compute(p state.Params) (*lightcurve.Curve, error)
}

// Knob steps.
const (
	radiusStep = 0.005
	impactStep = 0.05
	ldStep     = 0.02
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// DataUpdateMsg signals a new curve is available.
	DataUpdateMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a compute error.
	ErrorMsg struct {
		Error error
	}

	// recomputeMsg fires after the recompute delay for a given change.
	recomputeMsg struct {
		seq int
	}

	// computedMsg carries the result of a background recompute.
	computedMsg struct {
		seq int
		err error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state    *state.Manager
	computer Computer

	// UI state
	viewMode ViewMode
	width    int
	height   int
	ready    bool
	animTick int

	// Knob values and recompute bookkeeping. seq counts changes; done is
	// the latest change whose curve has landed.
	initial   state.Params
	params    state.Params
	seq       int
	done      int
	computing bool

	// Sub-models
	curveView  CurveViewModel
	eventsView EventsViewModel

	snapshot state.Snapshot
}

// New creates a new root UI model starting from params p.
func New(stateMgr *state.Manager, computer Computer, p state.Params) Model {
	p.LD = slices.Clone(p.LD)
	m := Model{
		state:      stateMgr,
		computer:   computer,
		viewMode:   ViewCurve,
		initial:    state.Params{Radius: p.Radius, Impact: p.Impact, LD: slices.Clone(p.LD)},
		params:     p,
		curveView:  NewCurveViewModel(),
		eventsView: NewEventsViewModel(),
	}
	m.curveView = m.curveView.SetParams(m.params, false)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
		func() tea.Msg { return recomputeMsg{seq: 0} },
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "1", "c":
			m.viewMode = ViewCurve
		case "2", "e":
			m.viewMode = ViewEvents
		case "tab":
			m.viewMode = (m.viewMode + 1) % 2
		default:
			if m.nudge(msg.String()) {
				cmds = append(cmds, m.scheduleRecompute())
			} else if m.viewMode == ViewEvents {
				var cmd tea.Cmd
				m.eventsView, cmd = m.eventsView.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		contentHeight := msg.Height - 7
		m.curveView = m.curveView.SetSize(msg.Width, contentHeight)
		m.eventsView = m.eventsView.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.setSnapshot(m.state.Snapshot())

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++
		m.curveView = m.curveView.SetAnimTick(m.animTick)

	case recomputeMsg:
		// Later changes supersede this one.
		if msg.seq == m.seq && !m.computing {
			m.computing = true
			cmds = append(cmds, m.computeCmd(msg.seq, m.params))
		}

	case computedMsg:
		m.computing = false
		m.done = msg.seq
		m.setSnapshot(m.state.Snapshot())
		if m.done != m.seq {
			cmds = append(cmds, m.scheduleRecompute())
		}

	case DataUpdateMsg:
		m.setSnapshot(msg.Snapshot)

	case ErrorMsg:
		m.snapshot.LastError = msg.Error
	}

	m.curveView = m.curveView.SetParams(m.params, m.seq != m.done || m.computing)
	return m, tea.Batch(cmds...)
}

func (m *Model) setSnapshot(s state.Snapshot) {
	m.snapshot = s
	m.curveView = m.curveView.UpdateData(s)
	m.eventsView = m.eventsView.UpdateData(s)
}

// nudge applies a knob key and reports whether the parameters changed.
func (m *Model) nudge(key string) bool {
	p := &m.params
	before := state.Params{Radius: p.Radius, Impact: p.Impact, LD: slices.Clone(p.LD)}
	ld := func(i int, d float64) {
		if i < len(p.LD) {
			p.LD[i] = math.Round(math.Max(-1, math.Min(2, p.LD[i]+d))*1e6) / 1e6
		}
	}
	switch key {
	case "r":
		p.Radius = math.Max(radiusStep, p.Radius-radiusStep)
	case "R":
		p.Radius = math.Min(1, p.Radius+radiusStep)
	case "b":
		p.Impact = math.Max(0, p.Impact-impactStep)
	case "B":
		p.Impact = math.Min(1+p.Radius, p.Impact+impactStep)
	case "u":
		ld(0, -ldStep)
	case "U":
		ld(0, ldStep)
	case "v":
		ld(1, -ldStep)
	case "V":
		ld(1, ldStep)
	case "0":
		p.Radius, p.Impact = m.initial.Radius, m.initial.Impact
		p.LD = slices.Clone(m.initial.LD)
	default:
		return false
	}
	p.Radius = math.Round(p.Radius*1e6) / 1e6
	p.Impact = math.Round(p.Impact*1e6) / 1e6
	changed := p.Radius != before.Radius || p.Impact != before.Impact || !slices.Equal(p.LD, before.LD)
	if changed {
		m.seq++
	}
	return changed
}

// scheduleRecompute waits out the recompute delay for the latest change.
func (m Model) scheduleRecompute() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.state.RecomputeDelay(), func(time.Time) tea.Msg {
		return recomputeMsg{seq: seq}
	})
}

// computeCmd evaluates the curve off the UI goroutine and stores it.
func (m Model) computeCmd(seq int, p state.Params) tea.Cmd {
	p.LD = slices.Clone(p.LD)
	mgr, comp := m.state, m.computer
	return func() tea.Msg {
		start := time.Now()
		curve, err := comp.Compute(p)
		mgr.Update(curve, p, time.Since(start), err)
		return computedMsg{seq: seq, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var content string
	switch m.viewMode {
	case ViewCurve:
		content = m.curveView.View()
	case ViewEvents:
		content = m.eventsView.View()
	}
	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString("\n  ")
	title := []rune("LS-LIGHTCURVE")
	for i, r := range title {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(i, len(title)))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  v%s · occultation light curves", version.Version)))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Curve", "[2] Events"}
	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, headerStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case !m.snapshot.LastCompute.IsZero():
		status = dimStyle.Render(fmt.Sprintf("computed in %s", m.snapshot.ComputeDuration.Round(time.Microsecond)))
	default:
		status = shimmer("Waiting for first curve...", m.animTick)
	}

	var help string
	switch m.viewMode {
	case ViewEvents:
		help = dimStyle.Render("↑↓: scroll | tab: switch view | q: quit")
	default:
		help = dimStyle.Render("r/R radius | b/B impact | u/U v/V limb darkening | 0 reset | q quit")
	}
	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendDataUpdate creates a command that sends a data update message.
func SendDataUpdate(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return DataUpdateMsg{Snapshot: snapshot}
	}
}

// SendError creates a command that sends an error message.
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Error: err}
	}
}
