// Package state provides thread-safe state management for the application.
package state

import (
	"slices"
	"sync"
	"time"

	"github.com/litescript/ls-lightcurve/internal/lightcurve"
	"github.com/litescript/ls-lightcurve/internal/orbit"
)

// EventType represents a contact in a computed curve.
type EventType string

const (
	EventIngress EventType = "INGRESS"
	EventEgress  EventType = "EGRESS"
)

// Event marks the first sample inside or after an occultation.
type Event struct {
	Type      EventType   `json:"type"`
	Kind      orbit.Event `json:"-"`
	Time      float64     `json:"time"`
	Flux      float64     `json:"flux"`
	Timestamp time.Time   `json:"timestamp"`
}

// Params are the interactive knobs of a scenario.
type Params struct {
	Radius float64
	Impact float64
	LD     []float64
}

// Run records one completed computation.
type Run struct {
	Timestamp time.Time
	Duration  time.Duration
	Params    Params
	Stats     lightcurve.Stats
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current         *lightcurve.Curve
	params          Params
	lastCompute     time.Time
	lastError       error
	computeDuration time.Duration
	generation      int

	// Recent runs, oldest first
	history       []Run
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	recomputeDelay time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen  int
	MaxEvents      int
	RecomputeDelay time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:  60,
		MaxEvents:      50,
		RecomputeDelay: 150 * time.Millisecond,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		maxHistoryLen:  cfg.MaxHistoryLen,
		maxEvents:      maxEvents,
		events:         make([]Event, 0, maxEvents),
		recomputeDelay: cfg.RecomputeDelay,
	}
}

// Update atomically replaces the current curve. A nil curve records only
// the error and timing, leaving the last good curve in place.
func (m *Manager) Update(curve *lightcurve.Curve, p Params, d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCompute = time.Now()
	m.lastError = err
	m.computeDuration = d

	if curve == nil {
		return
	}

	m.current = curve
	m.params = Params{Radius: p.Radius, Impact: p.Impact, LD: slices.Clone(p.LD)}
	m.generation++

	m.history = append(m.history, Run{
		Timestamp: m.lastCompute,
		Duration:  d,
		Params:    m.params,
		Stats:     curve.Stats(),
	})
	if m.maxHistoryLen > 0 && len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}

	m.detectEvents(curve)
}

// detectEvents logs each change of occultation state along the curve.
func (m *Manager) detectEvents(c *lightcurve.Curve) {
	now := time.Now()
	for i := 1; i < len(c.Events) && i < len(c.Time); i++ {
		prev, cur := c.Events[i-1], c.Events[i]
		if prev == cur {
			continue
		}
		if prev != orbit.NoEvent {
			m.addEvent(Event{Type: EventEgress, Kind: prev, Time: c.Time[i], Flux: c.Flux[i], Timestamp: now})
		}
		if cur != orbit.NoEvent {
			m.addEvent(Event{Type: EventIngress, Kind: cur, Time: c.Time[i], Flux: c.Flux[i], Timestamp: now})
		}
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Curve           *lightcurve.Curve
	Params          Params
	Generation      int
	LastCompute     time.Time
	LastError       error
	ComputeDuration time.Duration
	History         []Run
	Events          []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Curve:           m.current,
		Params:          Params{Radius: m.params.Radius, Impact: m.params.Impact, LD: slices.Clone(m.params.LD)},
		Generation:      m.generation,
		LastCompute:     m.lastCompute,
		LastError:       m.lastError,
		ComputeDuration: m.computeDuration,
		History:         slices.Clone(m.history),
		Events:          m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}
	if len(m.events) < m.maxEvents {
		return slices.Clone(m.events)
	}
	result := make([]Event, m.maxEvents)
	for i := range result {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// DepthHistory returns the transit depth of each recorded run, oldest first.
func (m *Manager) DepthHistory() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]float64, len(m.history))
	for i, r := range m.history {
		out[i] = r.Stats.Depth
	}
	return out
}

// RecomputeDelay returns how long to wait after a change before recomputing.
func (m *Manager) RecomputeDelay() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recomputeDelay
}

// SetRecomputeDelay updates the recompute delay.
func (m *Manager) SetRecomputeDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeDelay = d
}

// HasData returns true once a curve has been computed.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
