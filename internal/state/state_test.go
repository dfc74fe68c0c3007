package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-lightcurve/internal/lightcurve"
	"github.com/litescript/ls-lightcurve/internal/orbit"
)

func testCurve(depth float64) *lightcurve.Curve {
	return &lightcurve.Curve{
		Name:   "test",
		Time:   []float64{-2, -1, 0, 1, 2},
		Flux:   []float64{1, 1, 1 - depth, 1, 1},
		Events: []orbit.Event{orbit.NoEvent, orbit.NoEvent, orbit.Transit, orbit.NoEvent, orbit.NoEvent},
	}
}

func TestNewManager(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)

	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if m.RecomputeDelay() != cfg.RecomputeDelay {
		t.Errorf("RecomputeDelay = %v, want %v", m.RecomputeDelay(), cfg.RecomputeDelay)
	}
	if m.HasData() {
		t.Error("HasData should be false initially")
	}
}

func TestManager_Update(t *testing.T) {
	m := NewManager(DefaultConfig())
	c := testCurve(0.01)
	p := Params{Radius: 0.1, Impact: 0.3, LD: []float64{0.4, 0.26}}

	m.Update(c, p, 100*time.Millisecond, nil)

	if !m.HasData() {
		t.Error("HasData should be true after Update")
	}
	snap := m.Snapshot()
	if snap.Curve != c {
		t.Error("Snapshot Curve doesn't match")
	}
	if snap.ComputeDuration != 100*time.Millisecond {
		t.Errorf("ComputeDuration = %v, want 100ms", snap.ComputeDuration)
	}
	if snap.LastError != nil {
		t.Errorf("LastError = %v, want nil", snap.LastError)
	}
	if snap.Generation != 1 || snap.Params.Impact != 0.3 {
		t.Errorf("snapshot = gen %d, params %+v", snap.Generation, snap.Params)
	}

	// The manager owns its copy of the limb darkening slice.
	p.LD[0] = 9
	if m.Snapshot().Params.LD[0] != 0.4 {
		t.Error("Params.LD aliases the caller's slice")
	}
}

func TestManager_UpdateWithError(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(testCurve(0.01), Params{Radius: 0.1}, 0, nil)

	testErr := errors.New("compute failed")
	m.Update(nil, Params{Radius: -1}, 50*time.Millisecond, testErr)

	snap := m.Snapshot()
	if snap.Curve == nil || snap.Params.Radius != 0.1 {
		t.Error("last good curve should survive a failed compute")
	}
	if snap.LastError != testErr {
		t.Errorf("LastError = %v, want %v", snap.LastError, testErr)
	}
	if snap.Generation != 1 {
		t.Errorf("Generation = %d, want 1", snap.Generation)
	}
}

func TestManager_HistoryBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHistoryLen = 3
	m := NewManager(cfg)

	for i := 1; i <= 5; i++ {
		m.Update(testCurve(float64(i)/100), Params{}, 0, nil)
	}

	depths := m.DepthHistory()
	if len(depths) != 3 {
		t.Fatalf("history length = %d, want 3", len(depths))
	}
	for i, want := range []float64{0.03, 0.04, 0.05} {
		if diff := depths[i] - want; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("depth[%d] = %v, want %v", i, depths[i], want)
		}
	}
}

func TestManager_EventDetection(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(testCurve(0.01), Params{}, 0, nil)

	events := m.RecentEvents(10)
	if len(events) != 2 {
		t.Fatalf("events = %+v, want ingress and egress", events)
	}
	if events[0].Type != EventIngress || events[0].Kind != orbit.Transit || events[0].Time != 0 {
		t.Errorf("ingress = %+v", events[0])
	}
	if events[1].Type != EventEgress || events[1].Time != 1 {
		t.Errorf("egress = %+v", events[1])
	}
}

func TestManager_EventDetection_Switch(t *testing.T) {
	m := NewManager(DefaultConfig())
	c := &lightcurve.Curve{
		Time:   []float64{0, 1},
		Flux:   []float64{0.99, 1},
		Events: []orbit.Event{orbit.Transit, orbit.Eclipse},
	}
	m.Update(c, Params{}, 0, nil)

	events := m.RecentEvents(10)
	if len(events) != 2 || events[0].Type != EventEgress || events[1].Kind != orbit.Eclipse {
		t.Errorf("events = %+v", events)
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 5
	m := NewManager(cfg)

	for i := 0; i < 10; i++ {
		m.Update(testCurve(0.01), Params{}, 0, nil)
	}

	events := m.RecentEvents(100)
	if len(events) != 5 {
		t.Errorf("events count = %d, want 5 (max)", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Errorf("events not in chronological order at index %d", i)
		}
	}
	// Twenty alternating events leave EGRESS, INGRESS, ... EGRESS.
	if events[0].Type != EventEgress {
		t.Errorf("oldest event = %s, want EGRESS", events[0].Type)
	}
}

func TestManager_Snapshot_IsCopy(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(testCurve(0.01), Params{}, 0, nil)

	snap := m.Snapshot()
	snap.History[0].Duration = time.Hour
	snap.Events[0].Time = 99

	again := m.Snapshot()
	if again.History[0].Duration == time.Hour || again.Events[0].Time == 99 {
		t.Error("snapshot slices alias manager state")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())

	var wg sync.WaitGroup
	iterations := 100

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			m.Update(testCurve(float64(i)/1000), Params{Radius: float64(i)}, time.Duration(i)*time.Millisecond, nil)
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = m.Snapshot()
				_ = m.HasData()
				_ = m.RecomputeDelay()
				_ = m.DepthHistory()
				_ = m.RecentEvents(5)
			}
		}()
	}

	wg.Wait()
}

func TestManager_SetRecomputeDelay(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.SetRecomputeDelay(time.Second)
	if m.RecomputeDelay() != time.Second {
		t.Errorf("RecomputeDelay = %v, want 1s", m.RecomputeDelay())
	}
}
