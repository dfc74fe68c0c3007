package lightcurve

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-lightcurve/internal/errs"
	"github.com/litescript/ls-lightcurve/internal/ops"
	"github.com/litescript/ls-lightcurve/internal/orbit"
)

func transitModel(t *testing.T) *Model {
	t.Helper()
	o, err := ops.New(0, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	return &Model{
		Mode:   Transit,
		Ops:    o,
		Map:    [][]float64{{1}},
		U:      []float64{0.4, 0.26},
		Orbit:  orbit.Orbit{Period: 3, A: 10, Inc: 90},
		Radius: 0.1,
	}
}

func TestSimpsonWeights(t *testing.T) {
	off, w := simpson(0.2, 5)
	var sum float64
	for _, v := range w {
		sum += v
	}
	if math.Abs(sum-1) > 1e-15 {
		t.Errorf("weights sum to %v, want 1", sum)
	}
	if math.Abs(off[0]+0.1) > 1e-15 || math.Abs(off[4]-0.1) > 1e-15 {
		t.Errorf("offsets = %v, want span [-0.1, 0.1]", off)
	}
	// Simpson is exact for cubics.
	var got float64
	for i, x := range off {
		got += w[i] * (x*x*x + 3*x*x)
	}
	want := 3 * 0.01 / 3
	if math.Abs(got-want) > 1e-15 {
		t.Errorf("mean of cubic = %v, want %v", got, want)
	}

	off, w = simpson(0, 0)
	if len(off) != 1 || w[0] != 1 {
		t.Errorf("zero exposure gives %v %v", off, w)
	}
}

func TestTransitCurve(t *testing.T) {
	m := transitModel(t)
	times := Times(-0.1, 0.1, 41)
	c, err := m.Compute(times)
	if err != nil {
		t.Fatal(err)
	}
	st := c.Stats()
	if math.Abs(st.MinTime) > 1e-12 {
		t.Errorf("minimum at t = %v, want 0", st.MinTime)
	}
	if math.Abs(c.Flux[0]-1) > 1e-13 || math.Abs(c.Flux[40]-1) > 1e-13 {
		t.Errorf("out of transit flux = %v, %v, want 1", c.Flux[0], c.Flux[40])
	}
	if c.Events[20] != orbit.Transit || c.Events[0] != orbit.NoEvent {
		t.Errorf("events = %v at center, %v at edge", c.Events[20], c.Events[0])
	}
	// Dip at center is roughly (r²) times the central limb darkening boost.
	want := 0.01 / (1 - 0.4/3 - 0.26/6)
	if math.Abs(st.Depth-want) > 2e-4 {
		t.Errorf("depth = %v, want about %v", st.Depth, want)
	}

	// Half an orbit later the companion is behind the star.
	behind, err := m.Compute([]float64{1.5})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(behind.Flux[0]-1) > 1e-13 || behind.Events[0] != orbit.Eclipse {
		t.Errorf("eclipse flux = %v, event %v", behind.Flux[0], behind.Events[0])
	}
}

func TestExposureSmoothsIngress(t *testing.T) {
	m := transitModel(t)
	ingress := m.Orbit.Duration(m.Radius) / 2
	times := []float64{-ingress + 0.001}

	sharp, err := m.Compute(times)
	if err != nil {
		t.Fatal(err)
	}
	m.Exposure = 0.01
	m.Oversample = 9
	smooth, err := m.Compute(times)
	if err != nil {
		t.Fatal(err)
	}
	if smooth.Flux[0] == sharp.Flux[0] {
		t.Error("exposure integration did not change the ingress flux")
	}
	if smooth.Flux[0] > 1 || smooth.Flux[0] < sharp.Flux[0]-0.01 {
		t.Errorf("smoothed flux %v outside expected range near %v", smooth.Flux[0], sharp.Flux[0])
	}
}

func TestPhaseCurve(t *testing.T) {
	o, err := ops.New(0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	m := &Model{
		Mode:   Phase,
		Ops:    o,
		Map:    [][]float64{{1}},
		Orbit:  orbit.Orbit{Period: 4, A: 8, Inc: 90},
		Radius: 0.1,
	}
	c, err := m.Compute([]float64{0, 1, 1.8})
	if err != nil {
		t.Fatal(err)
	}
	// New phase, quadrature, then near full phase before eclipse.
	if math.Abs(c.Flux[0]) > 1e-12 {
		t.Errorf("new phase flux = %v, want 0", c.Flux[0])
	}
	if math.Abs(c.Flux[1]-2/(3*math.Pi)) > 1e-9 {
		t.Errorf("quadrature flux = %v, want %v", c.Flux[1], 2/(3*math.Pi))
	}
	if !(c.Flux[2] > c.Flux[1]) {
		t.Errorf("flux should grow toward full phase: %v", c.Flux)
	}

	full, err := m.Compute([]float64{2})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(full.Flux[0]) > 1e-12 {
		t.Errorf("flux at mid-eclipse = %v, want 0", full.Flux[0])
	}
}

func TestModelValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(m *Model)
	}{
		{"radius", func(m *Model) { m.Radius = 0 }},
		{"orbit", func(m *Model) { m.Orbit.Period = -1 }},
		{"exposure", func(m *Model) { m.Exposure = -1 }},
		{"oversample", func(m *Model) { m.Exposure = 0.1; m.Oversample = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := transitModel(t)
			tt.edit(m)
			if _, err := m.Compute([]float64{0}); !errors.Is(err, errs.ErrValue) {
				t.Errorf("error = %v, want value error", err)
			}
		})
	}
	if _, err := transitModel(t).Compute(nil); !errors.Is(err, errs.ErrShape) {
		t.Errorf("empty times error = %v, want shape error", err)
	}
}

func sampleCurve() *Curve {
	return &Curve{
		Name:   "test",
		Mode:   Transit,
		Time:   []float64{0, 1, 2},
		Flux:   []float64{1, 0.99, 1},
		Events: []orbit.Event{orbit.NoEvent, orbit.Transit, orbit.NoEvent},
	}
}

func TestCurveExportJSON(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	if err := sampleCurve().Export(at).WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var got CurveExport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Mode != "transit" || len(got.Points) != 3 {
		t.Errorf("export = %+v", got)
	}
	if got.Points[1].Event != "transit" || got.Points[0].Event != "" {
		t.Errorf("events = %q, %q", got.Points[1].Event, got.Points[0].Event)
	}
	if math.Abs(got.Stats.Depth-0.01) > 1e-12 || got.Stats.InEvent != 1 {
		t.Errorf("stats = %+v", got.Stats)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleCurve().WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 4 || recs[0][0] != "time" || recs[2][1] != "0.99" || recs[2][2] != "transit" {
		t.Errorf("records = %v", recs)
	}
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	WriteSummaryTable(&buf, sampleCurve(), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 10)
	out := buf.String()
	for _, want := range []string{"test (transit)", "Samples      3", "10000.0 ppm", "█▁█"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	WriteSummaryTable(&buf, &Curve{}, time.Now(), 10)
	if !strings.Contains(buf.String(), "No samples") {
		t.Errorf("empty summary = %q", buf.String())
	}
}

func TestSparklineAndResample(t *testing.T) {
	if got := Sparkline([]float64{0, 0.5, 1}); got != "▁▄█" {
		t.Errorf("Sparkline = %q", got)
	}
	if got := Sparkline([]float64{2, 2}); got != "██" {
		t.Errorf("flat Sparkline = %q", got)
	}
	got := Resample([]float64{1, 3, 5, 7}, 2)
	if len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Errorf("Resample = %v, want [2 6]", got)
	}
	if got := Resample([]float64{1, 2}, 5); len(got) != 2 {
		t.Errorf("short Resample = %v", got)
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"", "transit", "phase"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q) = %v", s, err)
		}
	}
	if _, err := ParseMode("eclipse"); !errors.Is(err, errs.ErrValue) {
		t.Errorf("ParseMode(eclipse) error = %v", err)
	}
}
