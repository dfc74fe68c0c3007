package lightcurve

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/ls-lightcurve/internal/orbit"
)

// Curve is a computed light curve.
type Curve struct {
	Name   string
	Mode   Mode
	Time   []float64
	Flux   []float64
	Events []orbit.Event
}

// Stats summarizes a curve.
type Stats struct {
	Min, Max, Mean float64
	MinTime        float64
	// Depth is 1 - Min/Max, the fractional dip below the brightest sample.
	Depth float64
	// InEvent counts samples during a transit or eclipse.
	InEvent int
}

// Stats computes summary statistics.
func (c *Curve) Stats() Stats {
	if len(c.Flux) == 0 {
		return Stats{}
	}
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	for i, f := range c.Flux {
		if f < s.Min {
			s.Min, s.MinTime = f, c.Time[i]
		}
		s.Max = math.Max(s.Max, f)
		s.Mean += f
		if i < len(c.Events) && c.Events[i] != orbit.NoEvent {
			s.InEvent++
		}
	}
	s.Mean /= float64(len(c.Flux))
	if s.Max != 0 {
		s.Depth = 1 - s.Min/s.Max
	}
	return s
}

// CurveExport is the JSON-serializable representation of a curve.
type CurveExport struct {
	Name        string        `json:"name,omitempty"`
	Mode        string        `json:"mode"`
	GeneratedAt time.Time     `json:"generated_at"`
	Points      []PointExport `json:"points"`
	Stats       StatsExport   `json:"stats"`
}

// PointExport is one sample.
type PointExport struct {
	Time  float64 `json:"time"`
	Flux  float64 `json:"flux"`
	Event string  `json:"event,omitempty"`
}

// StatsExport is a JSON-friendly Stats.
type StatsExport struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	MinTime float64 `json:"min_time"`
	Depth   float64 `json:"depth"`
	InEvent int     `json:"in_event"`
}

// Export converts a curve to its exportable form.
func (c *Curve) Export(generatedAt time.Time) *CurveExport {
	st := c.Stats()
	out := &CurveExport{
		Name:        c.Name,
		Mode:        c.Mode.String(),
		GeneratedAt: generatedAt,
		Points:      make([]PointExport, len(c.Time)),
		Stats: StatsExport{
			Min: st.Min, Max: st.Max, Mean: st.Mean,
			MinTime: st.MinTime, Depth: st.Depth, InEvent: st.InEvent,
		},
	}
	for i := range c.Time {
		p := PointExport{Time: c.Time[i], Flux: c.Flux[i]}
		if i < len(c.Events) && c.Events[i] != orbit.NoEvent {
			p.Event = c.Events[i].String()
		}
		out.Points[i] = p
	}
	return out
}

// WriteJSON writes the export as indented JSON.
func (e *CurveExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteCSV writes time, flux and event columns with a header row.
func (c *Curve) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "flux", "event"}); err != nil {
		return err
	}
	for i := range c.Time {
		ev := orbit.NoEvent
		if i < len(c.Events) {
			ev = c.Events[i]
		}
		rec := []string{
			strconv.FormatFloat(c.Time[i], 'g', -1, 64),
			strconv.FormatFloat(c.Flux[i], 'g', -1, 64),
			ev.String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryTable writes a short text report with a sparkline.
func WriteSummaryTable(w io.Writer, c *Curve, timestamp time.Time, width int) {
	st := c.Stats()
	title := c.Name
	if title == "" {
		title = "Light curve"
	}
	fmt.Fprintf(w, "%s (%s) @ %s\n", title, c.Mode, timestamp.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	if len(c.Flux) == 0 {
		fmt.Fprintln(w, "No samples")
		return
	}
	fmt.Fprintf(w, "%-12s %d\n", "Samples", len(c.Flux))
	fmt.Fprintf(w, "%-12s %.4f .. %.4f\n", "Time", c.Time[0], c.Time[len(c.Time)-1])
	fmt.Fprintf(w, "%-12s %.8f\n", "Min flux", st.Min)
	fmt.Fprintf(w, "%-12s %.8f\n", "Max flux", st.Max)
	fmt.Fprintf(w, "%-12s %.8f\n", "Mean flux", st.Mean)
	fmt.Fprintf(w, "%-12s %.1f ppm at t=%.4f\n", "Depth", st.Depth*1e6, st.MinTime)
	fmt.Fprintf(w, "%-12s %d\n", "In event", st.InEvent)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintln(w, Sparkline(Resample(c.Flux, width)))
}

// SparkBlocks are the block characters for sparklines, lowest first.
var SparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Level maps v in [lo, hi] to a sparkline block index.
func Level(v, lo, hi float64) int {
	if hi <= lo {
		return len(SparkBlocks) - 1
	}
	t := (v - lo) / (hi - lo)
	idx := int(t * float64(len(SparkBlocks)-1))
	return max(0, min(len(SparkBlocks)-1, idx))
}

// Sparkline renders values scaled between their own minimum and maximum.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	var sb strings.Builder
	for _, v := range values {
		sb.WriteRune(SparkBlocks[Level(v, lo, hi)])
	}
	return sb.String()
}

// Resample averages values into width buckets. Shorter inputs are
// returned unchanged.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return append([]float64(nil), values...)
	}
	out := make([]float64, width)
	per := float64(len(values)) / float64(width)
	for i := range out {
		lo := int(float64(i) * per)
		hi := int(float64(i+1) * per)
		hi = max(hi, lo+1)
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
