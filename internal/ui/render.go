package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-lightcurve/internal/lightcurve"
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EC4899"))
)

// fluxColorLow is the color at the bottom of a dip.
var fluxColorLow = [3]uint8{0x3b, 0x1b, 0x5b}

// fluxColorMid is the color halfway up.
var fluxColorMid = [3]uint8{0x8b, 0x5c, 0xf6}

// fluxColorHigh is the color of the unocculted level.
var fluxColorHigh = [3]uint8{0xf5, 0xe0, 0xff}

func lerp(a, b uint8, s float64) uint8 {
	return uint8(float64(a)*(1-s) + float64(b)*s)
}

// interpolateFluxColor returns the RGB color for a normalized level t in [0, 1].
func interpolateFluxColor(t float64) (uint8, uint8, uint8) {
	t = math.Max(0, math.Min(1, t))
	lo, hi, s := fluxColorLow, fluxColorMid, t*2
	if t >= 0.5 {
		lo, hi, s = fluxColorMid, fluxColorHigh, (t-0.5)*2
	}
	return lerp(lo[0], hi[0], s), lerp(lo[1], hi[1], s), lerp(lo[2], hi[2], s)
}

// renderFluxSparkline draws values as one row of colored blocks.
func renderFluxSparkline(values []float64, width int) string {
	samples := lightcurve.Resample(values, width)
	if len(samples) == 0 {
		return mutedStyle.Render("No samples")
	}
	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	var sb strings.Builder
	for _, v := range samples {
		idx := lightcurve.Level(v, lo, hi)
		t := float64(idx) / float64(len(lightcurve.SparkBlocks)-1)
		r, g, b := interpolateFluxColor(t)
		color := fmt.Sprintf("#%02x%02x%02x", r, g, b)
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(lightcurve.SparkBlocks[idx])))
	}
	return sb.String()
}

// renderChart draws values as a block chart rows high, brightest on top.
func renderChart(values []float64, width, rows int) []string {
	samples := lightcurve.Resample(values, width)
	if len(samples) == 0 || rows <= 0 {
		return nil
	}
	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	levels := rows * len(lightcurve.SparkBlocks)
	out := make([]string, rows)
	for row := range out {
		var sb strings.Builder
		base := (rows - 1 - row) * len(lightcurve.SparkBlocks)
		for _, v := range samples {
			h := levels
			if hi > lo {
				h = int(math.Round((v - lo) / (hi - lo) * float64(levels-1)))
				h++
			}
			fill := h - base
			switch {
			case fill <= 0:
				sb.WriteRune(' ')
			case fill >= len(lightcurve.SparkBlocks):
				sb.WriteRune('█')
			default:
				sb.WriteRune(lightcurve.SparkBlocks[fill-1])
			}
		}
		r, g, b := interpolateFluxColor(float64(rows-row) / float64(rows))
		color := fmt.Sprintf("#%02x%02x%02x", r, g, b)
		out[row] = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(sb.String())
	}
	return out
}

// gradientColor returns a hex color across the title: blue, purple, pink.
func gradientColor(col, width int) string {
	x := float64(col) / float64(max(width, 1))
	var r, g, b float64
	if x < 0.5 {
		s := x / 0.5
		r, g, b = 59+s*(139-59), 130+s*(92-130), 246
	} else {
		s := (x - 0.5) / 0.5
		r, g, b = 139+s*(236-139), 92+s*(72-92), 246+s*(153-246)
	}
	clamp := func(v float64) int { return max(0, min(255, int(v))) }
	return fmt.Sprintf("#%02X%02X%02X", clamp(r), clamp(g), clamp(b))
}

// shimmer renders text with a highlight sweeping across it.
func shimmer(text string, tick int) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	pos := tick % (len(runes) + 8)
	var sb strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}
		c := "#504678"
		switch {
		case dist <= 1:
			c = "#B4A0DC"
		case dist <= 3:
			c = "#8C78B4"
		case dist <= 5:
			c = "#6E5A96"
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(string(r)))
	}
	return sb.String()
}
