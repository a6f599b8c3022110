package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Ember palette, shared with the cli package
var (
	emberYellow  = lipgloss.Color("#FFD700")
	emberOrange  = lipgloss.Color("#FF8C00")
	emberCrimson = lipgloss.Color("#DC143C")
	emberDark    = lipgloss.Color("#8B0000")
	emptyGray    = lipgloss.Color("#2A2A2A")
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// heatColors runs from quiet to loud
var heatColors = []lipgloss.Color{
	lipgloss.Color("#8B0000"), // Dark red (ember)
	lipgloss.Color("#B22222"), // Firebrick
	lipgloss.Color("#DC143C"), // Crimson
	lipgloss.Color("#FF4500"), // Orange-red
	lipgloss.Color("#FF6347"), // Tomato
	lipgloss.Color("#FF8C00"), // Dark orange
	lipgloss.Color("#FFA500"), // Orange
	lipgloss.Color("#FFD700"), // Gold/Yellow
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// formatHz prints a frequency with a k suffix above 1 kHz
func formatHz(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.1fk", hz/1000)
	}
	return fmt.Sprintf("%.0f", hz)
}

// clamp01 bounds a ratio to [0, 1], mapping NaN to 0
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// blockFor picks the block glyph for a level in [0, 1]
func blockFor(level float64) rune {
	idx := int(clamp01(level) * float64(len(blocks)-1))
	return blocks[idx]
}

// heatFor picks the palette colour for a level in [0, 1]
func heatFor(level float64) lipgloss.Color {
	idx := int(clamp01(level) * float64(len(heatColors)-1))
	return heatColors[idx]
}

// peakMarker renders a single block sized to the peak level
func peakMarker(level float64, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render(string(blockFor(level)))
}

// makeGradientBar creates a small horizontal bar, used in the summary
func makeGradientBar(ratio float64, width int) string {
	filled := int(clamp01(ratio) * float64(width))

	var result strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			pos := float64(i) / float64(width)
			styledBlock := lipgloss.NewStyle().Foreground(heatFor(pos)).Render("█")
			result.WriteString(styledBlock)
		} else {
			styledBlock := lipgloss.NewStyle().Foreground(emptyGray).Render("░")
			result.WriteString(styledBlock)
		}
	}
	return result.String()
}

// renderSpectrum draws one column per band, two rows tall
func renderSpectrum(levels []float64, width int) string {
	if len(levels) == 0 || width <= 0 {
		return ""
	}

	// Spread bands across the width
	cols := make([]float64, 0, width)
	for i := 0; i < width; i++ {
		cols = append(cols, clamp01(levels[i*len(levels)/width]))
	}

	var top, bottom strings.Builder
	for _, level := range cols {
		style := lipgloss.NewStyle().Foreground(heatFor(level))

		// Top row shows the portion above 0.5
		if level > 0.5 {
			top.WriteString(style.Render(string(blockFor((level - 0.5) * 2))))
		} else {
			top.WriteString(" ")
		}

		if level >= 0.5 {
			bottom.WriteString(style.Render(string(blocks[len(blocks)-1])))
		} else {
			bottom.WriteString(style.Render(string(blockFor(level * 2))))
		}
	}

	return top.String() + "\n" + bottom.String()
}

// renderScope draws a waveform in [-1, 1] as two rows around the centre line
func renderScope(points []float64) string {
	if len(points) == 0 {
		return ""
	}

	upper := lipgloss.NewStyle().Foreground(emberYellow)
	lower := lipgloss.NewStyle().Foreground(emberOrange)

	var top, bottom strings.Builder
	for _, p := range points {
		switch {
		case p > 0:
			top.WriteString(upper.Render(string(blockFor(p))))
			bottom.WriteString(" ")
		case p < 0:
			top.WriteString(" ")
			bottom.WriteString(lower.Render(string(blockFor(-p))))
		default:
			top.WriteString(" ")
			bottom.WriteString(lipgloss.NewStyle().Foreground(emptyGray).Render("─"))
		}
	}
	return top.String() + "\n" + bottom.String()
}
