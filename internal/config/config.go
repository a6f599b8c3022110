package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Audio settings
const (
	SampleRate    = 44100
	SampleSize    = 1024
	MaxSampleSize = 4096 // upper bound for the analysis working buffers
)

// Band settings
const (
	BandSize        = 64 // standard number of bands
	BandSizePadding = 8  // extra ranges that can be monitored alongside the bands
	MinBandHz       = 20
	MaxBandHz       = 20000
	DefaultBands    = 16
)

// Tracker defaults
const (
	DefaultAutoFloor         = 100      // lowest ceiling a range may decay to
	DefaultMaxFalloffRate    = 0.000001 // exponential ceiling decay seed
	DefaultPeakFalloffRate   = 2        // exponential peak decay seed
	DefaultSampleFalloffRate = 0.00001  // exponential sample ceiling decay seed
	DefaultAutoMin           = 10       // auto-level floor applied to every ceiling
	DefaultAutoMax           = -1       // no clipping of normalised samples

	// SampleScale converts the auto-level floor into raw sample units
	SampleScale = 0xFFFF
)

// Meter appearance
const (
	MeterWidth = 40

	// Brand yellow #F8B31D for bars, ember red for peaks
	BarColorR  = 248
	BarColorG  = 179
	BarColorB  = 29
	PeakColorR = 164
	PeakColorG = 0
	PeakColorB = 0
)

// ParseHexColor parses "RRGGBB" or "#RRGGBB" into its components
func ParseHexColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: want 6 hex digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// FormatHexColor formats colour components as "#RRGGBB"
func FormatHexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}
