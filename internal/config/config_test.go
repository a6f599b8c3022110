package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestParseHexColor covers accepted and rejected colour strings. The
// rejected cases catch prefix handling, length and whitespace bugs.
func TestParseHexColor(t *testing.T) {
	testCases := []struct {
		name                string
		input               string
		wantR, wantG, wantB uint8
		wantErr             bool
	}{
		{name: "uppercase without hash", input: "FF0000", wantR: 255},
		{name: "lowercase with hash", input: "#00ff00", wantG: 255},
		{name: "mixed case", input: "Ff00fF", wantR: 255, wantB: 255},
		{name: "distinct bytes keep order", input: "#AABBCC", wantR: 0xAA, wantG: 0xBB, wantB: 0xCC},
		{name: "too short", input: "#FFF", wantErr: true},
		{name: "too long", input: "FFFFFFF", wantErr: true},
		{name: "invalid hex", input: "FF00GG", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "double hash", input: "##FF0000", wantErr: true},
		{name: "embedded space", input: "FF 000", wantErr: true},
		{name: "trailing newline", input: "FF0000\n", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b, err := ParseHexColor(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParseHexColor(%q) expected error, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHexColor(%q) returned error: %v", tc.input, err)
			}
			if r != tc.wantR || g != tc.wantG || b != tc.wantB {
				t.Errorf("ParseHexColor(%q) = (%d, %d, %d), want (%d, %d, %d)",
					tc.input, r, g, b, tc.wantR, tc.wantG, tc.wantB)
			}
		})
	}
}

// TestFormatHexColor_RoundTrip verifies formatted colours parse back to the
// same components.
func TestFormatHexColor_RoundTrip(t *testing.T) {
	s := FormatHexColor(1, 2, 3)
	if s != "#010203" {
		t.Errorf("FormatHexColor(1, 2, 3) = %q, want #010203", s)
	}
	r, g, b, err := ParseHexColor(s)
	if err != nil || r != 1 || g != 2 || b != 3 {
		t.Errorf("ParseHexColor(%q) = (%d, %d, %d, %v), want (1, 2, 3, nil)", s, r, g, b, err)
	}
}

// TestColorConfig_Defaults verifies nil overrides fall back to the brand
// colours and set overrides are parsed.
func TestColorConfig_Defaults(t *testing.T) {
	var c ColorConfig
	r, g, b, err := c.BarColor()
	if err != nil || r != BarColorR || g != BarColorG || b != BarColorB {
		t.Errorf("BarColor() = (%d, %d, %d, %v), want defaults", r, g, b, err)
	}
	r, g, b, err = c.PeakColor()
	if err != nil || r != PeakColorR || g != PeakColorG || b != PeakColorB {
		t.Errorf("PeakColor() = (%d, %d, %d, %v), want defaults", r, g, b, err)
	}

	bar := "#102030"
	c.Bar = &bar
	r, g, b, err = c.BarColor()
	if err != nil || r != 0x10 || g != 0x20 || b != 0x30 {
		t.Errorf("BarColor() override = (%d, %d, %d, %v), want (16, 32, 48)", r, g, b, err)
	}
}

const sampleLayout = `
sample_size: 2048
transform: gonum
noise_floor: 0.5
auto_level:
  falloff:
    type: linear
    rate: 0.01
  min: 5
normalize:
  enabled: true
  min: 0
  max: 255
colors:
  bar: "#FF8C00"
bands:
  - name: bass
    low_hz: 20
    high_hz: 250
    scaling: 0.8
    max_falloff:
      type: rolling-average
      rate: 20
  - name: kick
    low_hz: 50
    high_hz: 51
    isolated: true
    auto_floor: 40
    peak_falloff:
      type: accelerate
      rate: 0.5
  - low_hz: 4000
    high_hz: 16000
    compensation: 0.75
`

// TestParseLayout verifies every YAML field lands in the layout and that
// omitted optional fields fall back to package defaults.
func TestParseLayout(t *testing.T) {
	layout, err := ParseLayout([]byte(sampleLayout))
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}

	if layout.GetSampleSize() != 2048 {
		t.Errorf("GetSampleSize() = %d, want 2048", layout.GetSampleSize())
	}
	if layout.Transform != "gonum" {
		t.Errorf("Transform = %q, want gonum", layout.Transform)
	}
	if layout.AutoLevel.Falloff == nil || layout.AutoLevel.Falloff.Type != "linear" {
		t.Errorf("AutoLevel.Falloff = %+v, want linear", layout.AutoLevel.Falloff)
	}
	if layout.AutoLevel.GetAutoMin() != 5 {
		t.Errorf("GetAutoMin() = %f, want 5", layout.AutoLevel.GetAutoMin())
	}
	if layout.AutoLevel.GetAutoMax() != DefaultAutoMax {
		t.Errorf("GetAutoMax() = %f, want default %d", layout.AutoLevel.GetAutoMax(), DefaultAutoMax)
	}
	if !layout.Normalize.Enabled || layout.Normalize.Max != 255 {
		t.Errorf("Normalize = %+v, want enabled with max 255", layout.Normalize)
	}

	if len(layout.Bands) != 3 {
		t.Fatalf("expected 3 bands, got %d", len(layout.Bands))
	}

	bass := layout.Bands[0]
	if bass.GetScaling() != 0.8 {
		t.Errorf("bass scaling = %f, want 0.8", bass.GetScaling())
	}
	if bass.MaxFalloff == nil || bass.MaxFalloff.Type != "rolling-average" || bass.MaxFalloff.Rate != 20 {
		t.Errorf("bass max_falloff = %+v, want rolling-average/20", bass.MaxFalloff)
	}

	kick := layout.Bands[1]
	if !kick.Isolated || kick.GetAutoFloor() != 40 {
		t.Errorf("kick = %+v, want isolated with auto_floor 40", kick)
	}

	air := layout.Bands[2]
	if air.Label() != "4000-16000Hz" {
		t.Errorf("unnamed band label = %q, want 4000-16000Hz", air.Label())
	}
	if air.GetScaling() != 1 || air.GetAutoFloor() != DefaultAutoFloor {
		t.Errorf("unnamed band defaults = (%f, %f), want (1, %d)", air.GetScaling(), air.GetAutoFloor(), DefaultAutoFloor)
	}
	if air.Compensation != 0.75 {
		t.Errorf("compensation = %f, want 0.75", air.Compensation)
	}
}

// TestLayoutValidate_Rejects checks each validation rule with a minimal
// layout that breaks only that rule.
func TestLayoutValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"no bands", "noise_floor: 1\n", "no bands"},
		{"inverted band", "bands:\n  - low_hz: 500\n    high_hz: 100\n", "high_hz must be above low_hz"},
		{"unknown falloff", "bands:\n  - low_hz: 1\n    high_hz: 2\n    peak_falloff:\n      type: sideways\n", "unknown type"},
		{"negative rate", "auto_level:\n  falloff:\n    type: linear\n    rate: -1\nbands:\n  - low_hz: 1\n    high_hz: 2\n", "must not be negative"},
		{"unknown transform", "transform: dft\nbands:\n  - low_hz: 1\n    high_hz: 2\n", "unknown transform"},
		{"sample size too large", "sample_size: 65536\nbands:\n  - low_hz: 1\n    high_hz: 2\n", "sample_size"},
		{"bad colour", "colors:\n  peak: nope\nbands:\n  - low_hz: 1\n    high_hz: 2\n", "invalid hex colour"},
		{"malformed yaml", "bands: [", "failed to parse layout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.layout))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

// TestLayoutValidate_TooManyBands verifies the registry capacity is
// enforced before any range is constructed.
func TestLayoutValidate_TooManyBands(t *testing.T) {
	layout := &Layout{Bands: make([]Band, BandSize+BandSizePadding+1)}
	for i := range layout.Bands {
		layout.Bands[i] = Band{LowHz: float64(i * 100), HighHz: float64(i*100 + 50)}
	}
	if err := layout.Validate(); err == nil {
		t.Error("expected error for too many bands, got nil")
	}

	empty := &Layout{}
	if err := empty.Validate(); !errors.Is(err, ErrNoBands) {
		t.Errorf("Validate() on empty layout = %v, want ErrNoBands", err)
	}
}

// TestDefaultLayout verifies generated bands are contiguous, ascending and
// span the audible range.
func TestDefaultLayout(t *testing.T) {
	layout := DefaultLayout(16)
	if len(layout.Bands) != 16 {
		t.Fatalf("expected 16 bands, got %d", len(layout.Bands))
	}
	if err := layout.Validate(); err != nil {
		t.Fatalf("default layout failed validation: %v", err)
	}

	if layout.Bands[0].LowHz != MinBandHz {
		t.Errorf("first band starts at %.0f, want %d", layout.Bands[0].LowHz, MinBandHz)
	}
	if last := layout.Bands[15].HighHz; last != MaxBandHz {
		t.Errorf("last band ends at %.0f, want %d", last, MaxBandHz)
	}
	for i := 1; i < len(layout.Bands); i++ {
		if layout.Bands[i].LowHz != layout.Bands[i-1].HighHz {
			t.Errorf("band %d starts at %.0f, previous ends at %.0f", i, layout.Bands[i].LowHz, layout.Bands[i-1].HighHz)
		}
	}

	if n := len(DefaultLayout(0).Bands); n != DefaultBands {
		t.Errorf("DefaultLayout(0) has %d bands, want %d", n, DefaultBands)
	}
	if n := len(DefaultLayout(1000).Bands); n != BandSize {
		t.Errorf("DefaultLayout(1000) has %d bands, want %d", n, BandSize)
	}
}

// TestLoadLayout reads a layout from disk and reports missing files.
func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte(sampleLayout), 0o644); err != nil {
		t.Fatalf("writing layout: %v", err)
	}

	layout, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}
	if len(layout.Bands) != 3 {
		t.Errorf("expected 3 bands, got %d", len(layout.Bands))
	}

	if _, err := LoadLayout(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing layout file, got nil")
	}
}
