package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Layout describes the analysis settings and bands to monitor. It is loaded
// from YAML; omitted fields fall back to the defaults in this package.
type Layout struct {
	SampleSize int             `yaml:"sample_size"`
	Transform  string          `yaml:"transform"` // gofft or gonum
	NoiseFloor float64         `yaml:"noise_floor"`
	AutoLevel  AutoLevelConfig `yaml:"auto_level"`
	Normalize  NormalizeConfig `yaml:"normalize"`
	Colors     ColorConfig     `yaml:"colors"`
	Bands      []Band          `yaml:"bands"`
}

// FalloffConfig names a decay policy and its rate
type FalloffConfig struct {
	Type string  `yaml:"type"` // none, linear, accelerate, exponential, rolling-average
	Rate float64 `yaml:"rate"`
}

// AutoLevelConfig controls how the sample ceiling follows the ambient level
type AutoLevelConfig struct {
	Falloff *FalloffConfig `yaml:"falloff"`
	Min     *float64       `yaml:"min"`
	Max     *float64       `yaml:"max"`
}

// NormalizeConfig controls normalised sample output
type NormalizeConfig struct {
	Enabled bool    `yaml:"enabled"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// ColorConfig holds optional meter colour overrides as hex strings
type ColorConfig struct {
	Bar  *string `yaml:"bar"`
	Peak *string `yaml:"peak"`
}

// Band is one monitored frequency range
type Band struct {
	Name         string         `yaml:"name"`
	LowHz        float64        `yaml:"low_hz"`
	HighHz       float64        `yaml:"high_hz"`
	Scaling      *float64       `yaml:"scaling"`
	Isolated     bool           `yaml:"isolated"`
	AutoFloor    *float64       `yaml:"auto_floor"`
	Compensation float64        `yaml:"compensation"` // high frequency roll-off exponent, 0 disables
	MaxFalloff   *FalloffConfig `yaml:"max_falloff"`
	PeakFalloff  *FalloffConfig `yaml:"peak_falloff"`
}

// FalloffNames lists the accepted falloff type names
var FalloffNames = []string{"none", "linear", "accelerate", "exponential", "rolling-average"}

// ErrNoBands is returned by Validate for a layout without bands
var ErrNoBands = errors.New("layout has no bands")

// LoadLayout reads and validates a YAML layout file
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	layout, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return layout, nil
}

// ParseLayout decodes and validates a YAML layout
func ParseLayout(data []byte) (*Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &layout, nil
}

// DefaultLayout spreads n logarithmically spaced bands across the audible range
func DefaultLayout(n int) *Layout {
	if n <= 0 {
		n = DefaultBands
	}
	if n > BandSize {
		n = BandSize
	}

	layout := &Layout{Bands: make([]Band, n)}
	ratio := math.Pow(float64(MaxBandHz)/float64(MinBandHz), 1/float64(n))
	low := float64(MinBandHz)
	for i := range layout.Bands {
		high := low * ratio
		layout.Bands[i] = Band{
			LowHz:  math.Round(low),
			HighHz: math.Round(high),
		}
		low = high
	}
	return layout
}

// Validate checks band bounds, capacity and falloff names
func (l *Layout) Validate() error {
	if len(l.Bands) == 0 {
		return ErrNoBands
	}
	if limit := BandSize + BandSizePadding; len(l.Bands) > limit {
		return fmt.Errorf("layout has %d bands, at most %d are supported", len(l.Bands), limit)
	}
	if l.SampleSize < 0 || l.SampleSize > MaxSampleSize {
		return fmt.Errorf("sample_size %d out of range (0-%d)", l.SampleSize, MaxSampleSize)
	}
	switch l.Transform {
	case "", "gofft", "gonum":
	default:
		return fmt.Errorf("unknown transform %q", l.Transform)
	}
	if l.NoiseFloor < 0 {
		return fmt.Errorf("noise_floor must not be negative")
	}
	if err := validateFalloff("auto_level.falloff", l.AutoLevel.Falloff); err != nil {
		return err
	}
	if _, _, _, err := l.Colors.BarColor(); err != nil {
		return err
	}
	if _, _, _, err := l.Colors.PeakColor(); err != nil {
		return err
	}

	for i, b := range l.Bands {
		name := b.Label()
		if b.LowHz < 0 || b.HighHz <= b.LowHz {
			return fmt.Errorf("band %d (%s): high_hz must be above low_hz", i, name)
		}
		if err := validateFalloff(fmt.Sprintf("band %d max_falloff", i), b.MaxFalloff); err != nil {
			return err
		}
		if err := validateFalloff(fmt.Sprintf("band %d peak_falloff", i), b.PeakFalloff); err != nil {
			return err
		}
	}
	return nil
}

func validateFalloff(field string, f *FalloffConfig) error {
	if f == nil {
		return nil
	}
	if f.Rate < 0 {
		return fmt.Errorf("%s: rate must not be negative", field)
	}
	t := strings.ToLower(strings.TrimSpace(f.Type))
	for _, name := range FalloffNames {
		if t == name {
			return nil
		}
	}
	return fmt.Errorf("%s: unknown type %q (want one of %s)", field, f.Type, strings.Join(FalloffNames, ", "))
}

// GetSampleSize returns the frame size, falling back to SampleSize
func (l *Layout) GetSampleSize() int {
	if l.SampleSize > 0 {
		return l.SampleSize
	}
	return SampleSize
}

// GetAutoMin returns the auto-level floor override or the default
func (a AutoLevelConfig) GetAutoMin() float64 {
	if a.Min != nil {
		return *a.Min
	}
	return DefaultAutoMin
}

// GetAutoMax returns the auto-level ceiling override or the default
func (a AutoLevelConfig) GetAutoMax() float64 {
	if a.Max != nil {
		return *a.Max
	}
	return DefaultAutoMax
}

// Label returns the band name, or its Hz range when unnamed
func (b Band) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("%.0f-%.0fHz", b.LowHz, b.HighHz)
}

// GetScaling returns the equaliser weight, defaulting to 1
func (b Band) GetScaling() float64 {
	if b.Scaling != nil {
		return *b.Scaling
	}
	return 1
}

// GetAutoFloor returns the ceiling floor override or the default
func (b Band) GetAutoFloor() float64 {
	if b.AutoFloor != nil {
		return *b.AutoFloor
	}
	return DefaultAutoFloor
}

// BarColor returns the bar colour override, or the brand default
func (c ColorConfig) BarColor() (r, g, b uint8, err error) {
	if c.Bar == nil {
		return BarColorR, BarColorG, BarColorB, nil
	}
	return ParseHexColor(*c.Bar)
}

// PeakColor returns the peak marker colour override, or the default
func (c ColorConfig) PeakColor() (r, g, b uint8, err error) {
	if c.Peak == nil {
		return PeakColorR, PeakColorG, PeakColorB, nil
	}
	return ParseHexColor(*c.Peak)
}
