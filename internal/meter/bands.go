package meter

import (
	"fmt"

	"github.com/linuxmatters/jivemeter/internal/analysis"
	"github.com/linuxmatters/jivemeter/internal/config"
)

// Build creates an analysis for sampleRate and registers one range per
// layout band, in layout order.
func Build(layout *config.Layout, sampleRate int) (*analysis.AudioFrequencyAnalysis, []*analysis.FrequencyRange, error) {
	if layout == nil {
		return nil, nil, fmt.Errorf("nil layout")
	}
	if err := layout.Validate(); err != nil {
		return nil, nil, err
	}

	transform, err := analysis.NewTransform(layout.Transform)
	if err != nil {
		return nil, nil, err
	}

	a := analysis.New(layout.GetSampleSize(), sampleRate, transform)
	a.SetNoiseFloor(layout.NoiseFloor)

	sampleFalloff := analysis.Falloff{Type: analysis.ExponentialFalloff, Rate: config.DefaultSampleFalloffRate}
	if layout.AutoLevel.Falloff != nil {
		if sampleFalloff, err = toFalloff(*layout.AutoLevel.Falloff); err != nil {
			return nil, nil, fmt.Errorf("auto_level: %w", err)
		}
	}
	a.AutoLevel(sampleFalloff, layout.AutoLevel.GetAutoMin(), layout.AutoLevel.GetAutoMax())

	if n := layout.Normalize; n.Enabled {
		lo, hi := n.Min, n.Max
		if hi <= lo {
			lo, hi = 0, 1
		}
		a.Normalize(true, lo, hi)
	}

	ranges := make([]*analysis.FrequencyRange, 0, len(layout.Bands))
	for i, b := range layout.Bands {
		r, err := newRange(b)
		if err != nil {
			return nil, nil, fmt.Errorf("band %d (%s): %w", i, b.Label(), err)
		}
		if err := a.AddFrequencyRange(r); err != nil {
			return nil, nil, fmt.Errorf("band %d (%s): %w", i, b.Label(), err)
		}
		ranges = append(ranges, r)
	}
	return a, ranges, nil
}

func newRange(b config.Band) (*analysis.FrequencyRange, error) {
	r := analysis.NewFrequencyRange(b.LowHz, b.HighHz, b.GetScaling())
	r.SetIsolated(b.Isolated)
	r.SetAutoFloor(b.GetAutoFloor())
	r.SetHighFrequencyCompensation(b.Compensation)

	if b.MaxFalloff != nil {
		f, err := toFalloff(*b.MaxFalloff)
		if err != nil {
			return nil, fmt.Errorf("max_falloff: %w", err)
		}
		r.SetMaxFalloff(f)
	}
	if b.PeakFalloff != nil {
		f, err := toFalloff(*b.PeakFalloff)
		if err != nil {
			return nil, fmt.Errorf("peak_falloff: %w", err)
		}
		r.SetPeakFalloff(f)
	}
	return r, nil
}

func toFalloff(c config.FalloffConfig) (analysis.Falloff, error) {
	t, err := analysis.ParseFalloffType(c.Type)
	if err != nil {
		return analysis.Falloff{}, err
	}
	return analysis.Falloff{Type: t, Rate: c.Rate}, nil
}
