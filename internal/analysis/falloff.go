package analysis

import (
	"fmt"
	"strings"
)

// FalloffType selects how a tracked peak or ceiling relaxes over time
type FalloffType int

const (
	NoFalloff FalloffType = iota
	LinearFalloff
	AccelerateFalloff
	ExponentialFalloff
	RollingAverageFalloff
)

var falloffNames = map[FalloffType]string{
	NoFalloff:             "none",
	LinearFalloff:         "linear",
	AccelerateFalloff:     "accelerate",
	ExponentialFalloff:    "exponential",
	RollingAverageFalloff: "rolling-average",
}

func (t FalloffType) String() string {
	if name, ok := falloffNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FalloffType(%d)", int(t))
}

// ParseFalloffType converts a name such as "exponential" into a FalloffType
func ParseFalloffType(s string) (FalloffType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "none", "off":
		return NoFalloff, nil
	case "rolling", "rolling_average", "rollingaverage":
		return RollingAverageFalloff, nil
	}
	for t, n := range falloffNames {
		if n == name {
			return t, nil
		}
	}
	return NoFalloff, fmt.Errorf("unknown falloff type %q", s)
}

// Falloff pairs a decay policy with its configured rate.
// For RollingAverageFalloff the rate is the averaging window length.
type Falloff struct {
	Type FalloffType
	Rate float64
}

// Advance returns the fall rate for this frame given the rate accumulated
// since the last new high. The result is both the new accumulator and the
// amount to subtract from the tracked quantity.
func (f Falloff) Advance(current float64) float64 {
	switch f.Type {
	case LinearFalloff:
		return f.Rate
	case AccelerateFalloff:
		return current + f.Rate
	case ExponentialFalloff:
		if current == 0 {
			current = f.Rate
		}
		return current + current
	default:
		// RollingAverageFalloff is applied as a blend, not a decrement
		return 0
	}
}

// window returns the rolling average length encoded in Rate
func (f Falloff) window() int {
	w := int(f.Rate)
	if w <= 0 || w > MaxRollingAverageWindow {
		return MaxRollingAverageWindow
	}
	return w
}

// decay is the mutable state behind one tracked quantity: its policy, the
// accumulated fall rate and, for rolling-average policies, the averaging buffer.
type decay struct {
	falloff Falloff
	rate    float64
	avg     *RollingAverage
}

func newDecay(f Falloff) decay {
	d := decay{falloff: f}
	if f.Type == RollingAverageFalloff {
		d.avg = NewRollingAverage(f.window())
	}
	return d
}

func (d *decay) rolling() bool {
	return d.avg != nil
}

// step advances the accumulator and returns this frame's decrement
func (d *decay) step() float64 {
	d.rate = d.falloff.Advance(d.rate)
	return d.rate
}

// reset restarts the decay after a new high
func (d *decay) reset() {
	d.rate = 0
}

// blend moves tracked toward value through the rolling average. A tracker
// above the signal is pulled down harder than one below it is pulled up.
func (d *decay) blend(tracked, value float64) float64 {
	var sample float64
	if tracked > value {
		sample = 0.25*tracked + 0.75*value
	} else {
		sample = (tracked + value) / 2
	}
	return d.avg.AddValue(sample)
}

// mapAndClip clips x to [inMin, inMax] and rescales it to [outMin, outMax].
// A zero width input range is treated as a width of one.
func mapAndClip(x, inMin, inMax, outMin, outMax float64) float64 {
	if x > inMax {
		x = inMax
	}
	if x < inMin {
		x = inMin
	}
	span := inMax - inMin
	if span == 0 {
		span = 1
	}
	return (x-inMin)*(outMax-outMin)/span + outMin
}
