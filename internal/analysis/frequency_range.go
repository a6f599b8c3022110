package analysis

import (
	"math"

	"github.com/linuxmatters/jivemeter/internal/config"
)

// magnitudeScale scales transform magnitudes down to keep sums in range
const magnitudeScale = float64(0xFFFF * 0xFF)

// FrequencyRange tracks the energy of one [lowHz, highHz) band across frames.
//
// Each frame it produces a value (the weighted sum of the band's bins), a
// peak that snaps up instantly and decays by policy, and a max ceiling used
// to normalise both. The ceiling never falls below the peak or the auto floor.
type FrequencyRange struct {
	analysis *AudioFrequencyAnalysis // non-owning, set once on attach

	lowHz   float64
	highHz  float64
	scaling float64

	startBin int
	endBin   int

	isolated     bool
	autoFloor    float64
	compensation float64

	maxDecay  decay
	peakDecay decay

	value    float64
	peak     float64
	max      float64
	min      float64
	maxIndex int
	seen     bool
}

// NewFrequencyRange creates a range covering [lowHz, highHz) weighted by scaling
func NewFrequencyRange(lowHz, highHz, scaling float64) *FrequencyRange {
	if highHz < lowHz {
		lowHz, highHz = highHz, lowHz
	}
	return &FrequencyRange{
		lowHz:     lowHz,
		highHz:    highHz,
		scaling:   scaling,
		autoFloor: config.DefaultAutoFloor,
		maxDecay:  newDecay(Falloff{Type: ExponentialFalloff, Rate: config.DefaultMaxFalloffRate}),
		peakDecay: newDecay(Falloff{Type: ExponentialFalloff, Rate: config.DefaultPeakFalloffRate}),
		max:       1,
		maxIndex:  -1,
		endBin:    1,
	}
}

// SetIsolated makes the range normalise against its own ceiling instead of
// the shared ceiling, and removes it from the shared aggregation.
func (r *FrequencyRange) SetIsolated(isolated bool) {
	r.isolated = isolated
}

// SetMaxFalloff sets the decay policy for the ceiling
func (r *FrequencyRange) SetMaxFalloff(f Falloff) {
	r.maxDecay = newDecay(f)
}

// SetPeakFalloff sets the decay policy for the peak
func (r *FrequencyRange) SetPeakFalloff(f Falloff) {
	r.peakDecay = newDecay(f)
}

// SetAutoFloor sets the lowest value the ceiling may fall to
func (r *FrequencyRange) SetAutoFloor(floor float64) {
	r.autoFloor = floor
}

// SetHighFrequencyCompensation multiplies each bin by frequency^exponent to
// offset microphone roll-off. Values <= 0 disable it; 0.5 to 1.0 is typical.
func (r *FrequencyRange) SetHighFrequencyCompensation(exponent float64) {
	r.compensation = exponent
}

// setAudioInfo binds the range to an orchestrator and converts the Hz bounds
// into transform bins
func (r *FrequencyRange) setAudioInfo(a *AudioFrequencyAnalysis) error {
	if r.analysis != nil {
		return ErrAlreadyAttached
	}
	r.analysis = a
	r.startBin, r.endBin = binWindow(r.lowHz, r.highHz, a.sampleSize, a.sampleRate)
	return nil
}

// binWindow converts a Hz range into a non-empty [start, end) bin window
func binWindow(lowHz, highHz float64, sampleSize, sampleRate int) (int, int) {
	if sampleSize <= 0 || sampleRate <= 0 {
		return 0, 1
	}
	lowBin := lowHz * float64(sampleSize) / float64(sampleRate)
	highBin := highHz * float64(sampleSize) / float64(sampleRate)

	var start, end int
	if highBin-lowBin <= 1 {
		start = int(math.Floor(lowBin))
		end = start + 1
	} else {
		start = int(math.Round(lowBin))
		end = int(math.Round(highBin))
	}

	bins := sampleSize / 2
	if bins < 1 {
		bins = 1
	}
	if start < 0 {
		start = 0
	}
	if start > bins-1 {
		start = bins - 1
	}
	if end > bins {
		end = bins
	}
	if end <= start {
		end = start + 1
	}
	return start, end
}

// loop updates value, peak and max from the orchestrator's current magnitudes
func (r *FrequencyRange) loop() {
	a := r.analysis
	if a == nil {
		return
	}

	// ceiling decay
	if !r.maxDecay.rolling() {
		r.max -= r.maxDecay.step()
		if r.max < r.peak {
			r.max = r.peak
		}
	}
	if r.max < r.autoFloor {
		r.max = r.autoFloor
	}

	// peak decay
	if !r.peakDecay.rolling() {
		r.peak -= r.peakDecay.step()
		if r.peak < r.value {
			r.peak = r.value
		}
	}

	r.value = 0
	r.maxIndex = -1
	var maxContribution float64

	for i := r.startBin; i < r.endBin && i < len(a.real); i++ {
		rv := a.real[i] / magnitudeScale
		iv := a.imag[i] / magnitudeScale
		mag := math.Sqrt(rv*rv+iv*iv) * r.scaling

		if mag < a.noiseFloor {
			mag = 0
		}

		if r.compensation > 0 {
			frequency := float64(i * a.sampleRate / a.sampleSize)
			mag *= math.Pow(frequency, r.compensation)
		}

		if mag > maxContribution {
			maxContribution = mag
			r.maxIndex = i
		}
		r.value += mag
	}

	// per-bin gating can still leave a sum of small values
	if r.value < a.noiseFloor {
		r.value = 0
	}

	if r.peakDecay.rolling() {
		r.peak = r.peakDecay.blend(r.peak, r.value)
	} else if r.value > r.peak {
		r.peakDecay.reset()
		r.peak = r.value
	}
	if r.peak < 0 {
		r.peak = 0
	}

	if r.maxDecay.rolling() {
		r.max = r.maxDecay.blend(r.max, r.value)
	} else if r.value > r.max {
		r.maxDecay.reset()
		r.max = r.value
	}

	if !r.seen || r.value < r.min {
		r.min = r.value
		r.seen = true
	}

	if r.max < r.peak {
		r.max = r.peak
	}
	if r.max < r.value {
		r.max = r.value
	}
	if r.max < r.autoFloor {
		r.max = r.autoFloor
	}
	if r.max < a.autoMin {
		r.max = a.autoMin
	}
}

// Value returns the raw band value for the current frame
func (r *FrequencyRange) Value() float64 {
	return r.value
}

// ValueIn returns the value normalised into [min, max]
func (r *FrequencyRange) ValueIn(min, max float64) float64 {
	return mapAndClip(r.value, 0, r.ceiling(), min, max)
}

// Peak returns the raw peak
func (r *FrequencyRange) Peak() float64 {
	return r.peak
}

// PeakIn returns the peak normalised into [min, max]
func (r *FrequencyRange) PeakIn(min, max float64) float64 {
	return mapAndClip(r.peak, 0, r.ceiling(), min, max)
}

// ceiling is the normalisation denominator: the shared ceiling unless isolated
func (r *FrequencyRange) ceiling() float64 {
	if r.isolated || r.analysis == nil {
		return r.max
	}
	return r.analysis.max
}

// Min returns the lowest value seen since the range was attached
func (r *FrequencyRange) Min() float64 {
	return r.min
}

// Max returns the current ceiling
func (r *FrequencyRange) Max() float64 {
	return r.max
}

// MaxFrequency returns the frequency of the bin that contributed most this
// frame, or 0 when nothing did
func (r *FrequencyRange) MaxFrequency() int {
	if r.maxIndex < 0 || r.analysis == nil || r.analysis.sampleSize == 0 {
		return 0
	}
	return r.maxIndex * r.analysis.sampleRate / r.analysis.sampleSize
}

// LowHz returns the lower band edge
func (r *FrequencyRange) LowHz() float64 { return r.lowHz }

// HighHz returns the upper band edge
func (r *FrequencyRange) HighHz() float64 { return r.highHz }

// Scaling returns the equaliser weight
func (r *FrequencyRange) Scaling() float64 { return r.scaling }

// Isolated reports whether the range normalises against its own ceiling
func (r *FrequencyRange) Isolated() bool { return r.isolated }

// Bins returns the [start, end) transform bins the range sums
func (r *FrequencyRange) Bins() (int, int) { return r.startBin, r.endBin }
