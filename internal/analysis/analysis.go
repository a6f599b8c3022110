package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/linuxmatters/jivemeter/internal/config"
)

// MaxFrequencyRanges is the registry capacity: the standard band count plus
// room for extra monitored ranges
const MaxFrequencyRanges = config.BandSize + config.BandSizePadding

// NoAutoMax disables clipping of normalised samples at the auto-level ceiling
const NoAutoMax = -1

var (
	// ErrTooManyRanges is returned when the range registry is full
	ErrTooManyRanges = errors.New("frequency range registry is full")

	// ErrAlreadyAttached is returned when a range is added to an analysis twice
	// or to a second analysis
	ErrAlreadyAttached = errors.New("frequency range is attached to another analysis")

	// ErrSampleSize is returned for frame sizes the analysis cannot hold
	ErrSampleSize = errors.New("unsupported sample size")
)

// AudioFrequencyAnalysis runs the spectral transform once per frame and drives
// every registered FrequencyRange from the resulting magnitudes.
//
// It is not safe for concurrent use: Loop and the accessors are expected to
// run on the same goroutine, with readers only looking between frames.
type AudioFrequencyAnalysis struct {
	transform  Transform
	configured bool

	samples    []int32
	sampleSize int
	sampleRate int

	real [config.MaxSampleSize]float64
	imag [config.MaxSampleSize]float64

	ranges    [MaxFrequencyRanges]*FrequencyRange
	numRanges int

	noiseFloor float64

	autoLevel   bool
	sampleDecay decay
	autoMin     float64
	autoMax     float64

	normalize bool
	normalMin float64
	normalMax float64

	// aggregate over non-isolated ranges, rebuilt every frame
	min float64
	max float64

	samplesMin  float64
	samplesMax  float64
	samplesSeen bool
}

// New creates an analysis for frames of sampleSize samples at sampleRate Hz.
// A nil transform selects GoFFT.
func New(sampleSize, sampleRate int, transform Transform) *AudioFrequencyAnalysis {
	if transform == nil {
		transform = &GoFFT{}
	}
	return &AudioFrequencyAnalysis{
		transform:   transform,
		sampleSize:  sampleSize,
		sampleRate:  sampleRate,
		autoLevel:   true,
		sampleDecay: newDecay(Falloff{Type: ExponentialFalloff, Rate: config.DefaultSampleFalloffRate}),
		autoMin:     config.DefaultAutoMin,
		autoMax:     NoAutoMax,
		normalMin:   0,
		normalMax:   1,
		samplesMax:  1,
	}
}

// AddFrequencyRange attaches r and appends it to the registry. The analysis
// only references r; the caller keeps ownership.
func (a *AudioFrequencyAnalysis) AddFrequencyRange(r *FrequencyRange) error {
	if r == nil {
		return errors.New("nil frequency range")
	}
	if a.numRanges >= len(a.ranges) {
		return fmt.Errorf("%w: capacity %d", ErrTooManyRanges, len(a.ranges))
	}
	if err := r.setAudioInfo(a); err != nil {
		return err
	}
	a.ranges[a.numRanges] = r
	a.numRanges++
	return nil
}

// Loop analyses one frame of samples. The samples slice is borrowed for the
// duration of the call and kept for the sample accessors until the next frame.
func (a *AudioFrequencyAnalysis) Loop(samples []int32, sampleSize, sampleRate int) error {
	if sampleSize <= 0 || sampleSize > config.MaxSampleSize || sampleSize > len(samples) {
		return fmt.Errorf("%w: %d samples (buffer %d, limit %d)",
			ErrSampleSize, sampleSize, len(samples), config.MaxSampleSize)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	if !a.configured || a.sampleSize != sampleSize || a.sampleRate != sampleRate {
		if err := a.transform.Configure(sampleSize, sampleRate); err != nil {
			return fmt.Errorf("configuring transform: %w", err)
		}
		a.sampleSize = sampleSize
		a.sampleRate = sampleRate
		a.configured = true
	}
	a.samples = samples[:sampleSize]

	if a.autoLevel && !a.sampleDecay.rolling() {
		a.samplesMax -= a.sampleDecay.step()
		if a.samplesMax < 0 {
			a.samplesMax = 0
		}
	}

	for i, s := range a.samples {
		a.real[i] = float64(s)
		a.imag[i] = 0

		level := math.Abs(float64(s))
		if a.sampleDecay.rolling() {
			a.samplesMax = a.sampleDecay.blend(a.samplesMax, level)
		} else if level > a.samplesMax {
			a.samplesMax = level
			a.sampleDecay.reset()
		}
		if !a.samplesSeen || level < a.samplesMin {
			a.samplesMin = level
			a.samplesSeen = true
		}
	}

	if err := a.transform.Compute(a.real[:sampleSize], a.imag[:sampleSize]); err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	a.min = math.Inf(1)
	a.max = 0
	shared := 0
	for _, r := range a.ranges[:a.numRanges] {
		r.loop()
		if r.isolated {
			continue
		}
		shared++
		if r.min < a.min {
			a.min = r.min
		}
		if r.max > a.max {
			a.max = r.max
		}
	}
	if shared == 0 {
		a.min = 0
	}
	return nil
}

// SetNoiseFloor sets the magnitude below which bins and bands read as silence
func (a *AudioFrequencyAnalysis) SetNoiseFloor(noiseFloor float64) {
	a.noiseFloor = noiseFloor
}

// NoiseFloor returns the configured noise floor
func (a *AudioFrequencyAnalysis) NoiseFloor() float64 {
	return a.noiseFloor
}

// Normalize enables or disables normalised sample output in [min, max]
func (a *AudioFrequencyAnalysis) Normalize(enabled bool, min, max float64) {
	a.normalize = enabled
	a.normalMin = min
	a.normalMax = max
}

// AutoLevel configures how the sample ceiling adapts to ambient level.
// min is the floor every range ceiling is held above; max clips normalised
// samples (NoAutoMax disables it). A NoFalloff policy turns auto-level off.
func (a *AudioFrequencyAnalysis) AutoLevel(f Falloff, min, max float64) {
	a.autoLevel = f.Type != NoFalloff
	a.sampleDecay = newDecay(f)
	a.autoMin = min
	a.autoMax = max
}

// IsNormalize reports whether normalised sample output is enabled
func (a *AudioFrequencyAnalysis) IsNormalize() bool {
	return a.normalize
}

// IsAutoLevel reports whether the sample ceiling auto-levels
func (a *AudioFrequencyAnalysis) IsAutoLevel() bool {
	return a.autoLevel
}

// AutoMin returns the auto-level floor
func (a *AudioFrequencyAnalysis) AutoMin() float64 {
	return a.autoMin
}

// RawSample returns the sample at index, or 0 when out of range or no frame
// has been analysed yet
func (a *AudioFrequencyAnalysis) RawSample(index int) float64 {
	if index < 0 || index >= len(a.samples) {
		return 0
	}
	return float64(a.samples[index])
}

// Sample returns the sample at index, normalised into the configured output
// range when normalisation is enabled
func (a *AudioFrequencyAnalysis) Sample(index int) float64 {
	if a.normalize {
		return a.NormalizedSample(index, a.normalMin, a.normalMax)
	}
	return a.RawSample(index)
}

// NormalizedSample maps the sample at index from the auto-levelled sample
// range into [min, max]
func (a *AudioFrequencyAnalysis) NormalizedSample(index int, min, max float64) float64 {
	value := a.RawSample(index)

	ceiling := a.samplesMax
	if floor := a.autoMin * config.SampleScale; ceiling < floor {
		ceiling = floor
	}
	if a.autoLevel && a.autoMax != NoAutoMax && a.autoMax > 0 && ceiling > a.autoMax {
		ceiling = a.autoMax
	}
	return mapAndClip(value, -ceiling, ceiling, min, max)
}

// SampleTriggerIndex returns the first index in the first half of the frame
// where the signal crosses from non-negative to negative, or 0 if none does.
// Drawing waveforms from this index keeps them steady between frames.
func (a *AudioFrequencyAnalysis) SampleTriggerIndex() int {
	n := len(a.samples)
	for i := 0; i < n/2 && i+1 < n; i++ {
		if a.samples[i] >= 0 && a.samples[i+1] < 0 {
			return i
		}
	}
	return 0
}

// SampleMin returns the smallest absolute sample level seen
func (a *AudioFrequencyAnalysis) SampleMin() float64 {
	return a.samplesMin
}

// SampleMax returns the auto-levelled sample ceiling
func (a *AudioFrequencyAnalysis) SampleMax() float64 {
	return a.samplesMax
}

// Min returns the lowest lifetime minimum among shared ranges
func (a *AudioFrequencyAnalysis) Min() float64 {
	return a.min
}

// Max returns the shared ceiling: the highest max among non-isolated ranges
func (a *AudioFrequencyAnalysis) Max() float64 {
	return a.max
}

// Real returns the magnitude buffer from the last frame
func (a *AudioFrequencyAnalysis) Real() []float64 {
	return a.real[:a.bufferLen()]
}

// Imag returns the imaginary buffer from the last frame
func (a *AudioFrequencyAnalysis) Imag() []float64 {
	return a.imag[:a.bufferLen()]
}

func (a *AudioFrequencyAnalysis) bufferLen() int {
	if a.sampleSize < 0 {
		return 0
	}
	if a.sampleSize > len(a.real) {
		return len(a.real)
	}
	return a.sampleSize
}

// SampleSize returns the frame size in samples
func (a *AudioFrequencyAnalysis) SampleSize() int {
	return a.sampleSize
}

// SampleRate returns the sample rate in Hz
func (a *AudioFrequencyAnalysis) SampleRate() int {
	return a.sampleRate
}

// Len returns the number of registered ranges
func (a *AudioFrequencyAnalysis) Len() int {
	return a.numRanges
}

// Ranges returns the registered ranges in registration order
func (a *AudioFrequencyAnalysis) Ranges() []*FrequencyRange {
	return a.ranges[:a.numRanges]
}
