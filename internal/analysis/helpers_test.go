package analysis

import "testing"

// With sampleSize == sampleRate every bin is exactly 1 Hz wide, which keeps
// band edges and MaxFrequency easy to reason about.
const (
	testSampleSize = 1024
	testSampleRate = 1024
)

// fixedTransform writes preset magnitudes instead of computing an FFT
type fixedTransform struct {
	mags       map[int]float64
	configures int
}

func (f *fixedTransform) Configure(sampleSize, sampleRate int) error {
	f.configures++
	return nil
}

func (f *fixedTransform) Compute(re, im []float64) error {
	for i := range re {
		re[i] = f.mags[i]
		im[i] = 0
	}
	return nil
}

// set stores a magnitude that reads back as value in range units
func (f *fixedTransform) set(bin int, value float64) {
	f.mags[bin] = value * magnitudeScale
}

func newTestAnalysis(t *testing.T) (*AudioFrequencyAnalysis, *fixedTransform) {
	t.Helper()
	ft := &fixedTransform{mags: map[int]float64{}}
	a := New(testSampleSize, testSampleRate, ft)
	a.AutoLevel(Falloff{Type: ExponentialFalloff, Rate: 0.00001}, 0, NoAutoMax)
	return a, ft
}

func attach(t *testing.T, a *AudioFrequencyAnalysis, r *FrequencyRange) *FrequencyRange {
	t.Helper()
	if err := a.AddFrequencyRange(r); err != nil {
		t.Fatalf("AddFrequencyRange failed: %v", err)
	}
	return r
}

func runFrames(t *testing.T, a *AudioFrequencyAnalysis, n int) {
	t.Helper()
	samples := make([]int32, testSampleSize)
	for i := 0; i < n; i++ {
		if err := a.Loop(samples, testSampleSize, testSampleRate); err != nil {
			t.Fatalf("Loop frame %d failed: %v", i, err)
		}
	}
}
