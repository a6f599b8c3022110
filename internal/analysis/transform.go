package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/argusdusty/gofft"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// hammingCompensation restores the amplitude lost to the Hamming window
// (its mean gain is 0.54)
const hammingCompensation = 1 / 0.54

// Transform turns a frame of samples into per-bin magnitudes in place.
//
// Before Compute, re holds the samples and im is zeroed. Afterwards re[i]
// holds the magnitude of bin i for i in [0, n/2) and im is zeroed.
type Transform interface {
	Configure(sampleSize, sampleRate int) error
	Compute(re, im []float64) error
}

// NewTransform returns the transform registered under name ("gofft" or "gonum")
func NewTransform(name string) (Transform, error) {
	switch name {
	case "", "gofft":
		return &GoFFT{}, nil
	case "gonum":
		return &GonumFFT{}, nil
	}
	return nil, fmt.Errorf("unknown transform %q", name)
}

// prepare removes the DC bias and applies a compensated Hamming window
func prepare(samples []float64) {
	if len(samples) == 0 {
		return
	}

	var mean float64
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))
	for i := range samples {
		samples[i] -= mean
	}

	window.Hamming(samples)
	for i := range samples {
		samples[i] *= hammingCompensation
	}
}

// GoFFT computes magnitudes with argusdusty/gofft. Sizes must be powers of two.
type GoFFT struct {
	size int
	buf  []complex128
}

// Configure prepares twiddle factors for the given size
func (g *GoFFT) Configure(sampleSize, sampleRate int) error {
	if sampleSize <= 0 || sampleSize&(sampleSize-1) != 0 {
		return fmt.Errorf("%w: gofft needs a power of two, got %d", ErrSampleSize, sampleSize)
	}
	if err := gofft.Prepare(sampleSize); err != nil {
		return fmt.Errorf("preparing FFT: %w", err)
	}
	g.size = sampleSize
	g.buf = make([]complex128, sampleSize)
	return nil
}

// Compute runs the forward FFT and writes magnitudes into re
func (g *GoFFT) Compute(re, im []float64) error {
	n := g.size
	if len(re) < n || len(im) < n {
		return fmt.Errorf("%w: buffers shorter than %d", ErrSampleSize, n)
	}

	prepare(re[:n])
	for i := 0; i < n; i++ {
		g.buf[i] = complex(re[i], im[i])
	}

	if err := gofft.FFT(g.buf); err != nil {
		return fmt.Errorf("computing FFT: %w", err)
	}

	for i := 0; i < n; i++ {
		re[i] = cmplx.Abs(g.buf[i])
		im[i] = 0
	}
	return nil
}

// GonumFFT computes magnitudes with gonum's real FFT. Any size is accepted.
type GonumFFT struct {
	fft    *fourier.FFT
	size   int
	coeffs []complex128
}

// Configure (re)sizes the gonum FFT plan
func (g *GonumFFT) Configure(sampleSize, sampleRate int) error {
	if sampleSize <= 0 {
		return fmt.Errorf("%w: %d", ErrSampleSize, sampleSize)
	}
	if g.fft == nil {
		g.fft = fourier.NewFFT(sampleSize)
	} else {
		g.fft.Reset(sampleSize)
	}
	g.size = sampleSize
	g.coeffs = make([]complex128, sampleSize/2+1)
	return nil
}

// Compute runs the forward FFT and writes magnitudes into re
func (g *GonumFFT) Compute(re, im []float64) error {
	n := g.size
	if g.fft == nil || len(re) < n || len(im) < n {
		return fmt.Errorf("%w: transform not configured for %d samples", ErrSampleSize, len(re))
	}

	prepare(re[:n])
	g.coeffs = g.fft.Coefficients(g.coeffs, re[:n])

	for i := 0; i < n; i++ {
		if i < len(g.coeffs) {
			re[i] = cmplx.Abs(g.coeffs[i])
		} else {
			re[i] = 0
		}
		im[i] = 0
	}
	return nil
}
