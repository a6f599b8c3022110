package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACDecoder implements AudioDecoder for FLAC files
type FLACDecoder struct {
	stream      *flac.Stream
	file        *os.File
	sampleRate  int
	numSamples  int64
	numChannels int
	position    int64

	// decoded mono samples left over from the last frame
	pending []float64
}

// NewFLACDecoder creates a new FLAC decoder
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	// Reads the signature and StreamInfo block
	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}
	if stream.Info == nil || stream.Info.SampleRate == 0 || stream.Info.NChannels == 0 {
		stream.Close()
		f.Close()
		return nil, fmt.Errorf("invalid FLAC stream info: %s", filename)
	}

	return &FLACDecoder{
		stream:      stream,
		file:        f,
		sampleRate:  int(stream.Info.SampleRate),
		numSamples:  int64(stream.Info.NSamples),
		numChannels: int(stream.Info.NChannels),
	}, nil
}

// ReadChunk reads up to numSamples mono samples
func (d *FLACDecoder) ReadChunk(numSamples int) ([]float64, error) {
	if numSamples <= 0 {
		return nil, nil
	}

	samples := make([]float64, 0, numSamples)
	for len(samples) < numSamples {
		if len(d.pending) == 0 {
			if err := d.nextFrame(); err != nil {
				if err == io.EOF {
					break
				}
				return nil, err
			}
			continue
		}

		take := min(numSamples-len(samples), len(d.pending))
		samples = append(samples, d.pending[:take]...)
		d.pending = d.pending[take:]
	}

	if len(samples) == 0 {
		return nil, io.EOF
	}
	d.position += int64(len(samples))
	return samples, nil
}

// nextFrame decodes one FLAC frame into the pending mono buffer.
func (d *FLACDecoder) nextFrame() error {
	frame, err := d.stream.ParseNext()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("failed to parse FLAC frame: %w", err)
	}
	if len(frame.Subframes) == 0 || frame.BitsPerSample == 0 {
		return nil
	}

	// FLAC supports 4-32 bits per sample
	fullScale := float64(int64(1) << (frame.BitsPerSample - 1))
	count := len(frame.Subframes[0].Samples)
	mono := make([]float64, count)
	for i := 0; i < count; i++ {
		var sum int64
		for _, sub := range frame.Subframes {
			sum += int64(sub.Samples[i])
		}
		mono[i] = float64(sum) / float64(len(frame.Subframes)) / fullScale
	}
	d.pending = mono
	return nil
}

// SampleRate returns the sample rate
func (d *FLACDecoder) SampleRate() int {
	return d.sampleRate
}

// NumSamples returns the total number of samples, or 0 when the stream does not say
func (d *FLACDecoder) NumSamples() int64 {
	return d.numSamples
}

// NumChannels returns the number of audio channels
func (d *FLACDecoder) NumChannels() int {
	return d.numChannels
}

// Close closes the decoder and releases resources
func (d *FLACDecoder) Close() error {
	if d.stream != nil {
		d.stream.Close()
	}
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
