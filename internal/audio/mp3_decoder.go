package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always emits interleaved 16-bit little-endian stereo
const (
	mp3Channels   = 2
	mp3FrameBytes = 2 * mp3Channels
)

// MP3Decoder implements AudioDecoder for MP3 files
type MP3Decoder struct {
	decoder    *mp3.Decoder
	file       *os.File
	sampleRate int

	raw []byte
	pcm []int
}

// NewMP3Decoder creates a new MP3 decoder
func NewMP3Decoder(filename string) (*MP3Decoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	return &MP3Decoder{
		decoder:    decoder,
		file:       f,
		sampleRate: decoder.SampleRate(),
	}, nil
}

// ReadChunk reads up to numSamples stereo frames and averages them to mono
func (d *MP3Decoder) ReadChunk(numSamples int) ([]float64, error) {
	if numSamples <= 0 {
		return nil, nil
	}

	size := numSamples * mp3FrameBytes
	if cap(d.raw) < size {
		d.raw = make([]byte, size)
	}
	d.raw = d.raw[:size]

	// Short reads are normal mid-stream; keep reading until full or EOF
	n, err := io.ReadFull(d.decoder, d.raw)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read MP3 data: %w", err)
	}

	n -= n % mp3FrameBytes
	if n == 0 {
		return nil, io.EOF
	}

	values := n / 2
	if cap(d.pcm) < values {
		d.pcm = make([]int, values)
	}
	d.pcm = d.pcm[:values]
	for i := range d.pcm {
		d.pcm[i] = int(int16(binary.LittleEndian.Uint16(d.raw[i*2:])))
	}

	return downmix(nil, d.pcm, mp3Channels, 32768), nil
}

// SampleRate returns the sample rate
func (d *MP3Decoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels
func (d *MP3Decoder) NumChannels() int {
	return mp3Channels
}

// Close closes the decoder and releases resources
func (d *MP3Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
