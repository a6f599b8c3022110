package audio

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV encodes interleaved 16-bit PCM into a temporary WAV file.
func writeWAV(t *testing.T, sampleRate, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create fixture: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Data: data,
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to finalise fixture: %v", err)
	}
	return path
}

func TestNewDecoder_Extensions(t *testing.T) {
	_, err := NewDecoder("track.ogg")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat for .ogg, got %v", err)
	}

	_, err = NewDecoder("missing.wav")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Missing .wav should fail to open, not be rejected as unsupported: %v", err)
	}

	path := writeWAV(t, 8000, 1, []int{0, 1, 2, 3})
	upper := filepath.Join(filepath.Dir(path), "FIXTURE.WAV")
	if err := os.Rename(path, upper); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	dec, err := NewDecoder(upper)
	if err != nil {
		t.Fatalf("Upper-case extension should open: %v", err)
	}
	defer dec.Close()
	if _, ok := dec.(*WAVDecoder); !ok {
		t.Errorf("Expected *WAVDecoder, got %T", dec)
	}
}

func TestWAVDecoder_Mono(t *testing.T) {
	path := writeWAV(t, 44100, 1, []int{0, 16384, -16384, 32767})

	dec, err := NewWAVDecoder(path)
	if err != nil {
		t.Fatalf("Failed to open WAV: %v", err)
	}
	defer dec.Close()

	if dec.SampleRate() != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", dec.SampleRate())
	}
	if dec.NumChannels() != 1 {
		t.Errorf("Expected 1 channel, got %d", dec.NumChannels())
	}
	if dec.BitDepth() != 16 {
		t.Errorf("Expected 16-bit, got %d", dec.BitDepth())
	}

	chunk, err := dec.ReadChunk(16)
	if err != nil {
		t.Fatalf("ReadChunk failed: %v", err)
	}
	want := []float64{0, 0.5, -0.5, 1}
	if len(chunk) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(chunk))
	}
	for i := range want {
		if math.Abs(chunk[i]-want[i]) > 1e-3 {
			t.Errorf("Sample %d = %f, want %f", i, chunk[i], want[i])
		}
	}

	if _, err := dec.ReadChunk(16); err != io.EOF {
		t.Errorf("Expected io.EOF after last sample, got %v", err)
	}
}

func TestWAVDecoder_StereoDownmix(t *testing.T) {
	// L/R pairs
	path := writeWAV(t, 48000, 2, []int{16384, 0, -16384, -16384, 32767, -32767})

	dec, err := NewWAVDecoder(path)
	if err != nil {
		t.Fatalf("Failed to open WAV: %v", err)
	}
	defer dec.Close()

	chunk, err := dec.ReadChunk(8)
	if err != nil {
		t.Fatalf("ReadChunk failed: %v", err)
	}
	want := []float64{0.25, -0.5, 0}
	if len(chunk) != len(want) {
		t.Fatalf("Expected %d mono samples, got %d", len(want), len(chunk))
	}
	for i := range want {
		if math.Abs(chunk[i]-want[i]) > 1e-3 {
			t.Errorf("Sample %d = %f, want %f", i, chunk[i], want[i])
		}
	}
}

func TestWAVDecoder_MultipleChunks(t *testing.T) {
	data := make([]int, 1000)
	for i := range data {
		data[i] = int(10000 * math.Sin(2*math.Pi*float64(i)/50))
	}
	path := writeWAV(t, 44100, 1, data)

	dec, err := NewWAVDecoder(path)
	if err != nil {
		t.Fatalf("Failed to open WAV: %v", err)
	}
	defer dec.Close()

	total := 0
	chunks := 0
	for {
		chunk, err := dec.ReadChunk(256)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Error reading chunk %d: %v", chunks, err)
		}
		if len(chunk) > 256 {
			t.Errorf("Chunk %d has %d samples, more than requested", chunks, len(chunk))
		}
		for i, s := range chunk {
			if s < -1 || s > 1 {
				t.Errorf("Chunk %d sample %d out of range: %f", chunks, i, s)
			}
		}
		total += len(chunk)
		chunks++
	}

	if total != len(data) {
		t.Errorf("Read %d samples, want %d", total, len(data))
	}
	t.Logf("Read %d samples in %d chunks", total, chunks)
}

func TestNewWAVDecoder_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := NewWAVDecoder(path); err == nil {
		t.Error("Expected error for invalid WAV, got nil")
	}
}
