package meter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linuxmatters/jivemeter/internal/analysis"
	"github.com/linuxmatters/jivemeter/internal/audio"
	"github.com/linuxmatters/jivemeter/internal/config"
)

// ScopePoints is the number of waveform points carried in each Snapshot
const ScopePoints = config.MeterWidth

// BandLevel is the state of one band after a frame
type BandLevel struct {
	Label    string
	LowHz    float64
	HighHz   float64
	Isolated bool

	// Raw tracker outputs
	Value float64
	Peak  float64
	Max   float64
	Min   float64

	// Value and peak normalised to [0, 1] against the band's ceiling
	Level     float64
	PeakLevel float64

	// Dominant frequency in Hz, 0 when the band is silent
	Frequency int
}

// Snapshot is the analysis state between two frames
type Snapshot struct {
	Frame   int
	Elapsed time.Duration // audio time at the end of this frame

	Bands []BandLevel

	// Shared ceiling and floor across non-isolated bands
	Max float64
	Min float64

	// Auto-levelled sample range
	SampleMax float64
	SampleMin float64

	// Waveform from the trigger index, normalised to [-1, 1]
	TriggerIndex int
	Scope        []float64
}

// Clone returns a copy that does not share slices with the session
func (s Snapshot) Clone() Snapshot {
	s.Bands = append([]BandLevel(nil), s.Bands...)
	s.Scope = append([]float64(nil), s.Scope...)
	return s
}

// BandSummary holds lifetime statistics for one band
type BandSummary struct {
	Label         string
	LowHz         float64
	HighHz        float64
	PeakValue     float64 // highest value seen
	PeakFrequency int     // dominant frequency when PeakValue was seen
	MeanValue     float64
	MinValue      float64 // lifetime minimum
}

// Summary holds the results of a completed session
type Summary struct {
	Frames       int
	SampleSize   int
	SampleRate   int
	Duration     time.Duration // audio time processed
	AnalysisTime time.Duration // wall time spent
	GlobalMax    float64       // highest shared ceiling seen
	Bands        []BandSummary
}

// Session streams one decoder through an analysis built from a layout.
type Session struct {
	dec        audio.AudioDecoder
	analysis   *analysis.AudioFrequencyAnalysis
	ranges     []*analysis.FrequencyRange
	bands      []config.Band
	sampleSize int
	sampleRate int

	// Realtime paces frames to the audio clock
	Realtime bool

	// Every calls the snapshot callback on every Nth frame (default 1)
	Every int
}

// NewSession builds the analysis for dec's sample rate. The session does
// not take ownership of dec.
func NewSession(dec audio.AudioDecoder, layout *config.Layout) (*Session, error) {
	if dec == nil {
		return nil, fmt.Errorf("nil decoder")
	}
	rate := dec.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}

	a, ranges, err := Build(layout, rate)
	if err != nil {
		return nil, err
	}

	return &Session{
		dec:        dec,
		analysis:   a,
		ranges:     ranges,
		bands:      layout.Bands,
		sampleSize: layout.GetSampleSize(),
		sampleRate: rate,
		Every:      1,
	}, nil
}

// Analysis exposes the underlying tracker, for inspection between frames
func (s *Session) Analysis() *analysis.AudioFrequencyAnalysis {
	return s.analysis
}

// FrameDuration returns the audio time covered by one frame
func (s *Session) FrameDuration() time.Duration {
	return time.Duration(s.sampleSize) * time.Second / time.Duration(s.sampleRate)
}

// Run decodes the input on a producer goroutine and analyses it frame by
// frame on the calling goroutine, calling fn between frames. fn must not
// retain the Snapshot's slices beyond the call.
func (s *Session) Run(ctx context.Context, fn func(Snapshot)) (Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	summary := Summary{
		SampleSize: s.sampleSize,
		SampleRate: s.sampleRate,
		Bands:      make([]BandSummary, len(s.ranges)),
	}
	for i, b := range s.bands {
		summary.Bands[i] = BandSummary{Label: b.Label(), LowHz: b.LowHz, HighHz: b.HighHz}
	}
	sums := make([]float64, len(s.ranges))

	buf := audio.NewCaptureBuffer(s.sampleSize * 16)
	buf.SetHighWater(s.sampleSize * 8)

	capErr := make(chan error, 1)
	go func() {
		capErr <- audio.Capture(ctx, s.dec, buf, s.sampleSize)
	}()

	// Stop the producer and wait for it on every exit path
	finish := func(err error) (Summary, error) {
		cancel()
		buf.Close()
		<-capErr
		summary.Duration = time.Duration(summary.Frames) * s.FrameDuration()
		for i := range summary.Bands {
			if summary.Frames > 0 {
				summary.Bands[i].MeanValue = sums[i] / float64(summary.Frames)
			}
			summary.Bands[i].MinValue = s.ranges[i].Min()
		}
		return summary, err
	}

	var ticker *time.Ticker
	if s.Realtime {
		ticker = time.NewTicker(s.FrameDuration())
		defer ticker.Stop()
	}

	every := max(s.Every, 1)
	frame := make([]int32, s.sampleSize)
	start := time.Now()
	snap := Snapshot{
		Bands: make([]BandLevel, len(s.ranges)),
		Scope: make([]float64, ScopePoints),
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		err := buf.ReadFrame(frame)
		if errors.Is(err, audio.ErrBufferClosed) {
			break
		}
		if err != nil {
			return finish(err)
		}

		if err := s.analysis.Loop(frame, s.sampleSize, s.sampleRate); err != nil {
			return finish(fmt.Errorf("frame %d: %w", summary.Frames, err))
		}
		summary.Frames++
		summary.AnalysisTime = time.Since(start)

		if m := s.analysis.Max(); m > summary.GlobalMax {
			summary.GlobalMax = m
		}
		for i, r := range s.ranges {
			v := r.Value()
			sums[i] += v
			if v > summary.Bands[i].PeakValue {
				summary.Bands[i].PeakValue = v
				summary.Bands[i].PeakFrequency = r.MaxFrequency()
			}
		}

		if fn != nil && summary.Frames%every == 0 {
			s.fill(&snap, summary.Frames)
			fn(snap)
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return finish(ctx.Err())
			case <-ticker.C:
			}
		}
	}

	return finish(nil)
}

// fill copies the current analysis state into snap, reusing its slices.
func (s *Session) fill(snap *Snapshot, frame int) {
	a := s.analysis

	snap.Frame = frame
	snap.Elapsed = time.Duration(frame) * s.FrameDuration()
	snap.Max = a.Max()
	snap.Min = a.Min()
	snap.SampleMax = a.SampleMax()
	snap.SampleMin = a.SampleMin()

	for i, r := range s.ranges {
		snap.Bands[i] = BandLevel{
			Label:     s.bands[i].Label(),
			LowHz:     r.LowHz(),
			HighHz:    r.HighHz(),
			Isolated:  r.Isolated(),
			Value:     r.Value(),
			Peak:      r.Peak(),
			Max:       r.Max(),
			Min:       r.Min(),
			Level:     r.ValueIn(0, 1),
			PeakLevel: r.PeakIn(0, 1),
			Frequency: r.MaxFrequency(),
		}
	}

	// Half a frame from the trigger point, resampled to the scope width
	trigger := a.SampleTriggerIndex()
	snap.TriggerIndex = trigger
	span := s.sampleSize / 2
	for i := range snap.Scope {
		idx := trigger + i*span/len(snap.Scope)
		snap.Scope[i] = a.NormalizedSample(idx, -1, 1)
	}
}
