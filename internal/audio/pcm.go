package audio

import "math"

// downmix averages interleaved integer frames into mono samples scaled by
// fullScale. Trailing values that do not form a whole frame are dropped.
func downmix(dst []float64, interleaved []int, channels int, fullScale float64) []float64 {
	if channels <= 0 || fullScale <= 0 {
		return dst[:0]
	}
	frames := len(interleaved) / channels
	dst = grow(dst, frames)

	if channels == 1 {
		for i := 0; i < frames; i++ {
			dst[i] = float64(interleaved[i]) / fullScale
		}
		return dst
	}

	for i := 0; i < frames; i++ {
		var sum int64
		for ch := 0; ch < channels; ch++ {
			sum += int64(interleaved[i*channels+ch])
		}
		dst[i] = float64(sum) / float64(channels) / fullScale
	}
	return dst
}

// ToInt32 converts normalised samples to full-scale signed 32-bit values,
// the format a 32-bit I2S capture delivers. Input outside [-1, 1] is clipped.
// dst is reused when it has enough capacity.
func ToInt32(dst []int32, src []float64) []int32 {
	if cap(dst) < len(src) {
		dst = make([]int32, len(src))
	}
	dst = dst[:len(src)]
	for i, s := range src {
		switch {
		case math.IsNaN(s):
			s = 0
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		dst[i] = int32(math.Round(s * math.MaxInt32))
	}
	return dst
}

func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}
