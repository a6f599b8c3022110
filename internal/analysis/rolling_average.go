package analysis

// MaxRollingAverageWindow bounds the number of values a RollingAverage can hold
const MaxRollingAverageWindow = 50

// RollingAverage is a fixed capacity circular buffer that keeps the mean of
// the most recently added values. It never allocates after construction.
type RollingAverage struct {
	window int
	index  int
	count  int
	sum    float64
	values [MaxRollingAverageWindow]float64
}

// NewRollingAverage creates a rolling average over the given window
func NewRollingAverage(window int) *RollingAverage {
	r := &RollingAverage{}
	r.Resize(window)
	return r
}

// Resize resets the average and sets a new window length.
// Windows outside [1, MaxRollingAverageWindow] are clamped.
func (r *RollingAverage) Resize(window int) {
	if window < 1 {
		window = 1
	}
	if window > MaxRollingAverageWindow {
		window = MaxRollingAverageWindow
	}
	r.window = window
	r.index = 0
	r.count = 0
	r.sum = 0
	for i := range r.values {
		r.values[i] = 0
	}
}

// AddValue overwrites the oldest value and returns the updated average
func (r *RollingAverage) AddValue(v float64) float64 {
	if r.window == 0 {
		r.Resize(MaxRollingAverageWindow)
	}

	r.sum -= r.values[r.index]
	r.values[r.index] = v
	r.sum += v

	r.index = (r.index + 1) % r.window
	if r.count < r.window {
		r.count++
	}

	return r.Average()
}

// Average returns the mean of the stored values, or 1 when nothing has been
// added yet so callers can divide by it safely.
func (r *RollingAverage) Average() float64 {
	if r.count == 0 {
		return 1
	}
	return r.sum / float64(r.count)
}

// Count returns how many values currently contribute to the average
func (r *RollingAverage) Count() int {
	return r.count
}

// Window returns the configured window length
func (r *RollingAverage) Window() int {
	return r.window
}
