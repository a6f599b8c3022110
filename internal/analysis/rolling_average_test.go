package analysis

import (
	"math"
	"testing"
)

// TestRollingAverage_Empty verifies an empty average reports 1, so callers
// dividing by it never hit zero.
func TestRollingAverage_Empty(t *testing.T) {
	r := NewRollingAverage(10)
	if got := r.Average(); got != 1 {
		t.Errorf("Average() on empty window = %f, want 1", got)
	}

	var zero RollingAverage
	if got := zero.Average(); got != 1 {
		t.Errorf("Average() on zero value = %f, want 1", got)
	}
	if got := zero.AddValue(4); got != 4 {
		t.Errorf("AddValue(4) on zero value = %f, want 4", got)
	}
	if zero.Window() != MaxRollingAverageWindow {
		t.Errorf("zero value window = %d, want %d", zero.Window(), MaxRollingAverageWindow)
	}
}

// TestRollingAverage_Window3 pushes more values than the window holds and
// checks the oldest value drops out.
func TestRollingAverage_Window3(t *testing.T) {
	r := NewRollingAverage(3)
	pushes := []float64{1, 2, 3, 4}
	want := []float64{1, 1.5, 2, 3}

	for i, v := range pushes {
		got := r.AddValue(v)
		if got != want[i] {
			t.Errorf("push %d (%.0f): average = %f, want %f", i, v, got, want[i])
		}
	}
	if r.Count() != 3 {
		t.Errorf("Count() = %d, want saturated at 3", r.Count())
	}
}

// TestRollingAverage_SteadyValue verifies that W pushes of the same value
// average to that value for every window length.
func TestRollingAverage_SteadyValue(t *testing.T) {
	for _, w := range []int{1, 2, 7, MaxRollingAverageWindow} {
		r := NewRollingAverage(w)
		// Fill with noise first so the steady pushes must evict it
		for i := 0; i < w; i++ {
			r.AddValue(float64(i * 13))
		}
		for i := 0; i < w; i++ {
			r.AddValue(2.5)
		}
		if got := r.Average(); math.Abs(got-2.5) > 1e-9 {
			t.Errorf("window %d: Average() = %f, want 2.5", w, got)
		}
	}
}

// TestRollingAverage_Resize checks that resizing clears state and clamps
// the window into the supported range.
func TestRollingAverage_Resize(t *testing.T) {
	r := NewRollingAverage(5)
	r.AddValue(10)
	r.AddValue(20)

	r.Resize(2)
	if r.Count() != 0 || r.Average() != 1 {
		t.Errorf("after Resize: Count() = %d, Average() = %f, want 0 and 1", r.Count(), r.Average())
	}
	if r.Window() != 2 {
		t.Errorf("Window() = %d, want 2", r.Window())
	}

	r.Resize(0)
	if r.Window() != 1 {
		t.Errorf("Resize(0) window = %d, want 1", r.Window())
	}
	r.Resize(MaxRollingAverageWindow + 100)
	if r.Window() != MaxRollingAverageWindow {
		t.Errorf("oversized Resize window = %d, want %d", r.Window(), MaxRollingAverageWindow)
	}
}
