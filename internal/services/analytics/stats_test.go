package analytics

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("empty mean = %v, want 0", got)
	}
	if got := Mean([]float64{1, 2, 3, 4}); !almostEqual(got, 2.5) {
		t.Fatalf("mean = %v, want 2.5", got)
	}
}

func TestSampleStdDev(t *testing.T) {
	if got := SampleStdDev([]float64{42}); got != 0 {
		t.Fatalf("single-point stddev = %v, want 0", got)
	}
	// sample variance of [1,2,3,4] is 5/3
	got := SampleStdDev([]float64{1, 2, 3, 4})
	want := math.Sqrt(5.0 / 3.0)
	if !almostEqual(got, want) {
		t.Fatalf("stddev = %v, want %v", got, want)
	}
	if got := SampleStdDev([]float64{50, 100, 150}); !almostEqual(got, 50) {
		t.Fatalf("stddev = %v, want 50", got)
	}
}

func TestSlope(t *testing.T) {
	if got := Slope([]float64{7}); got != 0 {
		t.Fatalf("single-point slope = %v, want 0", got)
	}
	if got := Slope([]float64{1, 2, 3}); !almostEqual(got, 1) {
		t.Fatalf("slope = %v, want 1", got)
	}
	if got := Slope([]float64{5, 5, 5, 5}); !almostEqual(got, 0) {
		t.Fatalf("flat slope = %v, want 0", got)
	}
	if got := Slope([]float64{100, 150, 60}); !almostEqual(got, -20) {
		t.Fatalf("slope = %v, want -20", got)
	}
}
