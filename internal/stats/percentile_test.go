package stats

import (
	"math"
	"testing"
)

func TestP90_EvenlySpaced(t *testing.T) {
	values := []float64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}
	got, ok := P90(values)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if got != 910 {
		t.Errorf("P90 = %v, want 910", got)
	}
}

func TestP90_OrderIndependent(t *testing.T) {
	shuffled := []float64{700, 100, 1000, 300, 900, 200, 600, 500, 800, 400}
	got, _ := P90(shuffled)
	if got != 910 {
		t.Errorf("P90 = %v, want 910", got)
	}
	if shuffled[0] != 700 {
		t.Error("P90 must not reorder its input")
	}
}

func TestP90_SingleAndEmpty(t *testing.T) {
	if got, ok := P90([]float64{4321}); !ok || got != 4321 {
		t.Errorf("P90(single) = %v, %v; want 4321, true", got, ok)
	}
	if _, ok := P90(nil); ok {
		t.Error("P90(empty) should have no estimate")
	}
}

func TestP90_TwoValues(t *testing.T) {
	got, _ := P90([]float64{10, 20})
	if math.Abs(got-19) > 1e-9 {
		t.Errorf("P90 = %v, want 19", got)
	}
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		values []float64
		k, n   int
		want   float64
	}{
		{[]float64{1, 2, 3, 4, 5}, 1, 2, 3},
		{[]float64{1, 2, 3, 4}, 1, 4, 1.75},
		{[]float64{1, 2, 3, 4}, 3, 4, 3.25},
	}
	for _, tt := range tests {
		got, ok := Quantile(tt.values, tt.k, tt.n)
		if !ok || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Quantile(%v, %d, %d) = %v, %v; want %v", tt.values, tt.k, tt.n, got, ok, tt.want)
		}
	}

	if _, ok := Quantile([]float64{1, 2}, 0, 10); ok {
		t.Error("k=0 should be rejected")
	}
}

func TestNearestRank(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	if got, _ := NearestRank(values, 0.9); got != 5 {
		t.Errorf("NearestRank(0.9) = %v, want 5", got)
	}
	if got, _ := NearestRank(values, 0); got != 1 {
		t.Errorf("NearestRank(0) = %v, want 1", got)
	}
	if _, ok := NearestRank(nil, 0.5); ok {
		t.Error("NearestRank(empty) should have no estimate")
	}
}
