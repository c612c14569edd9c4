package indicator

import (
	"errors"
	"math"
	"testing"

	"github.com/newthinker/tickertalk/internal/core"
)

func TestSMA_Calculate(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}

	sma := SMA(prices, 3)

	// SMA(3) for [10,11,12,13,14,15]:
	// [0] = (10+11+12)/3 = 11
	// [1] = (11+12+13)/3 = 12
	// [2] = (12+13+14)/3 = 13
	// [3] = (13+14+15)/3 = 14

	expected := []float64{11, 12, 13, 14}

	if len(sma) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(sma))
	}

	for i, v := range expected {
		if sma[i] != v {
			t.Errorf("sma[%d] = %f, want %f", i, sma[i], v)
		}
	}
}

func TestSMA_NotEnoughData(t *testing.T) {
	if got := SMA([]float64{10, 11}, 5); len(got) != 0 {
		t.Errorf("expected empty slice, got %d values", len(got))
	}
	if got := SMA([]float64{10, 11}, 0); len(got) != 0 {
		t.Errorf("expected empty slice for zero period, got %d values", len(got))
	}
}

func TestLatestPrice(t *testing.T) {
	v, err := LatestPrice([]float64{1, 2, 3.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3.5 {
		t.Errorf("expected 3.5, got %f", v)
	}

	_, err = LatestPrice(nil)
	if !errors.Is(err, core.ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestSimpleMovingAverage_TrailingMean(t *testing.T) {
	closes := randomWalk(252, 7)

	for _, window := range []int{1, 5, 20, 50, 200, 252} {
		got, err := SimpleMovingAverage(closes, window)
		if err != nil {
			t.Fatalf("window %d: unexpected error: %v", window, err)
		}

		var sum float64
		for _, v := range closes[len(closes)-window:] {
			sum += v
		}
		want := sum / float64(window)
		if !almostEqual(got, want, 1e-9) {
			t.Errorf("window %d: got %f, want %f", window, got, want)
		}

		rolling := SMA(closes, window)
		if !almostEqual(got, rolling[len(rolling)-1], 1e-9) {
			t.Errorf("window %d: disagrees with rolling SMA", window)
		}
	}
}

func TestSimpleMovingAverage_InsufficientData(t *testing.T) {
	closes := []float64{1, 2, 3}

	for _, window := range []int{0, -1, 4} {
		_, err := SimpleMovingAverage(closes, window)
		if !errors.Is(err, core.ErrInsufficientData) {
			t.Errorf("window %d: expected ErrInsufficientData, got %v", window, err)
		}
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}
