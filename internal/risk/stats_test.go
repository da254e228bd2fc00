package risk

import (
	"math"
	"testing"
)

func TestDailyReturns(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		expected []float64
	}{
		{
			name:     "simple up and down",
			prices:   []float64{100, 110, 99},
			expected: []float64{0.1, -0.1},
		},
		{
			name:     "zero prices skipped",
			prices:   []float64{100, 0, 110},
			expected: []float64{},
		},
		{
			name:     "too short",
			prices:   []float64{100},
			expected: []float64{},
		},
		{
			name:     "empty",
			prices:   nil,
			expected: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dailyReturns(tt.prices)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d returns, got %d", len(tt.expected), len(got))
			}
			for i := range got {
				if math.Abs(got[i]-tt.expected[i]) > 1e-9 {
					t.Errorf("return %d: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestStdDev(t *testing.T) {
	// Classic example: mean 5, variance 4.
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := stdDev(values); math.Abs(got-2) > 1e-9 {
		t.Errorf("expected 2, got %v", got)
	}
	if got := stdDev(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %v", got)
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	// Constant returns have zero dispersion.
	rets := []float64{0.01, 0.01, 0.01}
	if got := annualizedVolatility(rets); got != 0 {
		t.Errorf("expected 0 for constant returns, got %v", got)
	}
	if got := annualizedVolatility(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %v", got)
	}
}

func TestBetaRequiresThirtyObservations(t *testing.T) {
	short := make([]float64, 29)
	long := make([]float64, 40)
	for i := range long {
		long[i] = float64(i%2)*0.02 - 0.01
	}

	if b := beta(short, long); b != nil {
		t.Errorf("expected nil beta below 30 stock observations, got %v", *b)
	}
	if b := beta(long, short); b != nil {
		t.Errorf("expected nil beta below 30 benchmark observations, got %v", *b)
	}
}

func TestBetaOfIdenticalSeriesIsOne(t *testing.T) {
	rets := make([]float64, 40)
	for i := range rets {
		rets[i] = float64(i%2)*0.02 - 0.01
	}

	b := beta(rets, rets)
	if b == nil {
		t.Fatal("expected non-nil beta")
	}
	if math.Abs(*b-1) > 1e-9 {
		t.Errorf("expected beta 1, got %v", *b)
	}
}

func TestBetaFlatBenchmark(t *testing.T) {
	stock := make([]float64, 40)
	bench := make([]float64, 40)
	for i := range stock {
		stock[i] = float64(i%2)*0.02 - 0.01
	}
	// Benchmark with zero variance cannot define beta.
	if b := beta(stock, bench); b != nil {
		t.Errorf("expected nil beta for flat benchmark, got %v", *b)
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		expected float64
	}{
		{
			name:     "peak to trough",
			prices:   []float64{100, 120, 60, 90},
			expected: 50,
		},
		{
			name:     "monotonic rise",
			prices:   []float64{100, 110, 120},
			expected: 0,
		},
		{
			name:     "empty",
			prices:   nil,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maxDrawdown(tt.prices); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
