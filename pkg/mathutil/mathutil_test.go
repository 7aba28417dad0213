package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{
			name:     "Round down",
			input:    123.454,
			expected: 123.45,
		},
		{
			name:     "Round up",
			input:    123.456,
			expected: 123.46,
		},
		{
			name:     "Already two decimals",
			input:    99.99,
			expected: 99.99,
		},
		{
			name:     "Negative value",
			input:    -0.005,
			expected: -0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Round(%f) = %f, expected %f", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{
			name:     "Simple mean",
			values:   []float64{1, 2, 3, 4},
			expected: 2.5,
		},
		{
			name:     "Single value",
			values:   []float64{42},
			expected: 42,
		},
		{
			name:     "Empty slice",
			values:   nil,
			expected: 0,
		},
		{
			name:     "Mixed signs",
			values:   []float64{-10, 10},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Mean(tt.values)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Mean(%v) = %f, expected %f", tt.values, result, tt.expected)
			}
		})
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		pct      float64
		expected float64
	}{
		{
			name:     "Median of odd count",
			values:   []float64{3, 1, 2},
			pct:      50,
			expected: 2,
		},
		{
			name:     "Median interpolates between order statistics",
			values:   []float64{1, 2, 3, 4},
			pct:      50,
			expected: 2.5,
		},
		{
			name:     "5th percentile of 1..100",
			values:   seq(1, 100),
			pct:      5,
			expected: 5.95,
		},
		{
			name:     "Zeroth percentile is the minimum",
			values:   []float64{9, 4, 7},
			pct:      0,
			expected: 4,
		},
		{
			name:     "Hundredth percentile is the maximum",
			values:   []float64{9, 4, 7},
			pct:      100,
			expected: 9,
		},
		{
			name:     "Single value",
			values:   []float64{13},
			pct:      5,
			expected: 13,
		},
		{
			name:     "Empty slice",
			values:   nil,
			pct:      5,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Percentile(tt.values, tt.pct)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Percentile(%v, %f) = %f, expected %f", tt.values, tt.pct, result, tt.expected)
			}
		})
	}
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	values := []float64{5, 1, 3}
	Percentile(values, 50)
	if values[0] != 5 || values[1] != 1 || values[2] != 3 {
		t.Errorf("Percentile mutated its input: %v", values)
	}
}

func seq(from, to int) []float64 {
	out := make([]float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, float64(i))
	}
	return out
}
