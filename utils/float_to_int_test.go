// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestClampFloat32(t *testing.T) {
	t.Parallel()

	nan := float32(math.NaN())
	tests := []struct {
		name  string
		input float32
		want  float32
	}{
		{"zero", 0, 0},
		{"in range", 0.25, 0.25},
		{"max", 1, 1},
		{"min", -1, -1},
		{"over max", 1.5, 1},
		{"under min", -100, -1},
		{"positive infinity", float32(math.Inf(1)), 1},
		{"negative infinity", float32(math.Inf(-1)), -1},
		{"nan", nan, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ClampFloat32(tt.input); got != tt.want {
				t.Errorf("ClampFloat32(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{name: "zero", input: 0.0, want: 0},
		{name: "max positive", input: 1.0, want: math.MaxInt16},
		{name: "max negative", input: -1.0, want: math.MinInt16},
		{name: "half positive", input: 0.5, want: 16383},
		{name: "half negative", input: -0.5, want: -16383},
		{name: "small positive", input: 0.001, want: 32},
		{name: "clamp over max", input: 1.5, want: math.MaxInt16},
		{name: "clamp way under min", input: -100.0, want: math.MinInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Float32ToInt16(tt.input)
			// Allow for rounding differences of ±1
			diff := math.Abs(float64(got) - float64(tt.want))

			if diff > 1 {
				t.Errorf("Float32ToInt16(%v) = %v, want %v (diff %v)",
					tt.input, got, tt.want, diff)
			}
		})
	}
}

func TestSilenceValues(t *testing.T) {
	t.Parallel()

	if got := Float32ToInt8(0); got != 0 {
		t.Errorf("Float32ToInt8(0) = %d, want 0", got)
	}
	if got := Float32ToInt64(0); got != 0 {
		t.Errorf("Float32ToInt64(0) = %d, want 0", got)
	}
	if got := Float32ToUint8(0); got != 0x80 {
		t.Errorf("Float32ToUint8(0) = %d, want 128", got)
	}
	if got := Float32ToUint16(0); got != 0x8000 {
		t.Errorf("Float32ToUint16(0) = %d, want 32768", got)
	}
	if got := Float32ToUint32(0); got != 0x80000000 {
		t.Errorf("Float32ToUint32(0) = %d, want 2^31", got)
	}
	if got := Float32ToUint64(0); got != 0x8000000000000000 {
		t.Errorf("Float32ToUint64(0) = %d, want 2^63", got)
	}
	if got := Float32ToFloat64(0); got != 0 {
		t.Errorf("Float32ToFloat64(0) = %v, want 0", got)
	}
}

func TestExtremes(t *testing.T) {
	t.Parallel()

	if got := Float32ToInt8(1); got != math.MaxInt8 {
		t.Errorf("Float32ToInt8(1) = %d, want %d", got, math.MaxInt8)
	}
	if got := Float32ToInt32(1); got != math.MaxInt32 {
		t.Errorf("Float32ToInt32(1) = %d, want %d", got, math.MaxInt32)
	}
	if got := Float32ToInt64(1); got != math.MaxInt64 {
		t.Errorf("Float32ToInt64(1) = %d, want %d", got, int64(math.MaxInt64))
	}
	if got := Float32ToInt64(-1); got != math.MinInt64 {
		t.Errorf("Float32ToInt64(-1) = %d, want %d", got, int64(math.MinInt64))
	}
	if got := Float32ToUint8(1); got != math.MaxUint8 {
		t.Errorf("Float32ToUint8(1) = %d, want %d", got, math.MaxUint8)
	}
	if got := Float32ToUint8(-1); got != 1 {
		t.Errorf("Float32ToUint8(-1) = %d, want 1", got)
	}
	if got := Float32ToUint64(1); got != math.MaxUint64 {
		t.Errorf("Float32ToUint64(1) = %d, want %d", got, uint64(math.MaxUint64))
	}
	if got := Float32ToUint16(float32(math.NaN())); got != 0x8000 {
		t.Errorf("Float32ToUint16(NaN) = %d, want silence", got)
	}
}

// TestFloat32ToInt16Monotonic tests that function is monotonic
func TestFloat32ToInt16Monotonic(t *testing.T) {
	t.Parallel()

	prev := Float32ToInt16(-1.0)

	for f := -0.99; f <= 1.0; f += 0.01 {
		curr := Float32ToInt16(float32(f))
		if curr < prev {
			t.Errorf("Float32ToInt16 not monotonic: f=%v gives %v, but previous was %v",
				f, curr, prev)
		}
		prev = curr
	}
}

func TestFloat32ToUint16Monotonic(t *testing.T) {
	t.Parallel()

	prev := Float32ToUint16(-1.0)

	for f := -0.99; f <= 1.0; f += 0.01 {
		curr := Float32ToUint16(float32(f))
		if curr < prev {
			t.Errorf("Float32ToUint16 not monotonic: f=%v gives %v, but previous was %v",
				f, curr, prev)
		}
		prev = curr
	}
}

// TestFloat32ToInt16Symmetry tests that conversion is symmetric
func TestFloat32ToInt16Symmetry(t *testing.T) {
	t.Parallel()

	testVals := []float32{0.1, 0.25, 0.5, 0.75, 0.9, 0.99, 1.0}

	for _, val := range testVals {
		pos := Float32ToInt16(val)
		neg := Float32ToInt16(-val)

		if math.Abs(float64(pos)+float64(neg)) > 1 {
			t.Errorf("Float32ToInt16 not symmetric: +%v=%v, -%v=%v",
				val, pos, val, neg)
		}
	}
}

// BenchmarkFloat32ToInt16Realistic simulates converting audio buffer
func BenchmarkFloat32ToInt16Realistic(b *testing.B) {
	floatSamples := make([]float32, 8000)
	int16Samples := make([]int16, 8000)

	for i := range floatSamples {
		floatSamples[i] = float32(math.Sin(float64(i) * 0.1))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		for j := range floatSamples {
			int16Samples[j] = Float32ToInt16(floatSamples[j])
		}
	}
}

// TestConversions_ZeroAllocs verifies no heap allocations on the hot path
func TestConversions_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	allocs := testing.AllocsPerRun(1000, func() {
		_ = Float32ToInt16(0.5)
		_ = Float32ToUint8(0.5)
		_ = Float32ToInt64(0.5)
		_ = Float32ToUint32(-0.5)
	})

	if allocs > 0 {
		t.Errorf("conversions allocated %v times, want 0", allocs)
	}
}
