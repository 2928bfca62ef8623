package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "ACME LIMITED", b: "ACME LIMITED", want: 1},
		{name: "case insensitive", a: "acme limited", b: "ACME LIMITED", want: 1},
		{name: "whitespace collapsed", a: "  ACME   LIMITED ", b: "ACME LIMITED", want: 1},
		{name: "punctuation folded", a: "E. & C. HOLDEN LIMITED", b: "E & C HOLDEN LIMITED", want: 1},
		{name: "apostrophe folded", a: "O'BRIEN LIMITED", b: "OBRIEN LIMITED", want: 1},
		{name: "abbreviated suffix", a: "ACME LTD", b: "ACME LIMITED", want: 0.8},
		{name: "no overlap", a: "abc", b: "xyz", want: 0},
		{name: "left empty", a: "", b: "ACME", want: 0},
		{name: "right empty", a: "ACME", b: "", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "punctuation only is empty", a: "...", b: "ACME", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"ACME LTD", "ACME LIMITED"},
		{"E & C HOLDEN LIMITED", "E. & C. HOLDEN LTD"},
		{"12 HIGH STREET LONDON", "12 HIGH ST, LONDON"},
		{"", "something"},
	}

	for _, p := range pairs {
		assert.Equal(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]), "Ratio(%q,%q)", p[0], p[1])
	}
}

func TestRatioBounds(t *testing.T) {
	inputs := []string{"", "a", "ACME LIMITED", "E. & C. HOLDEN", "123 456", "日本株式会社"}

	for _, a := range inputs {
		for _, b := range inputs {
			r := Ratio(a, b)
			require.GreaterOrEqual(t, r, 0.0)
			require.LessOrEqual(t, r, 1.0)
		}
	}
}

func TestWeightedStrict(t *testing.T) {
	tests := []struct {
		name string
		sim  float64
		want float64
	}{
		{name: "perfect", sim: 1.0, want: 1.0},
		{name: "at ceiling keeps full weight", sim: 0.98, want: 0.98},
		{name: "mid band scales hard", sim: 0.95, want: 0.59375},
		{name: "mid floor zeroes out", sim: 0.90, want: 0},
		{name: "low band just under mid floor", sim: 0.89, want: 0.8455},
		{name: "low band midpoint", sim: 0.80, want: 0.40},
		{name: "low floor", sim: 0.70, want: 0},
		{name: "below low floor clamps", sim: 0.50, want: 0},
		{name: "zero", sim: 0, want: 0},
		{name: "negative clamps", sim: -0.5, want: 0},
		{name: "above one clamps", sim: 1.5, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Weighted(tt.sim, Strict), 1e-9)
		})
	}
}

func TestWeightedLenient(t *testing.T) {
	tests := []struct {
		name string
		sim  float64
		want float64
	}{
		{name: "high keeps full weight", sim: 0.8, want: 0.8},
		{name: "at full floor", sim: 0.5, want: 0.5},
		{name: "mid band", sim: 0.4, want: 0.36},
		{name: "at mid floor", sim: 0.3, want: 0.27},
		{name: "low band", sim: 0.2, want: 0.14},
		{name: "zero", sim: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Weighted(tt.sim, Lenient), 1e-9)
		})
	}
}

func TestWeightedExact(t *testing.T) {
	assert.InDelta(t, 0.5, Weighted(0.5, Exact), 1e-9)
	assert.InDelta(t, 0.97, Weighted(0.97, Exact), 1e-9)
	assert.InDelta(t, 1.0, Weighted(1.2, Exact), 1e-9)
}

// The strict curve is piecewise: monotone within each band, with a deliberate
// drop at the 0.90 boundary where the mid band resets to zero. Callers above
// rely on the band boundaries, so each band is asserted separately.
func TestWeightedStrictMonotonePerBand(t *testing.T) {
	bands := []struct {
		name string
		lo   float64
		hi   float64
	}{
		{name: "low band", lo: 0.0, hi: 0.8999},
		{name: "mid band", lo: 0.90, hi: 0.9799},
		{name: "top band", lo: 0.98, hi: 1.0},
	}

	for _, band := range bands {
		t.Run(band.name, func(t *testing.T) {
			prev := Weighted(band.lo, Strict)
			for sim := band.lo; sim <= band.hi; sim += 0.0001 {
				w := Weighted(sim, Strict)
				require.GreaterOrEqual(t, w+1e-12, prev, "sim=%f", sim)
				prev = w
			}
		})
	}
}

func TestWeightedLenientNeverBelowStrict(t *testing.T) {
	for sim := 0.0; sim <= 1.0; sim += 0.001 {
		strict := Weighted(sim, Strict)
		lenient := Weighted(sim, Lenient)
		require.GreaterOrEqual(t, lenient+1e-12, strict, "sim=%f", sim)
	}
}
