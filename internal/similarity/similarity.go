// Package similarity scores how alike two free-text values are and maps that
// score through field-specific strictness curves. Legal names demand
// near-perfect matches; addresses drift legitimately and are judged gently.
package similarity

import (
	"strings"

	pstrings "veridoc/pkg/platform/strings"
)

// Strictness selects the similarity-to-weight curve for a field.
type Strictness string

const (
	// Exact applies no curve: the raw ratio is the contribution. Used for
	// pre-normalized identifiers and fields without a fraud profile.
	Exact Strictness = "exact"
	// Strict is for identity-critical fields. Anything below a near-perfect
	// match loses most of its weight.
	Strict Strictness = "strict"
	// Lenient is for fields expected to drift over time, like addresses.
	Lenient Strictness = "lenient"
)

// Ratio returns a longest-common-subsequence similarity in [0,1] over
// case-folded, whitespace-collapsed runes. Periods, commas, apostrophes and
// quotes are dropped before comparing: "E. & C. HOLDEN LIMITED" and
// "E & C HOLDEN LIMITED" name the same company. Reflexive and symmetric.
// Empty operands carry no signal and score 0.
func Ratio(a, b string) float64 {
	na := normalize(a)
	nb := normalize(b)

	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ra := []rune(na)
	rb := []rune(nb)
	common := lcsLength(ra, rb)
	return 2 * float64(common) / float64(len(ra)+len(rb))
}

func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '\'', '’', '"':
			return -1
		}
		return r
	}, s)
	return pstrings.CollapseWhitespaceLower(s)
}

// Weighted applies the strictness curve to a raw similarity and returns the
// effective contribution, clamped to [0,1]. The strict curve's published band
// boundaries are part of the scoring contract; see the curve constants below.
func Weighted(sim float64, strictness Strictness) float64 {
	if sim <= 0 {
		return 0
	}
	if sim > 1 {
		sim = 1
	}

	var factor float64
	switch strictness {
	case Strict:
		factor = strictFactor(sim)
	case Lenient:
		factor = lenientFactor(sim)
	default:
		factor = 1
	}

	weighted := sim * factor
	if weighted < 0 {
		return 0
	}
	if weighted > 1 {
		return 1
	}
	return weighted
}

// Strict curve bands. At and above the ceiling a name keeps full weight; in
// the mid band weight scales down hard; below the mid floor the low band
// formula applies.
const (
	strictCeiling  = 0.98
	strictMidFloor = 0.90
	strictLowFloor = 0.70
)

func strictFactor(sim float64) float64 {
	switch {
	case sim >= strictCeiling:
		return 1
	case sim >= strictMidFloor:
		return (sim - strictMidFloor) / (strictCeiling - strictMidFloor)
	default:
		f := (sim - strictLowFloor) / (strictMidFloor - strictLowFloor)
		if f < 0 {
			return 0
		}
		return f
	}
}

// Lenient curve: full weight above 0.5, mild penalties below.
const (
	lenientFullFloor = 0.5
	lenientMidFloor  = 0.3
)

func lenientFactor(sim float64) float64 {
	switch {
	case sim >= lenientFullFloor:
		return 1
	case sim >= lenientMidFloor:
		return 0.9
	default:
		return 0.7
	}
}

// lcsLength computes the longest-common-subsequence length with two rolling
// rows.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) > len(a) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}

	return prev[len(b)]
}
