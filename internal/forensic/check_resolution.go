package forensic

import (
	"context"
	"fmt"
	"image"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"

	"veridoc/internal/asset"
)

const resolutionCheckName = "resolution"

const (
	resolutionMaxDim     = 1024
	resolutionGrid       = 3
	resolutionRegionFlag = 20.0

	// resolutionShareFloor flags a region whose high-frequency share falls
	// below this fraction of the page median. Interpolated (upscaled) content
	// has almost no energy in the upper spectrum.
	resolutionShareFloor = 0.35

	// resolutionBlankEnergy separates blank regions, which carry no spectrum
	// at all, from textured ones.
	resolutionBlankEnergy = 1e-6
)

// ResolutionCheck looks for localized upscaling: the page is split into a
// 3x3 grid and each region's luminance rows are Fourier transformed. Regions
// whose high-frequency energy share sits far below the page median were
// rendered at a lower resolution than the rest.
type ResolutionCheck struct{}

func (ResolutionCheck) Name() string { return resolutionCheckName }

func (ResolutionCheck) Applies(*asset.Document) bool { return true }

func (ResolutionCheck) Run(_ context.Context, doc *asset.Document) Result {
	page, ok := doc.FirstPage()
	if !ok {
		return Neutral(resolutionCheckName, "no decodable raster page")
	}
	gray := downsampleGray(toGray(page.Image), resolutionMaxDim)

	b := gray.Bounds()
	regionW := b.Dx() / resolutionGrid
	regionH := b.Dy() / resolutionGrid
	if regionW < 16 || regionH < 16 {
		return Neutral(resolutionCheckName, "page too small for spectral analysis")
	}

	shares := make([]float64, 0, resolutionGrid*resolutionGrid)
	blank := make([]bool, 0, resolutionGrid*resolutionGrid)
	for gy := 0; gy < resolutionGrid; gy++ {
		for gx := 0; gx < resolutionGrid; gx++ {
			region := image.Rect(gx*regionW, gy*regionH, (gx+1)*regionW, (gy+1)*regionH)
			share, energy := highFreqShare(gray, region)
			shares = append(shares, share)
			blank = append(blank, energy < resolutionBlankEnergy)
		}
	}

	var textured []float64
	for i, share := range shares {
		if !blank[i] {
			textured = append(textured, share)
		}
	}
	if len(textured) < 3 {
		return Neutral(resolutionCheckName, "insufficient textured regions")
	}
	median := medianOf(textured)
	if median <= 0 {
		return Neutral(resolutionCheckName, "no high-frequency content to compare")
	}

	var flagged int
	for i, share := range shares {
		if !blank[i] && share < resolutionShareFloor*median {
			flagged++
		}
	}

	score := 100 - resolutionRegionFlag*float64(flagged)
	if score < 0 {
		score = 0
	}
	detail := map[string]any{
		"regions":      len(shares),
		"flagged":      flagged,
		"median_share": median,
	}
	if flagged > 0 {
		detail["flag"] = fmt.Sprintf("%d region(s) with depressed high-frequency energy", flagged)
	}

	return Result{
		Name:       resolutionCheckName,
		Score:      score,
		Suspicious: flagged >= 1,
		Confidence: 1,
		Detail:     detail,
	}
}

func (ResolutionCheck) Penalty(r Result) float64 {
	if r.Suspicious {
		return 2.0
	}
	return 0
}

// highFreqShare transforms each row of the region and returns the share of
// spectral energy above half the Nyquist band, plus the total non-DC energy.
func highFreqShare(g *image.Gray, region image.Rectangle) (float64, float64) {
	w := region.Dx()
	fft := fourier.NewFFT(w)
	row := make([]float64, w)
	coeffs := make([]complex128, w/2+1)

	var hf, total float64
	for y := region.Min.Y; y < region.Max.Y; y++ {
		base := y*g.Stride + region.Min.X
		for x := 0; x < w; x++ {
			row[x] = float64(g.Pix[base+x])
		}
		coeffs = fft.Coefficients(coeffs, row)
		for k := 1; k < len(coeffs); k++ {
			e := cmplx.Abs(coeffs[k])
			e *= e
			total += e
			if k > w/4 {
				hf += e
			}
		}
	}
	if total <= 0 {
		return 0, 0
	}
	return hf / total, total
}

func medianOf(vals []float64) float64 {
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
