package forensic

import (
	"context"
	"fmt"
	"math"

	"veridoc/internal/asset"
)

const noiseCheckName = "noise"

const (
	noiseMaxDim    = 1024
	noiseBlockSize = 16

	// Sensor noise is uniform across a genuine capture. A high coefficient
	// of variation across block noise levels means regions with different
	// noise floors were composited together.
	noiseCVPhoto = 1.10
	noiseCVScan  = 1.60

	// noiseMeanFloor guards the ratio: a page with essentially no noise
	// anywhere (synthetic flat render) has an undefined noise profile.
	noiseMeanFloor = 0.25
)

// NoiseCheck estimates per-block noise with a Laplacian response and flags
// pages whose noise floor varies too much from region to region.
type NoiseCheck struct{}

func (NoiseCheck) Name() string { return noiseCheckName }

func (NoiseCheck) Applies(*asset.Document) bool { return true }

func (NoiseCheck) Run(_ context.Context, doc *asset.Document) Result {
	page, ok := doc.FirstPage()
	if !ok {
		return Neutral(noiseCheckName, "no decodable raster page")
	}
	scanned := Classify(page.Image) == ClassScanned
	gray := downsampleGray(toGray(page.Image), noiseMaxDim)

	b := gray.Bounds()
	var levels []float64
	for y := 0; y+noiseBlockSize <= b.Dy(); y += noiseBlockSize {
		for x := 0; x+noiseBlockSize <= b.Dx(); x += noiseBlockSize {
			levels = append(levels, meanAbsLaplacian(gray, x, y, noiseBlockSize))
		}
	}
	if len(levels) < 4 {
		return Neutral(noiseCheckName, "page too small for noise analysis")
	}

	var sum float64
	for _, l := range levels {
		sum += l
	}
	mean := sum / float64(len(levels))
	if mean < noiseMeanFloor {
		return Neutral(noiseCheckName, "page too smooth for noise analysis")
	}

	var sq float64
	for _, l := range levels {
		d := l - mean
		sq += d * d
	}
	cv := math.Sqrt(sq/float64(len(levels))) / mean

	ceiling := noiseCVPhoto
	if scanned {
		ceiling = noiseCVScan
	}
	suspicious := cv > ceiling

	detail := map[string]any{
		"scanned":    scanned,
		"blocks":     len(levels),
		"mean_noise": mean,
		"cv":         cv,
	}
	if suspicious {
		detail["flag"] = fmt.Sprintf("noise variation %.2f exceeds %.2f", cv, ceiling)
	}

	return Result{
		Name:       noiseCheckName,
		Score:      100 - math.Min(100, cv*50),
		Suspicious: suspicious,
		Confidence: 1,
		Detail:     detail,
	}
}

func (NoiseCheck) Penalty(r Result) float64 {
	if r.Suspicious {
		return 2.0
	}
	return 0
}
