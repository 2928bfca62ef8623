package forensic

import (
	"context"
	"fmt"
	"image"

	"github.com/corona10/goimagehash"

	"veridoc/internal/asset"
)

const copyMoveCheckName = "copymove"

const (
	copyMoveMaxDim    = 1024
	copyMoveBlockSize = 16
	copyMoveSampleCap = 512

	// copyMoveHashDistance is the maximum average-hash Hamming distance at
	// which two blocks count as duplicates.
	copyMoveHashDistance = 2

	// copyMoveFlatVariance excludes near-uniform blocks: blank paper matches
	// blank paper everywhere and says nothing about cloning.
	copyMoveFlatVariance = 4.0

	// copyMoveMinGap is the minimum Chebyshev distance, in blocks, between a
	// pair. Adjacent blocks share natural texture and never count.
	copyMoveMinGap = 2

	copyMoveThresholdPhoto = 0.05
	copyMoveThresholdScan  = 0.12
)

// copyMoveBucket maps a duplicate ratio floor to its penalty step.
type copyMoveBucket struct {
	ratio   float64
	penalty float64
}

// Scanned documents legitimately repeat letterforms and rule lines, so their
// buckets sit much higher.
var (
	copyMovePhotoBuckets = []copyMoveBucket{{0.50, 7.0}, {0.25, 3.5}, {0.10, 1.5}}
	copyMoveScanBuckets  = []copyMoveBucket{{0.70, 7.0}, {0.45, 3.5}, {0.25, 1.5}}
)

// CopyMoveCheck detects cloned regions: the page is cut into blocks, each
// block gets a perceptual hash, and non-adjacent block pairs with matching
// hashes count as duplicates. A high duplicate share means content was
// stamped from one part of the page onto another.
type CopyMoveCheck struct{}

func (CopyMoveCheck) Name() string { return copyMoveCheckName }

func (CopyMoveCheck) Applies(*asset.Document) bool { return true }

func (CopyMoveCheck) Run(ctx context.Context, doc *asset.Document) Result {
	page, ok := doc.FirstPage()
	if !ok {
		return Neutral(copyMoveCheckName, "no decodable raster page")
	}
	scanned := Classify(page.Image) == ClassScanned
	gray := downsampleGray(toGray(page.Image), copyMoveMaxDim)

	blocks := hashBlocks(gray)
	if len(blocks) < 8 {
		return Neutral(copyMoveCheckName, "page too small for block analysis")
	}

	var compared, duplicates int
	for i := range blocks {
		if ctx.Err() != nil {
			return Neutral(copyMoveCheckName, "analysis cancelled")
		}
		for j := i + 1; j < len(blocks); j++ {
			if blockGap(blocks[i], blocks[j]) < copyMoveMinGap {
				continue
			}
			compared++
			d, err := blocks[i].hash.Distance(blocks[j].hash)
			if err == nil && d <= copyMoveHashDistance {
				duplicates++
			}
		}
	}
	if compared == 0 {
		return Neutral(copyMoveCheckName, "no comparable block pairs")
	}

	ratio := float64(duplicates) / float64(compared)
	threshold := copyMoveThresholdPhoto
	if scanned {
		threshold = copyMoveThresholdScan
	}
	suspicious := ratio > threshold

	detail := map[string]any{
		"scanned":         scanned,
		"blocks":          len(blocks),
		"compared_pairs":  compared,
		"duplicate_pairs": duplicates,
	}
	if suspicious {
		detail["flag"] = fmt.Sprintf("%.1f%% of block pairs duplicated", ratio*100)
	}

	return Result{
		Name:       copyMoveCheckName,
		Score:      (1 - ratio) * 100,
		Suspicious: suspicious,
		Confidence: ratio,
		Detail:     detail,
	}
}

// Penalty grades the duplicate ratio through the class-specific buckets.
func (CopyMoveCheck) Penalty(r Result) float64 {
	if !r.Suspicious || r.Confidence <= 0 {
		return 0
	}
	scanned, _ := r.Detail["scanned"].(bool)
	buckets := copyMovePhotoBuckets
	if scanned {
		buckets = copyMoveScanBuckets
	}
	for _, b := range buckets {
		if r.Confidence >= b.ratio {
			return b.penalty
		}
	}
	return 0
}

// hashedBlock is one sampled block with its grid position and perceptual
// hash.
type hashedBlock struct {
	bx, by int
	hash   *goimagehash.ImageHash
}

// hashBlocks partitions the plane into a block grid, samples at most
// copyMoveSampleCap blocks evenly, drops flat blocks, and hashes the rest.
func hashBlocks(g *image.Gray) []hashedBlock {
	b := g.Bounds()
	cols := b.Dx() / copyMoveBlockSize
	rows := b.Dy() / copyMoveBlockSize
	total := cols * rows
	if total == 0 {
		return nil
	}
	step := 1
	if total > copyMoveSampleCap {
		step = (total + copyMoveSampleCap - 1) / copyMoveSampleCap
	}

	blocks := make([]hashedBlock, 0, min(total, copyMoveSampleCap))
	idx := -1
	for by := 0; by < rows; by++ {
		for bx := 0; bx < cols; bx++ {
			idx++
			if idx%step != 0 {
				continue
			}
			x0 := bx * copyMoveBlockSize
			y0 := by * copyMoveBlockSize
			if blockVariance(g, x0, y0, copyMoveBlockSize) < copyMoveFlatVariance {
				continue
			}
			tile := image.NewGray(image.Rect(0, 0, copyMoveBlockSize, copyMoveBlockSize))
			for y := 0; y < copyMoveBlockSize; y++ {
				copy(tile.Pix[y*tile.Stride:y*tile.Stride+copyMoveBlockSize],
					g.Pix[(y0+y)*g.Stride+x0:(y0+y)*g.Stride+x0+copyMoveBlockSize])
			}
			hash, err := goimagehash.AverageHash(tile)
			if err != nil {
				continue
			}
			blocks = append(blocks, hashedBlock{bx: bx, by: by, hash: hash})
		}
	}
	return blocks
}

// blockGap is the Chebyshev distance between two blocks on the grid.
func blockGap(a, b hashedBlock) int {
	dx := a.bx - b.bx
	if dx < 0 {
		dx = -dx
	}
	dy := a.by - b.by
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}
