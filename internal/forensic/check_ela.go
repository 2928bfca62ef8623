package forensic

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"math"

	"veridoc/internal/asset"
)

const elaCheckName = "ela"

// elaQuality is the re-encode quality. 90 keeps legitimate compression noise
// low while edited regions still diverge visibly.
const elaQuality = 90

// elaSuspicionLevel marks the error level above which the page is flagged.
const elaSuspicionLevel = 50.0

// ELACheck performs error level analysis: re-encode the page as JPEG and
// measure how far the round trip drifts from the original. Pages that have
// been edited and re-saved accumulate uneven compression error.
type ELACheck struct{}

func (ELACheck) Name() string { return elaCheckName }

// Applies accepts every document; pages missing at run time degrade to a
// neutral result.
func (ELACheck) Applies(*asset.Document) bool { return true }

func (ELACheck) Run(_ context.Context, doc *asset.Document) Result {
	page, ok := doc.FirstPage()
	if !ok {
		return Neutral(elaCheckName, "no decodable raster page")
	}

	gray := toGray(page.Image)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gray, &jpeg.Options{Quality: elaQuality}); err != nil {
		return Neutral(elaCheckName, fmt.Sprintf("re-encode failed: %v", err))
	}
	resaved, err := jpeg.Decode(&buf)
	if err != nil {
		return Neutral(elaCheckName, fmt.Sprintf("re-decode failed: %v", err))
	}

	diff := meanAbsDiff(gray, toGray(resaved))
	level := math.Min(100, diff*10)

	detail := map[string]any{
		"level":     level,
		"mean_diff": diff,
	}
	suspicious := level > elaSuspicionLevel
	if suspicious {
		detail["flag"] = fmt.Sprintf("error level %.0f exceeds %.0f", level, elaSuspicionLevel)
	}

	return Result{
		Name:       elaCheckName,
		Score:      100 - level,
		Suspicious: suspicious,
		Confidence: level / 100,
		Detail:     detail,
	}
}

func (ELACheck) Penalty(r Result) float64 {
	if r.Suspicious && r.Confidence > 0 {
		return 5.0
	}
	return 0
}
