package forensic

import "image"

// PageClass describes how a page image was captured. Scanned pages (flatbed
// scans, screenshots, rendered PDFs) have very different noise and histogram
// statistics from camera photographs, so several checks pick their thresholds
// by class.
type PageClass string

const (
	// ClassScanned marks flat, low-chroma pages typical of scanners and
	// rendered documents.
	ClassScanned PageClass = "scanned"

	// ClassPhotographic marks pages with natural chroma and lighting
	// variation typical of camera capture.
	ClassPhotographic PageClass = "photographic"
)

// classifySampleDim bounds the classification sample so huge pages do not
// dominate check runtime.
const classifySampleDim = 256

// lowChromaShareFloor is the fraction of sampled pixels that must be
// near-achromatic for a page to classify as scanned.
const lowChromaShareFloor = 0.92

// Classify decides whether a page looks scanned or photographed. Grayscale
// sources are scans by definition. Color sources classify on the share of
// low-saturation pixels: document scans are overwhelmingly near-achromatic
// while photographs carry chroma from lighting and surroundings.
func Classify(img image.Image) PageClass {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return ClassScanned
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return ClassScanned
	}

	stepX := max(1, w/classifySampleDim)
	stepY := max(1, h/classifySampleDim)

	var sampled, lowChroma int
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			r, g, bl, _ := img.At(x, y).RGBA()
			_, s, v := rgbToHSV(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			sampled++
			// Dark pixels carry no usable chroma signal either way.
			if s < 0.12 || v < 0.08 {
				lowChroma++
			}
		}
	}
	if sampled == 0 {
		return ClassScanned
	}
	if float64(lowChroma)/float64(sampled) >= lowChromaShareFloor {
		return ClassScanned
	}
	return ClassPhotographic
}
