package forensic

import (
	"context"
	"image"
	"math"

	"veridoc/internal/asset"
)

const jpegQualityCheckName = "jpegquality"

// jpegQualityFloor is the estimated quality below which heavy re-compression
// is assumed.
const jpegQualityFloor = 30.0

// stdLuminanceQuant is the reference luminance quantization table from the
// JPEG standard, in the zig-zag order quantization tables are stored in the
// file. Comparing a file's table against it recovers the encode quality.
var stdLuminanceQuant = [64]float64{
	16, 11, 12, 14, 12, 10, 16, 14,
	13, 14, 18, 17, 16, 19, 24, 40,
	26, 24, 22, 22, 24, 49, 35, 37,
	29, 40, 58, 51, 61, 60, 57, 51,
	56, 55, 64, 72, 92, 78, 64, 68,
	87, 69, 55, 56, 80, 109, 81, 87,
	95, 98, 103, 104, 103, 62, 77, 113,
	121, 112, 100, 120, 92, 101, 103, 99,
}

// JPEGQualityCheck estimates the effective compression quality of the page.
// JPEG payloads get a direct read of the luminance quantization table; other
// formats fall back to the block variance estimator, where heavily quantized
// content shows uniformly low 8x8 variance.
type JPEGQualityCheck struct{}

func (JPEGQualityCheck) Name() string { return jpegQualityCheckName }

func (JPEGQualityCheck) Applies(*asset.Document) bool { return true }

func (JPEGQualityCheck) Run(_ context.Context, doc *asset.Document) Result {
	detail := map[string]any{}

	quality := -1.0
	method := ""

	if table, ok := jpegLuminanceDQT(doc.Bytes); ok {
		quality = qualityFromDQT(table)
		method = "dqt"
		detail["dqt_estimate"] = quality
	}

	if page, ok := doc.FirstPage(); ok {
		if est, blocks := blockVarianceQuality(toGray(page.Image)); blocks > 0 {
			detail["variance_estimate"] = est
			if method == "" {
				quality = est
				method = "block_variance"
			}
		}
	}

	if method == "" {
		return Neutral(jpegQualityCheckName, "no quantization table and no decodable page")
	}

	detail["method"] = method
	suspicious := quality < jpegQualityFloor
	if suspicious {
		detail["flag"] = "estimated quality below re-compression floor"
	}

	return Result{
		Name:       jpegQualityCheckName,
		Score:      quality,
		Suspicious: suspicious,
		Confidence: 1,
		Detail:     detail,
	}
}

func (JPEGQualityCheck) Penalty(r Result) float64 {
	if r.Suspicious {
		return 3.0
	}
	return 0
}

// blockVarianceQuality averages 8x8 block variance over the plane and scales
// it to a [0,100] quality proxy.
func blockVarianceQuality(g *image.Gray) (float64, int) {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	var total float64
	var n int
	for y := 0; y+8 <= h; y += 8 {
		for x := 0; x+8 <= w; x += 8 {
			total += blockVariance(g, x, y, 8)
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return math.Min(100, total/float64(n)), n
}

// jpegLuminanceDQT walks the JPEG marker stream and extracts the luminance
// (id 0) quantization table from the first DQT segment carrying it.
func jpegLuminanceDQT(raw []byte) ([64]byte, bool) {
	var table [64]byte
	if len(raw) < 4 || raw[0] != 0xFF || raw[1] != 0xD8 {
		return table, false
	}
	i := 2
	for i+2 <= len(raw) {
		if raw[i] != 0xFF {
			return table, false
		}
		marker := raw[i+1]
		switch {
		case marker == 0xFF:
			// fill byte
			i++
			continue
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			// standalone markers carry no length
			i += 2
			continue
		case marker == 0xD9 || marker == 0xDA:
			// EOI or start of scan: no further tables
			return table, false
		}
		if i+4 > len(raw) {
			return table, false
		}
		length := int(raw[i+2])<<8 | int(raw[i+3])
		if length < 2 || i+2+length > len(raw) {
			return table, false
		}
		if marker == 0xDB {
			seg := raw[i+4 : i+2+length]
			for j := 0; j < len(seg); {
				precision := seg[j] >> 4
				id := seg[j] & 0x0F
				j++
				entryLen := 64
				if precision == 1 {
					entryLen = 128
				}
				if j+entryLen > len(seg) {
					break
				}
				if id == 0 {
					if precision == 0 {
						copy(table[:], seg[j:j+64])
					} else {
						for k := 0; k < 64; k++ {
							v := int(seg[j+2*k])<<8 | int(seg[j+2*k+1])
							if v > 255 {
								v = 255
							}
							table[k] = byte(v)
						}
					}
					return table, true
				}
				j += entryLen
			}
		}
		i += 2 + length
	}
	return table, false
}

// qualityFromDQT inverts the libjpeg quality scaling: recover the scale
// factor as the mean ratio against the reference table, then map it back to
// the 1..100 quality knob.
func qualityFromDQT(table [64]byte) float64 {
	var scale float64
	for i := range table {
		q := float64(table[i])
		if q < 1 {
			q = 1
		}
		scale += 100 * q / stdLuminanceQuant[i]
	}
	scale /= 64

	var quality float64
	if scale <= 100 {
		quality = (200 - scale) / 2
	} else {
		quality = 5000 / scale
	}
	return math.Max(1, math.Min(100, quality))
}
