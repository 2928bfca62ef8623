package forensic

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Shared pixel plumbing for the image-based checks. Everything operates on
// 8-bit luminance planes; checks convert once and hand the plane around.

// toGray converts any decoded image to an 8-bit luminance plane. Returns the
// input unchanged when it is already *image.Gray.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// Rec. 601 luma on 16-bit channel values.
			lum := (299*r + 587*g + 114*bl) / 1000
			gray.Pix[gray.PixOffset(x-b.Min.X, y-b.Min.Y)] = uint8(lum >> 8)
		}
	}
	return gray
}

// downsampleGray scales the plane so its longest side is at most maxDim,
// preserving aspect ratio. Planes already within bounds pass through.
func downsampleGray(g *image.Gray, maxDim int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	if longest <= maxDim || longest == 0 {
		return g
	}
	scale := float64(maxDim) / float64(longest)
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	dst := image.NewGray(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), g, b, xdraw.Src, nil)
	return dst
}

// meanAbsDiff averages |a-b| over two equally sized planes.
func meanAbsDiff(a, b *image.Gray) float64 {
	if len(a.Pix) == 0 || len(a.Pix) != len(b.Pix) {
		return 0
	}
	var sum uint64
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		sum += uint64(d)
	}
	return float64(sum) / float64(len(a.Pix))
}

// blockVariance computes the pixel variance of the size×size block whose
// top-left corner is (x0, y0).
func blockVariance(g *image.Gray, x0, y0, size int) float64 {
	var sum, sumSq float64
	for y := y0; y < y0+size; y++ {
		row := g.Pix[y*g.Stride+x0 : y*g.Stride+x0+size]
		for _, p := range row {
			v := float64(p)
			sum += v
			sumSq += v * v
		}
	}
	n := float64(size * size)
	mean := sum / n
	return sumSq/n - mean*mean
}

// meanAbsLaplacian is a cheap local noise estimator: the mean magnitude of a
// 4-neighbor Laplacian over the block interior. Smooth content scores near
// zero; sensor noise and dithering score high.
func meanAbsLaplacian(g *image.Gray, x0, y0, size int) float64 {
	var sum float64
	var n int
	for y := y0 + 1; y < y0+size-1; y++ {
		for x := x0 + 1; x < x0+size-1; x++ {
			c := int(g.Pix[y*g.Stride+x])
			l := 4*c - int(g.Pix[y*g.Stride+x-1]) - int(g.Pix[y*g.Stride+x+1]) -
				int(g.Pix[(y-1)*g.Stride+x]) - int(g.Pix[(y+1)*g.Stride+x])
			sum += math.Abs(float64(l))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// rgbToHSV converts 8-bit RGB to H in [0,360), S and V in [0,1].
func rgbToHSV(r, g, b uint8) (float64, float64, float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	delta := maxC - minC

	var h float64
	switch {
	case delta == 0:
		h = 0
	case maxC == rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case maxC == gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}

	var s float64
	if maxC > 0 {
		s = delta / maxC
	}
	return h, s, maxC
}
