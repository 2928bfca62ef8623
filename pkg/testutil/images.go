package testutil

import (
	"image"
	"image/color"
	"image/draw"
)

// Synthetic image builders for forensic tests. All builders are deterministic:
// the same dimensions and seed always produce the same pixels, so assertions
// on derived scores stay stable across runs.

// splitmix64 is a tiny deterministic PRNG; good enough for pixel noise.
type splitmix64 uint64

func (s *splitmix64) next() uint64 {
	*s += 0x9e3779b97f4a7c15
	z := uint64(*s)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (s *splitmix64) byte() uint8 {
	return uint8(s.next() >> 56)
}

// FlatGray returns a uniform grayscale image. Re-encoding it is nearly
// lossless, so it reads as a pristine scan to most checks.
func FlatGray(w, h int, shade uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	return img
}

// NoiseGray returns grayscale pixel noise seeded deterministically.
func NoiseGray(w, h int, seed uint64) *image.Gray {
	rng := splitmix64(seed)
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = rng.byte()
	}
	return img
}

// NoiseRGBA returns full-color pixel noise. High per-pixel chroma keeps the
// page classifier on the photographic side.
func NoiseRGBA(w, h int, seed uint64) *image.RGBA {
	rng := splitmix64(seed)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: rng.byte(), G: rng.byte(), B: rng.byte(), A: 255})
		}
	}
	return img
}

// FlatRGBA returns a uniform color image.
func FlatRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// GradientGray returns a smooth horizontal luminance ramp: plenty of non-DC
// energy, nearly all of it low-frequency.
func GradientGray(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / max(1, w-1))})
		}
	}
	return img
}

// TiledGray fills the rows [0, bandHeight) with copies of a single noisy
// tile×tile patch over a noise background, simulating a region stamped across
// the page. Every tile carries identical pixels, so block matchers see a large
// family of non-adjacent duplicates.
func TiledGray(w, h, tile, bandHeight int, seed uint64) *image.Gray {
	img := NoiseGray(w, h, seed)
	patch := NoiseGray(tile, tile, seed+1)
	for y := 0; y+tile <= bandHeight && y+tile <= h; y += tile {
		for x := 0; x+tile <= w; x += tile {
			draw.Draw(img, image.Rect(x, y, x+tile, y+tile), patch, image.Point{}, draw.Src)
		}
	}
	return img
}

// PastePatch copies src onto dst at the given offset, in place.
func PastePatch(dst draw.Image, src image.Image, at image.Point) {
	b := src.Bounds()
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, src, b.Min, draw.Src)
}

// PosterizedRGBA returns color noise quantized to the given step, leaving the
// comb-shaped histogram typical of repeated save/quantize cycles.
func PosterizedRGBA(w, h int, step uint8, seed uint64) *image.RGBA {
	if step == 0 {
		step = 1
	}
	img := NoiseRGBA(w, h, seed)
	for i, p := range img.Pix {
		if i%4 == 3 {
			continue // alpha
		}
		img.Pix[i] = p - p%step
	}
	return img
}
