package forensic

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"veridoc/pkg/testutil"
)

func TestClassify(t *testing.T) {
	t.Run("grayscale sources are scans", func(t *testing.T) {
		assert.Equal(t, ClassScanned, Classify(testutil.NoiseGray(64, 64, 3)))
		assert.Equal(t, ClassScanned, Classify(testutil.FlatGray(64, 64, 240)))
	})

	t.Run("achromatic color pages are scans", func(t *testing.T) {
		white := testutil.FlatRGBA(64, 64, color.RGBA{R: 245, G: 245, B: 245, A: 255})
		assert.Equal(t, ClassScanned, Classify(white))
	})

	t.Run("color noise is photographic", func(t *testing.T) {
		assert.Equal(t, ClassPhotographic, Classify(testutil.NoiseRGBA(64, 64, 3)))
	})

	t.Run("saturated flat color is photographic", func(t *testing.T) {
		red := testutil.FlatRGBA(64, 64, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		assert.Equal(t, ClassPhotographic, Classify(red))
	})
}
