package asset

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	t.Run("empty payload is an error", func(t *testing.T) {
		_, err := Load(nil, "")
		assert.ErrorIs(t, err, ErrEmptyAsset)
	})

	t.Run("decodes a PNG and sniffs its type", func(t *testing.T) {
		doc, err := Load(encodePNG(t, 24, 16), "")
		require.NoError(t, err)
		assert.Equal(t, "image/png", doc.MIME)
		assert.Equal(t, KindImage, doc.Kind())
		require.True(t, doc.HasPages())

		page, ok := doc.FirstPage()
		require.True(t, ok)
		assert.Equal(t, 24, page.Width)
		assert.Equal(t, 16, page.Height)
		assert.NoError(t, doc.DecodeErr)
	})

	t.Run("declared MIME wins over sniffing", func(t *testing.T) {
		doc, err := Load(encodePNG(t, 8, 8), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", doc.MIME)
	})

	t.Run("corrupt image records decode error without failing", func(t *testing.T) {
		doc, err := Load([]byte("definitely not pixels"), "image/jpeg")
		require.NoError(t, err)
		assert.False(t, doc.HasPages())
		assert.ErrorIs(t, doc.DecodeErr, ErrUnsupportedFormat)

		_, ok := doc.FirstPage()
		assert.False(t, ok)
	})

	t.Run("PDF keeps raw bytes and skips raster decoding", func(t *testing.T) {
		raw := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF")
		doc, err := Load(raw, "")
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", doc.MIME)
		assert.Equal(t, KindPDF, doc.Kind())
		assert.False(t, doc.HasPages())
		assert.NoError(t, doc.DecodeErr)
		assert.Equal(t, len(raw), doc.Size())
	})

	t.Run("PDF accepts pages rasterized upstream", func(t *testing.T) {
		raw := []byte("%PDF-1.4\n%%EOF")
		page := image.NewGray(image.Rect(0, 0, 32, 32))
		doc, err := Load(raw, "application/pdf", WithPages(page))
		require.NoError(t, err)
		assert.Equal(t, KindPDF, doc.Kind())
		assert.True(t, doc.HasPages())
	})

	t.Run("claimed issue date is carried", func(t *testing.T) {
		issued := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		doc, err := Load(encodePNG(t, 8, 8), "", WithClaimedIssueDate(issued))
		require.NoError(t, err)
		require.NotNil(t, doc.ClaimedIssuedAt)
		assert.True(t, doc.ClaimedIssuedAt.Equal(issued))
	})
}

func TestSniffTIFF(t *testing.T) {
	littleEndian := append([]byte("II*\x00"), make([]byte, 16)...)
	bigEndian := append([]byte("MM\x00*"), make([]byte, 16)...)

	docLE, err := Load(littleEndian, "")
	require.NoError(t, err)
	assert.Equal(t, "image/tiff", docLE.MIME)

	docBE, err := Load(bigEndian, "")
	require.NoError(t, err)
	assert.Equal(t, "image/tiff", docBE.MIME)

	// Truncated TIFF headers decode to nothing; that must surface as a
	// recorded decode error, not a panic or a load failure.
	assert.Error(t, docLE.DecodeErr)
	assert.True(t, errors.Is(docLE.DecodeErr, ErrUnsupportedFormat))
}

func TestFromImage(t *testing.T) {
	doc := FromImage(image.NewGray(image.Rect(0, 0, 10, 12)))
	assert.Equal(t, KindImage, doc.Kind())
	assert.True(t, doc.HasPages())
	assert.Zero(t, doc.Size())

	page, ok := doc.FirstPage()
	require.True(t, ok)
	assert.Equal(t, 10, page.Width)
	assert.Equal(t, 12, page.Height)
}

func TestKindNilSafety(t *testing.T) {
	var doc *Document
	assert.Equal(t, KindUnknown, doc.Kind())
	assert.False(t, doc.HasPages())
	assert.Zero(t, doc.Size())
}
