// Package asset models the submitted document as an immutable snapshot: raw
// bytes, declared or sniffed MIME type, and zero or more decoded raster pages.
// Forensic checks only ever read from it.
package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrEmptyAsset reports a zero-byte payload.
	ErrEmptyAsset = errors.New("asset: empty payload")
	// ErrUnsupportedFormat reports a payload whose raster content could not
	// be decoded.
	ErrUnsupportedFormat = errors.New("asset: unsupported format")
	// ErrNoPages reports an asset without decoded raster pages; image checks
	// treat it as a neutral skip.
	ErrNoPages = errors.New("asset: no raster pages")
)

// Kind is the coarse asset family used to route checks.
type Kind string

const (
	KindImage   Kind = "image"
	KindPDF     Kind = "pdf"
	KindUnknown Kind = "unknown"
)

// Page is one decoded raster page.
type Page struct {
	Image  image.Image
	Width  int
	Height int
}

// Document is the immutable analysis input. Construct through Load or
// FromImage; never mutate after construction.
type Document struct {
	Bytes []byte
	MIME  string
	Pages []Page

	// DecodeErr records why raster decoding failed when it did. Checks that
	// need pixels treat it as a neutral skip, not a failure.
	DecodeErr error

	// ClaimedIssuedAt is the issue date the submitter declared for the
	// document, when known. Metadata checks compare it against embedded
	// modification timestamps.
	ClaimedIssuedAt *time.Time
}

// Option adjusts Document construction.
type Option func(*Document)

// WithClaimedIssueDate attaches the submitter-declared issue date.
func WithClaimedIssueDate(ts time.Time) Option {
	return func(d *Document) {
		t := ts
		d.ClaimedIssuedAt = &t
	}
}

// WithPages attaches raster pages decoded upstream, for formats the engine
// does not rasterize itself (PDF pages in particular).
func WithPages(imgs ...image.Image) Option {
	return func(d *Document) {
		for _, img := range imgs {
			if img == nil {
				continue
			}
			b := img.Bounds()
			d.Pages = append(d.Pages, Page{Image: img, Width: b.Dx(), Height: b.Dy()})
		}
	}
}

// Load builds a Document from raw bytes. The declared MIME type wins when
// present; otherwise the content is sniffed. Raster decoding failures are
// recorded on the Document rather than returned: only an empty payload is an
// error, everything else still produces an analyzable asset.
func Load(raw []byte, declaredMIME string, opts ...Option) (*Document, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyAsset
	}

	mime := strings.TrimSpace(strings.ToLower(declaredMIME))
	if mime == "" {
		mime = sniffMIME(raw)
	}

	doc := &Document{Bytes: raw, MIME: mime}
	for _, opt := range opts {
		opt(doc)
	}

	if len(doc.Pages) == 0 && doc.Kind() != KindPDF {
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			doc.DecodeErr = fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		} else {
			b := img.Bounds()
			doc.Pages = []Page{{Image: img, Width: b.Dx(), Height: b.Dy()}}
		}
	}

	return doc, nil
}

// FromImage wraps an already-decoded raster page. Metadata checks see no raw
// bytes on such documents and skip neutrally.
func FromImage(img image.Image) *Document {
	doc := &Document{MIME: "image/x-raster"}
	WithPages(img)(doc)
	return doc
}

// Kind derives the asset family from the MIME type.
func (d *Document) Kind() Kind {
	switch {
	case d == nil:
		return KindUnknown
	case d.MIME == "application/pdf":
		return KindPDF
	case strings.HasPrefix(d.MIME, "image/"):
		return KindImage
	default:
		return KindUnknown
	}
}

// FirstPage returns the first decoded raster page, if any.
func (d *Document) FirstPage() (Page, bool) {
	if d == nil || len(d.Pages) == 0 {
		return Page{}, false
	}
	return d.Pages[0], true
}

// HasPages reports whether any raster page is available.
func (d *Document) HasPages() bool {
	return d != nil && len(d.Pages) > 0
}

// Size returns the raw payload length in bytes.
func (d *Document) Size() int {
	if d == nil {
		return 0
	}
	return len(d.Bytes)
}

// sniffMIME detects content types http.DetectContentType knows, plus TIFF,
// which the standard sniffer does not cover.
func sniffMIME(raw []byte) string {
	if len(raw) >= 4 {
		if bytes.HasPrefix(raw, []byte("II*\x00")) || bytes.HasPrefix(raw, []byte("MM\x00*")) {
			return "image/tiff"
		}
	}
	return http.DetectContentType(raw)
}
