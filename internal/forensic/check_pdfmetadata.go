package forensic

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"veridoc/internal/asset"
)

const pdfMetadataCheckName = "pdfmetadata"

// pdfAnomalyScore is deducted per anomaly found in the Info dictionary.
const pdfAnomalyScore = 30.0

// pdfEditorSignatures extends the raster editor list with PDF manipulation
// services. Office suites and print pipelines are deliberately absent.
var pdfEditorSignatures = append([]string{
	"ilovepdf",
	"sejda",
	"smallpdf",
	"pdfescape",
	"pdfsam",
}, editorSignatures...)

// PDFMetadataCheck reads the PDF Info dictionary and flags manipulation
// traces: editor producer strings, modification dates preceding creation,
// and modifications after the claimed issue date.
type PDFMetadataCheck struct{}

func (PDFMetadataCheck) Name() string { return pdfMetadataCheckName }

func (PDFMetadataCheck) Applies(doc *asset.Document) bool {
	return doc.Kind() == asset.KindPDF
}

func (PDFMetadataCheck) Run(_ context.Context, doc *asset.Document) Result {
	if doc.Size() == 0 {
		return Neutral(pdfMetadataCheckName, "no raw bytes to inspect")
	}
	sum, ok := readPDFInfo(doc.Bytes)
	if !ok {
		return Neutral(pdfMetadataCheckName, "unreadable PDF structure")
	}
	sum.ClaimedIssuedAt = doc.ClaimedIssuedAt
	return evaluatePDFMetadata(sum)
}

func (PDFMetadataCheck) Penalty(r Result) float64 {
	if r.Suspicious {
		return 2.0
	}
	return 0
}

// pdfSummary is the distilled Info dictionary view. Parsing and judgment are
// split so the rules can be tested without PDF fixtures.
type pdfSummary struct {
	Producer        string
	Creator         string
	Created         time.Time
	HasCreated      bool
	Modified        time.Time
	HasModified     bool
	ClaimedIssuedAt *time.Time
}

// readPDFInfo extracts the Info dictionary fields. The parser panics on some
// malformed inputs, so the whole read runs under a recover.
func readPDFInfo(raw []byte) (sum pdfSummary, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return pdfSummary{}, false
	}
	info := r.Trailer().Key("Info")
	sum.Producer = strings.TrimSpace(info.Key("Producer").Text())
	sum.Creator = strings.TrimSpace(info.Key("Creator").Text())
	sum.Created, sum.HasCreated = parsePDFDate(info.Key("CreationDate").Text())
	sum.Modified, sum.HasModified = parsePDFDate(info.Key("ModDate").Text())
	return sum, true
}

// evaluatePDFMetadata applies the anomaly rules to a parsed Info summary.
func evaluatePDFMetadata(sum pdfSummary) Result {
	var anomalies []string

	if sig := matchPDFEditorSignature(sum.Producer); sig != "" {
		anomalies = append(anomalies, fmt.Sprintf("editing software producer %q", sum.Producer))
	} else if sig := matchPDFEditorSignature(sum.Creator); sig != "" {
		anomalies = append(anomalies, fmt.Sprintf("editing software creator %q", sum.Creator))
	}
	if sum.HasCreated && sum.HasModified && sum.Modified.Before(sum.Created) {
		anomalies = append(anomalies, "modification date precedes creation date")
	}
	if sum.HasModified && sum.ClaimedIssuedAt != nil {
		// Same-day touches are expected; flag only edits after the claimed
		// issue day has passed.
		dayEnd := sum.ClaimedIssuedAt.Truncate(24 * time.Hour).Add(24 * time.Hour)
		if sum.Modified.After(dayEnd) {
			anomalies = append(anomalies, fmt.Sprintf(
				"modified %s, after the claimed issue date %s",
				sum.Modified.Format("2006-01-02"),
				sum.ClaimedIssuedAt.Format("2006-01-02"),
			))
		}
	}

	score := 100 - pdfAnomalyScore*float64(len(anomalies))
	if score < 0 {
		score = 0
	}

	detail := map[string]any{}
	if sum.Producer != "" {
		detail["producer"] = sum.Producer
	}
	if sum.Creator != "" {
		detail["creator"] = sum.Creator
	}
	if sum.HasCreated {
		detail["created"] = sum.Created.Format(time.RFC3339)
	}
	if sum.HasModified {
		detail["modified"] = sum.Modified.Format(time.RFC3339)
	}
	if len(anomalies) > 0 {
		detail["anomalies"] = anomalies
		detail["flag"] = anomalies[0]
	}

	return Result{
		Name:       pdfMetadataCheckName,
		Score:      score,
		Suspicious: len(anomalies) > 0,
		Confidence: 1,
		Detail:     detail,
	}
}

func matchPDFEditorSignature(s string) string {
	low := strings.ToLower(s)
	if low == "" {
		return ""
	}
	for _, sig := range pdfEditorSignatures {
		if strings.Contains(low, sig) {
			return sig
		}
	}
	return ""
}

// parsePDFDate parses PDF date strings of the form
// D:YYYYMMDDHHmmSS+HH'mm'. Truncated forms and missing zones are accepted.
func parsePDFDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "D:"))
	if len(s) < 4 {
		return time.Time{}, false
	}

	digits := s
	zone := time.UTC
	if idx := strings.IndexAny(s, "+-Z"); idx >= 0 {
		digits = s[:idx]
		z := s[idx:]
		if z[0] != 'Z' && len(z) >= 3 {
			sign := 1
			if z[0] == '-' {
				sign = -1
			}
			hh, err := strconv.Atoi(z[1:3])
			if err == nil {
				mm := 0
				if len(z) >= 6 && z[3] == '\'' {
					if m, merr := strconv.Atoi(z[4:6]); merr == nil {
						mm = m
					}
				}
				zone = time.FixedZone("", sign*(hh*3600+mm*60))
			}
		}
	}

	num := func(from, to, def int) int {
		if len(digits) >= to {
			if v, err := strconv.Atoi(digits[from:to]); err == nil {
				return v
			}
		}
		return def
	}
	year := num(0, 4, 0)
	if year == 0 {
		return time.Time{}, false
	}
	month := num(4, 6, 1)
	day := num(6, 8, 1)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	hour := num(8, 10, 0)
	minute := num(10, 12, 0)
	sec := num(12, 14, 0)
	if hour > 23 || minute > 59 || sec > 60 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, zone), true
}
