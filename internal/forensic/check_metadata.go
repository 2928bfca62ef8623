package forensic

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"veridoc/internal/asset"
)

const metadataCheckName = "metadata"

// metadataAnomalyScore is deducted per anomaly found in the EXIF block.
const metadataAnomalyScore = 25.0

// editorSignatures are software tag fragments that identify raster editors.
// A legitimate scan or camera capture never carries these.
var editorSignatures = []string{
	"photoshop",
	"gimp",
	"lightroom",
	"paint.net",
	"pixelmator",
	"affinity",
	"snapseed",
	"picsart",
	"canva",
	"photopea",
}

// exifTimeLayout is the timestamp format mandated by the EXIF standard.
const exifTimeLayout = "2006:01:02 15:04:05"

// MetadataCheck inspects embedded EXIF metadata for traces of raster editing:
// editor software signatures, timestamp inversions, and camera identities
// missing their capture timestamp.
type MetadataCheck struct{}

func (MetadataCheck) Name() string { return metadataCheckName }

// Applies limits the check to image assets; PDFs carry their own metadata
// dictionary handled by PDFMetadataCheck.
func (MetadataCheck) Applies(doc *asset.Document) bool {
	return doc.Kind() == asset.KindImage
}

func (MetadataCheck) Run(_ context.Context, doc *asset.Document) Result {
	if doc.Size() == 0 {
		return Neutral(metadataCheckName, "no raw bytes to inspect")
	}
	x, err := exif.Decode(bytes.NewReader(doc.Bytes))
	if err != nil {
		return Neutral(metadataCheckName, "no EXIF metadata present")
	}

	sum := metadataSummary{
		Software: exifString(x, exif.Software),
		Make:     exifString(x, exif.Make),
		Model:    exifString(x, exif.Model),
	}
	sum.Created, sum.HasCreated = exifTime(x, exif.DateTimeOriginal)
	sum.Modified, sum.HasModified = exifTime(x, exif.DateTime)
	return evaluateMetadata(sum)
}

func (MetadataCheck) Penalty(r Result) float64 {
	if r.Suspicious {
		return 2.0
	}
	return 0
}

// metadataSummary is the distilled EXIF view evaluateMetadata judges. Parsing
// and judgment are split so the rules can be tested without binary fixtures.
type metadataSummary struct {
	Software    string
	Make        string
	Model       string
	Created     time.Time
	HasCreated  bool
	Modified    time.Time
	HasModified bool
}

// evaluateMetadata applies the anomaly rules to a parsed EXIF summary. Editor
// signatures and timestamp inversions mark the result suspicious; a missing
// capture timestamp only lowers the score.
func evaluateMetadata(sum metadataSummary) Result {
	var anomalies []string
	var suspicious bool

	if sig := matchEditorSignature(sum.Software); sig != "" {
		anomalies = append(anomalies, fmt.Sprintf("editing software signature %q", sum.Software))
		suspicious = true
	}
	if sum.HasCreated && sum.HasModified && sum.Modified.Before(sum.Created) {
		anomalies = append(anomalies, "modification timestamp precedes capture timestamp")
		suspicious = true
	}
	if (sum.Make != "" || sum.Model != "") && !sum.HasCreated {
		anomalies = append(anomalies, "camera identity without capture timestamp")
	}

	score := 100 - metadataAnomalyScore*float64(len(anomalies))
	if score < 0 {
		score = 0
	}

	detail := map[string]any{}
	if sum.Software != "" {
		detail["software"] = sum.Software
	}
	if sum.Make != "" || sum.Model != "" {
		detail["camera"] = strings.TrimSpace(sum.Make + " " + sum.Model)
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
		Name:       metadataCheckName,
		Score:      score,
		Suspicious: suspicious,
		Confidence: 1,
		Detail:     detail,
	}
}

// matchEditorSignature returns the matched signature fragment, or "".
func matchEditorSignature(software string) string {
	s := strings.ToLower(software)
	if s == "" {
		return ""
	}
	for _, sig := range editorSignatures {
		if strings.Contains(s, sig) {
			return sig
		}
	}
	return ""
}

// exifString reads a string tag, returning "" when absent or malformed.
func exifString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}

// exifTime reads and parses an EXIF timestamp tag.
func exifTime(x *exif.Exif, name exif.FieldName) (time.Time, bool) {
	s := exifString(x, name)
	if s == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(exifTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
