package forensic

import (
	"context"
	"fmt"

	"veridoc/internal/asset"
)

const histogramCheckName = "histogram"

const (
	histogramAnomalyScore = 15.0
	histogramSampleDim    = 256

	// Spike: a single interior bin towering over its neighborhood suggests a
	// pasted-in region of constant tone.
	histogramSpikeFactor     = 12.0
	histogramSpikeFactorScan = 20.0

	// Gap: a comb pattern of empty interior bins suggests posterization or
	// level stretching after editing.
	histogramGapRatio     = 0.30
	histogramGapRatioScan = 0.45

	// histogramMinSpan is the minimum occupied bin span before gap analysis
	// means anything.
	histogramMinSpan = 48
)

// HistogramCheck looks for tonal manipulation artifacts in per-channel
// histograms: isolated spikes from pasted flat regions and comb gaps from
// posterization. Scanned pages relax both thresholds since dithering and
// binarization produce legitimately rough histograms.
type HistogramCheck struct{}

func (HistogramCheck) Name() string { return histogramCheckName }

func (HistogramCheck) Applies(*asset.Document) bool { return true }

func (HistogramCheck) Run(_ context.Context, doc *asset.Document) Result {
	page, ok := doc.FirstPage()
	if !ok {
		return Neutral(histogramCheckName, "no decodable raster page")
	}

	scanned := Classify(page.Image) == ClassScanned
	spikeFactor := histogramSpikeFactor
	gapRatio := histogramGapRatio
	if scanned {
		spikeFactor = histogramSpikeFactorScan
		gapRatio = histogramGapRatioScan
	}

	channels := sampleHistograms(page, scanned)
	var anomalies []string
	for _, ch := range channels {
		if bin, ok := findSpike(ch.bins, spikeFactor); ok {
			anomalies = append(anomalies, fmt.Sprintf("spike in %s channel at bin %d", ch.name, bin))
		}
		if ratio, ok := findComb(ch.bins, gapRatio); ok {
			anomalies = append(anomalies, fmt.Sprintf("comb pattern in %s channel (%.0f%% empty)", ch.name, ratio*100))
		}
	}

	score := 100 - histogramAnomalyScore*float64(len(anomalies))
	if score < 0 {
		score = 0
	}
	detail := map[string]any{"scanned": scanned}
	if len(anomalies) > 0 {
		detail["anomalies"] = anomalies
		detail["flag"] = anomalies[0]
	}

	return Result{
		Name:       histogramCheckName,
		Score:      score,
		Suspicious: len(anomalies) > 0,
		Confidence: 1,
		Detail:     detail,
	}
}

func (HistogramCheck) Penalty(r Result) float64 {
	if r.Suspicious {
		return 1.5
	}
	return 0
}

type channelHistogram struct {
	name string
	bins []int
}

// sampleHistograms builds the per-channel histograms from a strided pixel
// sample. Grayscale pages collapse RGB into the single value channel; color
// pages additionally get hue and saturation at coarser binning.
func sampleHistograms(page asset.Page, scanned bool) []channelHistogram {
	img := page.Image
	b := img.Bounds()
	stepX := max(1, b.Dx()/histogramSampleDim)
	stepY := max(1, b.Dy()/histogramSampleDim)

	value := make([]int, 256)
	var red, green, blue, hue, sat []int
	if !scanned {
		red = make([]int, 256)
		green = make([]int, 256)
		blue = make([]int, 256)
		hue = make([]int, 64)
		sat = make([]int, 64)
	}

	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r8, g8, b8 := uint8(r16>>8), uint8(g16>>8), uint8(b16>>8)
			h, s, v := rgbToHSV(r8, g8, b8)
			value[uint8(v*255)]++
			if scanned {
				continue
			}
			red[r8]++
			green[g8]++
			blue[b8]++
			hue[min(63, int(h/360*64))]++
			sat[min(63, int(s*64))]++
		}
	}

	channels := []channelHistogram{{"value", value}}
	if !scanned {
		channels = append(channels,
			channelHistogram{"red", red},
			channelHistogram{"green", green},
			channelHistogram{"blue", blue},
			channelHistogram{"hue", hue},
			channelHistogram{"saturation", sat},
		)
	}
	return channels
}

// findSpike reports the first interior bin that towers over the mean of its
// four nearest neighbors. The outermost bins are skipped: black points and
// clipped highlights pile up there legitimately. Histograms with a narrow
// occupied span, such as flat renders, carry no neighborhood to compare
// against and are skipped entirely.
func findSpike(bins []int, factor float64) (int, bool) {
	first, last := occupiedSpan(bins)
	if first == -1 || last-first+1 < histogramMinSpan {
		return 0, false
	}
	total := 0
	for _, c := range bins {
		total += c
	}
	// A spike must also hold a visible share of pixels, or single-pixel bins
	// in sparse histograms would trip it.
	prominence := max(16, total/500)

	for i := 2; i < len(bins)-2; i++ {
		if bins[i] < prominence {
			continue
		}
		neighbors := float64(bins[i-2]+bins[i-1]+bins[i+1]+bins[i+2]) / 4
		if neighbors < 1 {
			neighbors = 1
		}
		if float64(bins[i]) > factor*neighbors {
			return i, true
		}
	}
	return 0, false
}

// findComb reports the empty-bin ratio inside the occupied span when it
// crosses the threshold.
func findComb(bins []int, threshold float64) (float64, bool) {
	first, last := occupiedSpan(bins)
	span := last - first + 1
	if first == -1 || span < histogramMinSpan {
		return 0, false
	}

	empty := 0
	for i := first + 1; i < last; i++ {
		if bins[i] == 0 {
			empty++
		}
	}
	ratio := float64(empty) / float64(span)
	if ratio > threshold {
		return ratio, true
	}
	return 0, false
}

// occupiedSpan returns the first and last non-empty bins, or (-1, -1).
func occupiedSpan(bins []int) (int, int) {
	first, last := -1, -1
	for i, c := range bins {
		if c > 0 {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	return first, last
}
