package selector

import (
	"math"

	"github.com/sram-ecc/eccsel/selector/diag"
)

// NormalizationMethod names the band used to rescale ESII.
type NormalizationMethod string

const (
	// MethodWinsor clips to the 5th/95th percentile band.
	MethodWinsor NormalizationMethod = "winsor"
	// MethodMinMax uses the true min/max band.
	MethodMinMax NormalizationMethod = "minmax"
)

const (
	// StatusOK marks a normal rescale.
	StatusOK = "ok"
	// StatusDegenerateScale marks an all-equal sample scored as neutral.
	StatusDegenerateScale = "degenerate_scale"
)

// MinWinsorSamples is the smallest sample for which percentile anchors are trusted.
const MinWinsorSamples = 20

// NeutralNESII is assigned to every record when the sample has no spread.
const NeutralNESII = 50.0

// NESIIResult holds normalized scores, indexed like the input, and the band used.
type NESIIResult struct {
	Scores []float64
	P5     float64
	P95    float64
	N      int
	Method NormalizationMethod
	Status string
}

// NormalizeNESII maps raw ESII values onto [0,100].
//
// The primary path clips to the 5th/95th percentiles and rescales that band.
// Fewer than MinWinsorSamples values, or coincident percentiles, fall back to
// the min/max band; if min equals max every score is NeutralNESII and the
// status is StatusDegenerateScale. Each fallback warns once per recorder.
func NormalizeNESII(values []float64, rec *diag.Recorder) NESIIResult {
	res := NESIIResult{
		Scores: make([]float64, len(values)),
		N:      len(values),
		Method: MethodWinsor,
		Status: StatusOK,
	}
	if len(values) == 0 {
		res.P5, res.P95 = math.NaN(), math.NaN()
		return res
	}

	lo := Percentile(values, 5)
	hi := Percentile(values, 95)
	if len(values) < MinWinsorSamples || isClose(lo, hi) {
		rec.WarnOnce(diag.KindNESIIFallback, "NESII normalization fallback to min-max (N=%d)", len(values))
		res.Method = MethodMinMax
		lo, hi = minMax(values)
	}
	res.P5, res.P95 = lo, hi

	span := hi - lo
	if span <= 0 {
		rec.WarnOnce(diag.KindNESIIDegenerate, "NESII degenerate scale; forcing score %.0f", NeutralNESII)
		for i := range res.Scores {
			res.Scores[i] = NeutralNESII
		}
		res.Status = StatusDegenerateScale
		return res
	}
	for i, v := range values {
		clipped := math.Min(math.Max(v, lo), hi)
		res.Scores[i] = 100.0 * (clipped - lo) / span
	}
	return res
}
