package scoring

import (
	"math"

	"github.com/montanaflynn/stats"
)

// GroupKind selects the reduction rule that collapses a group's raw scores
// into one summary statistic.
type GroupKind int

const (
	// LogitMean: arithmetic mean of [0,1] scores, then the logit transform.
	// Used by subdomains 1..17, the five domains and Overall.
	LogitMean GroupKind = iota
	// FixedDenominatorRatio: sum of raw scores over a fixed questionnaire
	// constant, then the logit transform. Used by subdomain 18.
	FixedDenominatorRatio
	// RawCount: the single item's raw count passes through untouched and is
	// normalized by the gamma model instead. Used by subdomain 19.
	RawCount
)

// logitClamp bounds the summary statistic where the logit would blow up:
// logit(0.997) ≈ 4.8, so ±4.8 stands in for an all-minimum or all-maximum
// response pattern without evaluating ln(0).
const logitClamp = 4.8

// logit maps a proportion to the real line: ln(m / (1-m)), with the clamp
// applied at the boundaries.
func logit(m float64) float64 {
	switch {
	case m <= 0:
		return -logitClamp
	case m >= 1:
		return logitClamp
	default:
		return math.Log(m / (1 - m))
	}
}

// logitMean reduces a rating group to logit(mean). stats.Mean errors on an
// empty slice, which the aggregator should already have ruled out; the error
// is still surfaced rather than swallowed into a zero.
func logitMean(scores []float64) (float64, error) {
	m, err := stats.Mean(scores)
	if err != nil {
		return 0, err
	}
	return logit(m), nil
}

// ratioLogit reduces subdomain 18: logit of the raw sum over the fixed
// denominator.
func ratioLogit(scores []float64, denom float64) (float64, error) {
	sum, err := stats.Sum(scores)
	if err != nil {
		return 0, err
	}
	return logit(sum / denom), nil
}

// clampedLow / clampedHigh report whether a summary statistic sits on a
// clamp boundary, which turns the reported percentile into a bound.
func clampedLow(stat float64) bool  { return stat == -logitClamp }
func clampedHigh(stat float64) bool { return stat == logitClamp }
