// Package scoring implements the D-DAND scoring engine: the pure
// transformation from a caregiver's raw item answers into domain, subdomain
// and overall z-scores and percentiles, referenced against an
// age/sex/nationality-adjusted population regression model.
//
// The engine is a single synchronous pass with no I/O and no shared mutable
// state: identical inputs always produce identical outputs, and concurrent
// runs only ever read the shared reference table.
package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Bound annotates a percentile whose underlying summary statistic hit a
// clamped extreme.
type Bound int

const (
	BoundNone  Bound = iota
	BoundBelow       // all items at minimum: report "< p"
	BoundAbove       // all items at maximum: report "> p"
)

// Result is the computed score for one group.
type Result struct {
	Key string
	// Z is the standardized deviation from the demographically predicted
	// mean. ZValid is false for the gamma-modeled group, which has no
	// symmetric z-equivalent.
	Z      float64
	ZValid bool
	// Percentile is in [0,100], full precision; rounding happens only in
	// the report formatting adapter.
	Percentile float64
	Bound      Bound
}

// Parameters of the hand-fixed gamma model for subdomain 19 (weekly
// awakenings). The peer mean is log-linear in age and nationality; alpha is
// the fixed shape, and the scale follows as peerMean/alpha.
const (
	gammaIntercept = 0.114
	gammaAgeCoef   = 0.416
	gammaNatCoef   = 0.559
	gammaShape     = 0.521648409
)

// Score runs the full pipeline: aggregate the answer set, reduce each group
// to its summary statistic, and normalize against the reference table.
// Errors are all-or-nothing; a nil error guarantees every group key is
// present in the result map.
func Score(answers AnswerSet, table Table) (map[string]Result, error) {
	cov, err := ExtractCovariates(answers)
	if err != nil {
		return nil, err
	}
	g, err := aggregate(answers)
	if err != nil {
		return nil, err
	}

	results := make(map[string]Result, len(tableKeys)+1)

	normalize := func(key string, stat float64) error {
		row, err := table.Lookup(key)
		if err != nil {
			return err
		}
		pred := row.Intercept +
			row.AgeCoef*cov.LnAge0() +
			row.NatCoef*cov.Nationality +
			row.SexCoef*cov.Sex +
			row.SexNatCoef*cov.Sex*cov.Nationality
		z := (stat - pred) / row.SD
		res := Result{
			Key:        key,
			Z:          z,
			ZValid:     true,
			Percentile: distuv.UnitNormal.CDF(z) * 100,
		}
		switch {
		case clampedLow(stat):
			res.Bound = BoundBelow
		case clampedHigh(stat):
			res.Bound = BoundAbove
		}
		results[key] = res
		return nil
	}

	if stat, err := logitMean(g.overall); err != nil {
		return nil, err
	} else if err := normalize(KeyOverall, stat); err != nil {
		return nil, err
	}
	for _, code := range DomainCodes {
		stat, err := logitMean(g.domains[code])
		if err != nil {
			return nil, err
		}
		if err := normalize(code, stat); err != nil {
			return nil, err
		}
	}
	for i := minSubdom; i <= maxRatingSubdom; i++ {
		stat, err := logitMean(g.subs[i])
		if err != nil {
			return nil, err
		}
		if err := normalize(fmt.Sprintf("sub%d", i), stat); err != nil {
			return nil, err
		}
	}
	stat, err := ratioLogit(g.subs[18], sub18Denominator)
	if err != nil {
		return nil, err
	}
	if err := normalize(KeySub18, stat); err != nil {
		return nil, err
	}

	results[KeySub19] = scoreAwakenings(g.sub19, cov)
	return results, nil
}

// scoreAwakenings normalizes the weekly-awakenings count against the gamma
// model, a code path disjoint from the reference table.
func scoreAwakenings(count float64, cov Covariates) Result {
	peerMean := math.Exp(gammaIntercept + gammaAgeCoef*cov.LnAge0() + gammaNatCoef*cov.Nationality)
	// gonum's Gamma is rate-parameterized; scale peerMean/alpha ⇒ rate alpha/peerMean.
	dist := distuv.Gamma{Alpha: gammaShape, Beta: gammaShape / peerMean}
	return Result{
		Key:        KeySub19,
		ZValid:     false,
		Percentile: dist.CDF(count) * 100,
	}
}
