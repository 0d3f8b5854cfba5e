// Package analytics computes descriptive cohort statistics over submitted
// attempts for the clinician dashboard. It reports on raw answer data only;
// normalized clinical scores stay inside the scoring engine and the report
// layer.
package analytics

import (
	"errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/dravet-care/ddand/internal/quiz"
	"github.com/dravet-care/ddand/internal/scoring"
)

// Summary describes a cohort of submitted attempts.
type Summary struct {
	Attempts int `json:"attempts"`
	Skipped  int `json:"skipped"` // attempts with unusable demographics

	// Distribution of per-attempt mean rating scores (subdomains 1..17).
	RatingMean   float64 `json:"rating_mean"`
	RatingSD     float64 `json:"rating_sd"`
	RatingMedian float64 `json:"rating_median"`
	RatingMin    float64 `json:"rating_min"`
	RatingMax    float64 `json:"rating_max"`

	// Linear trend of mean rating score against age in months.
	AgeSlope       float64 `json:"age_slope"`
	AgeIntercept   float64 `json:"age_intercept"`
	AgeCorrelation float64 `json:"age_correlation"`
}

var ErrNoData = errors.New("analytics: no submitted attempts")

// Compute summarizes the cohort. Attempts whose demographics cannot be
// extracted are counted in Skipped rather than failing the whole summary;
// this is a dashboard, not a clinical report.
func Compute(attempts []quiz.Attempt) (Summary, error) {
	var means, ages []float64
	skipped := 0
	for _, a := range attempts {
		if a.Status != quiz.StatusSubmitted {
			continue
		}
		cov, err := scoring.ExtractCovariates(a.Answers.ToScoringSet())
		if err != nil {
			skipped++
			continue
		}
		var ratings []float64
		for _, ans := range a.Answers {
			if ans.Subdom >= 1 && ans.Subdom <= 17 {
				ratings = append(ratings, ans.Score)
			}
		}
		m, err := stats.Mean(ratings)
		if err != nil {
			skipped++
			continue
		}
		means = append(means, m)
		ages = append(ages, cov.AgeMonths)
	}
	if len(means) == 0 {
		return Summary{Skipped: skipped}, ErrNoData
	}

	s := Summary{Attempts: len(means), Skipped: skipped}
	s.RatingMean, _ = stats.Mean(means)
	s.RatingSD, _ = stats.StandardDeviation(means)
	s.RatingMedian, _ = stats.Median(means)
	s.RatingMin, _ = stats.Min(means)
	s.RatingMax, _ = stats.Max(means)

	if len(means) >= 2 {
		s.AgeIntercept, s.AgeSlope = stat.LinearRegression(ages, means, nil, false)
		s.AgeCorrelation = stat.Correlation(ages, means, nil)
	}
	return s, nil
}
