package scoring

import (
	"math"
)

// Demographic items are located by exact question-text match against the
// questionnaire's fixed Italian prompts. The strings are part of the input
// contract with the quiz layer and must not be reworded independently.
const (
	AgeQuestion = "ETÀ in anni e mesi, es. se il paziente ha 3 anni e 4 mesi scrivere 3 nella casella 'Anni' e 4 in quella 'Mesi'"
	SexQuestion = "GENERE"
	NatQuestion = "NAZIONALITÀ"

	ageFieldYears  = "Anni"
	ageFieldMonths = "Mesi"
)

// meanLnAge is the reference population's mean log-age in months, baked into
// the regression model. lnAge0 is centered against it.
const meanLnAge = 4.944218314

// Covariates are the demographic predictors of the regression model. Sex and
// nationality are the 0/1 codes assigned by the questionnaire, not recomputed
// here.
type Covariates struct {
	AgeMonths   float64
	Sex         float64
	Nationality float64
}

// LnAge0 returns the centered log-age covariate.
func (c Covariates) LnAge0() float64 {
	return math.Log(c.AgeMonths) - meanLnAge
}

// ExtractCovariates pulls age, sex and nationality out of the answer set by
// question-text match. A missing demographic item or a non-positive age is a
// malformed answer set and aborts the run: age 0 would drive ln(age) to -Inf
// and poison every group's prediction.
func ExtractCovariates(answers AnswerSet) (Covariates, error) {
	var c Covariates
	var haveAge, haveSex, haveNat bool
	for _, it := range answers {
		switch it.Question {
		case AgeQuestion:
			c.AgeMonths = it.Fields[ageFieldYears]*12 + it.Fields[ageFieldMonths]
			haveAge = true
		case SexQuestion:
			c.Sex = it.Score
			haveSex = true
		case NatQuestion:
			c.Nationality = it.Score
			haveNat = true
		}
	}
	switch {
	case !haveAge:
		return Covariates{}, &ErrMissingDemographic{Which: "age"}
	case !haveSex:
		return Covariates{}, &ErrMissingDemographic{Which: SexQuestion}
	case !haveNat:
		return Covariates{}, &ErrMissingDemographic{Which: NatQuestion}
	}
	if c.AgeMonths <= 0 || !isFinite(c.AgeMonths) {
		return Covariates{}, &ErrBadScore{Key: "age", Value: c.AgeMonths}
	}
	if !isFinite(c.Sex) || !isFinite(c.Nationality) {
		return Covariates{}, &ErrBadScore{Key: "demographics", Value: math.NaN()}
	}
	return c, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
