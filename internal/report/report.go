// Package report assembles the printable-report payload: per-item rows plus
// the engine's formatted score map. Page layout and PDF rendering live in the
// frontend; this package only prepares the data it consumes.
package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/dravet-care/ddand/internal/quiz"
	"github.com/dravet-care/ddand/internal/scoring"
)

// Row is one question/answer line of the report.
type Row struct {
	Question string `json:"question"`
	Response string `json:"response,omitempty"`
	Score    string `json:"score"`
}

// Payload is the full report body returned to the report/PDF layer. Scores
// are recomputed from the frozen answers on every build; nothing here is
// persisted.
type Payload struct {
	AttemptID   string                            `json:"attempt_id"`
	SubmittedAt int64                             `json:"submitted_at"`
	Rows        []Row                             `json:"rows"`
	Scores      map[string]scoring.FormattedScore `json:"scores"`
}

// Rows renders the per-item lines. The age item is collapsed to a single
// human-readable row; rating scores (subdomains 1..17) are shown as 0..100
// percentages, counts and sums as-is.
func Rows(answers quiz.AnswerSet) []Row {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]Row, 0, len(answers))
	for _, id := range ids {
		a := answers[id]
		if a.Question == scoring.AgeQuestion {
			anni := a.Fields["Anni"]
			mesi := a.Fields["Mesi"]
			rows = append(rows, Row{
				Question: "ETÀ",
				Response: fmt.Sprintf("%.0f anni e %.0f mesi", anni, mesi),
				Score:    fmt.Sprintf("%.0f", anni*12+mesi),
			})
			continue
		}
		score := a.Score
		if a.Subdom >= 1 && a.Subdom <= 17 {
			score = math.Round(a.Score * 100)
		}
		rows = append(rows, Row{
			Question: a.Question,
			Response: a.Response,
			Score:    fmt.Sprintf("%.0f", score),
		})
	}
	return rows
}

// Build scores the attempt's answers and assembles the report payload.
// Any engine error aborts the whole report: a partially scored report is
// clinically misleading and must surface as an explicit failure instead.
func Build(a quiz.Attempt, table scoring.Table) (Payload, error) {
	if a.Status != quiz.StatusSubmitted {
		return Payload{}, fmt.Errorf("report: attempt %s not submitted", a.ID)
	}
	results, err := scoring.Score(a.Answers.ToScoringSet(), table)
	if err != nil {
		return Payload{}, fmt.Errorf("report: scoring attempt %s: %w", a.ID, err)
	}
	return Payload{
		AttemptID:   a.ID,
		SubmittedAt: a.SubmittedAt,
		Rows:        Rows(a.Answers),
		Scores:      scoring.FormatResults(results),
	}, nil
}
