package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dravet-care/ddand/internal/quiz"
	"github.com/dravet-care/ddand/internal/report"
	"github.com/dravet-care/ddand/internal/scoring"
)

// GET /attempts/{attemptID}/report: the full printable-report payload.
// A scoring failure is an explicit error response, never a partial report:
// a caregiver report with percentiles silently missing is clinically
// misleading.
func GetReportHandler(store quiz.Store, table scoring.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := viewableAttempt(w, r, store, chi.URLParam(r, "attemptID"))
		if !ok {
			return
		}
		p, err := report.Build(a, table)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": "report could not be generated: " + err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// GET /attempts/{attemptID}/scores: just the formatted score map
// ("Overall"/"Mot"/.../"sub19" → {z, p}).
func GetScoresHandler(store quiz.Store, table scoring.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := viewableAttempt(w, r, store, chi.URLParam(r, "attemptID"))
		if !ok {
			return
		}
		p, err := report.Build(a, table)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": "scores could not be computed: " + err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, p.Scores)
	}
}
