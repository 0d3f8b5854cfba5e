package http

import (
	"errors"
	"net/http"

	"github.com/dravet-care/ddand/internal/analytics"
	"github.com/dravet-care/ddand/internal/quiz"
	syncx "github.com/dravet-care/ddand/internal/sync"
)

// GET /analytics/summary?quiz_id=...: cohort statistics over submitted
// attempts. Clinician or admin only; routing enforces the role.
func AnalyticsSummaryHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempts, err := store.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID: r.URL.Query().Get("quiz_id"),
			Status: quiz.StatusSubmitted,
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 200),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		sum, err := analytics.Compute(attempts)
		if err != nil {
			if errors.Is(err, analytics.ErrNoData) {
				http.Error(w, "no submitted attempts", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

// GET /admin/events?offset=0&limit=100: audit trail for offline sync.
func ListEventsHandler(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset := int64(parseIntDefault(r.URL.Query().Get("offset"), 0))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		out, err := events.Since(r.Context(), offset, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if out == nil {
			out = []syncx.Event{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}
