package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dravet-care/ddand/internal/quiz"
)

// GET /quiz: the active questionnaire, as the caregiver UI consumes it.
func GetQuizHandler(store quiz.Store, defaultQuizID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuestionnaire(r.Context(), defaultQuizID)
		if errors.Is(err, quiz.ErrNotFound) {
			http.Error(w, "questionnaire not configured", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// GET /quizzes/{quizID}: a specific questionnaire version (admin tooling).
func GetQuizByIDHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "quizID"))
		if id == "" {
			http.Error(w, "quizID required", http.StatusBadRequest)
			return
		}
		q, err := store.GetQuestionnaire(r.Context(), id)
		if errors.Is(err, quiz.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// POST /quizzes: upload or replace a questionnaire definition (admin).
func UploadQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Questionnaire
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if q.ID == "" || len(q.Questions) == 0 {
			http.Error(w, "id and questions required", http.StatusBadRequest)
			return
		}
		for _, item := range q.Questions {
			switch item.Type {
			case quiz.SingleChoice, quiz.ClosedNumeric, quiz.OpenNumeric:
			default:
				http.Error(w, "question "+item.ID+": unknown type", http.StatusBadRequest)
				return
			}
		}
		if err := store.PutQuestionnaire(r.Context(), q); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": q.ID})
	}
}
