package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dravet-care/ddand/internal/quiz"
	syncx "github.com/dravet-care/ddand/internal/sync"
)

// POST /attempts: start an interview for the calling caregiver.
func CreateAttemptHandler(store quiz.Store, defaultQuizID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			QuizID string `json:"quiz_id"`
		}
		// body is optional; default questionnaire when absent
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.QuizID == "" {
			req.QuizID = defaultQuizID
		}
		a, err := store.NewAttempt(r.Context(), req.QuizID, sub)
		if errors.Is(err, quiz.ErrNotFound) {
			http.Error(w, "questionnaire not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /attempts/{attemptID}/answers: merge a batch of answers.
func SaveAnswersHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		a, ok := ownedAttempt(w, r, store, id)
		if !ok {
			return
		}
		var answers quiz.AnswerSet
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		a, err := store.SaveAnswers(r.Context(), a.ID, answers)
		if errors.Is(err, quiz.ErrAlreadySubmitted) {
			http.Error(w, "attempt already submitted", http.StatusConflict)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /attempts/{attemptID}/submit: freeze the answers.
func SubmitAttemptHandler(store quiz.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		a, ok := ownedAttempt(w, r, store, id)
		if !ok {
			return
		}
		a, err := store.Submit(r.Context(), a.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if events != nil {
			if err := events.Append(r.Context(), syncx.TypeAttemptSubmitted, a.ID,
				map[string]string{"quiz_id": a.QuizID, "user_id": a.UserID}); err != nil {
				log.Printf("event log append: %v", err)
			}
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts/{attemptID}
func GetAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		a, ok := viewableAttempt(w, r, store, id)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts?status=...&limit=...&offset=...
// Callers without attempt:view-all only ever see their own attempts.
func ListAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := subjectAndRole(r)
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if role != "admin" && role != "clinician" {
			userID = sub
		}
		list, err := store.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID: strings.TrimSpace(r.URL.Query().Get("quiz_id")),
			UserID: userID,
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []quiz.Attempt{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ownedAttempt loads an attempt and requires the caller to be its owner.
// Write operations are owner-only regardless of role.
func ownedAttempt(w http.ResponseWriter, r *http.Request, store quiz.Store, id string) (quiz.Attempt, bool) {
	a, ok := loadAttempt(w, r, store, id)
	if !ok {
		return quiz.Attempt{}, false
	}
	sub, _ := subjectAndRole(r)
	if a.UserID != sub {
		http.Error(w, "forbidden", http.StatusForbidden)
		return quiz.Attempt{}, false
	}
	return a, true
}

// viewableAttempt allows the owner, plus roles holding attempt:view-all.
func viewableAttempt(w http.ResponseWriter, r *http.Request, store quiz.Store, id string) (quiz.Attempt, bool) {
	a, ok := loadAttempt(w, r, store, id)
	if !ok {
		return quiz.Attempt{}, false
	}
	sub, role := subjectAndRole(r)
	if a.UserID != sub && role != "admin" && role != "clinician" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return quiz.Attempt{}, false
	}
	return a, true
}

func loadAttempt(w http.ResponseWriter, r *http.Request, store quiz.Store, id string) (quiz.Attempt, bool) {
	if strings.TrimSpace(id) == "" {
		http.Error(w, "attemptID required", http.StatusBadRequest)
		return quiz.Attempt{}, false
	}
	a, err := store.GetAttempt(r.Context(), id)
	if errors.Is(err, quiz.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return quiz.Attempt{}, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return quiz.Attempt{}, false
	}
	return a, true
}
