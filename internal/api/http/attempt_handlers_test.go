package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	authmw "github.com/dravet-care/ddand/internal/auth/middleware"
	"github.com/dravet-care/ddand/internal/quiz"
	"github.com/dravet-care/ddand/internal/rbac"
)

func testRouter(store quiz.Store) chi.Router {
	r := chi.NewRouter()
	r.Post("/attempts", CreateAttemptHandler(store, "ddand-v1"))
	r.Post("/attempts/{attemptID}/answers", SaveAnswersHandler(store))
	r.Post("/attempts/{attemptID}/submit", SubmitAttemptHandler(store, nil))
	r.Get("/attempts/{attemptID}", GetAttemptHandler(store))
	r.Get("/attempts", ListAttemptsHandler(store))
	return r
}

func asUser(req *http.Request, sub, role string) *http.Request {
	ctx := authmw.WithSubject(req.Context(), sub)
	ctx = rbac.WithRole(ctx, role)
	return req.WithContext(ctx)
}

func seedQuiz(t *testing.T, store quiz.Store) {
	t.Helper()
	err := store.PutQuestionnaire(context.Background(), quiz.Questionnaire{
		ID:    "ddand-v1",
		Title: "D-DAND",
		Questions: []quiz.Question{
			{ID: "q1", Text: "item 1", Type: quiz.SingleChoice, Dom: "Mot", Subdom: 1},
		},
	})
	if err != nil {
		t.Fatalf("seed questionnaire: %v", err)
	}
}

func TestAttemptFlow(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedQuiz(t, store)
	r := testRouter(store)

	// create
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, asUser(httptest.NewRequest("POST", "/attempts", nil), "cg1", "caregiver"))
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var a quiz.Attempt
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode attempt: %v", err)
	}
	if a.QuizID != "ddand-v1" || a.Status != quiz.StatusInProgress {
		t.Fatalf("unexpected attempt %+v", a)
	}

	// save answers
	body := `{"q1": {"question": "item 1", "score": 0.5, "dom": "Mot", "subdom": 1}}`
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asUser(
		httptest.NewRequest("POST", "/attempts/"+a.ID+"/answers", strings.NewReader(body)),
		"cg1", "caregiver"))
	if rec.Code != http.StatusOK {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}

	// another caregiver must not write into it
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asUser(
		httptest.NewRequest("POST", "/attempts/"+a.ID+"/answers", strings.NewReader(body)),
		"cg2", "caregiver"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign save: %d, want 403", rec.Code)
	}

	// submit
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asUser(httptest.NewRequest("POST", "/attempts/"+a.ID+"/submit", nil), "cg1", "caregiver"))
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}

	// clinician can view, a foreign caregiver cannot
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asUser(httptest.NewRequest("GET", "/attempts/"+a.ID, nil), "doc", "clinician"))
	if rec.Code != http.StatusOK {
		t.Fatalf("clinician view: %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asUser(httptest.NewRequest("GET", "/attempts/"+a.ID, nil), "cg2", "caregiver"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign view: %d, want 403", rec.Code)
	}
}

func TestListAttemptsScopedToOwner(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedQuiz(t, store)
	r := testRouter(store)

	for _, sub := range []string{"cg1", "cg2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, asUser(httptest.NewRequest("POST", "/attempts", nil), sub, "caregiver"))
		if rec.Code != http.StatusOK {
			t.Fatalf("create for %s: %d", sub, rec.Code)
		}
	}

	// caregiver sees only their own, even when asking for someone else's
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, asUser(httptest.NewRequest("GET", "/attempts?user_id=cg2", nil), "cg1", "caregiver"))
	var list []quiz.Attempt
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].UserID != "cg1" {
		t.Fatalf("caregiver list = %+v, want only own attempts", list)
	}

	// clinician sees everything
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asUser(httptest.NewRequest("GET", "/attempts", nil), "doc", "clinician"))
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("clinician list has %d attempts, want 2", len(list))
	}
}
