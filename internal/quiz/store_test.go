package quiz

import (
	"context"
	"testing"
)

func testQuestionnaire() Questionnaire {
	return Questionnaire{
		ID:    "ddand-v1",
		Title: "D-DAND",
		Questions: []Question{
			{ID: "q1", Text: "item", Type: SingleChoice, Subdom: 1, Dom: "Mot",
				Options: []ChoiceOption{{Text: "mai", Score: 0}, {Text: "sempre", Score: 1}}},
		},
	}
}

func TestAttemptLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	if err := store.PutQuestionnaire(ctx, testQuestionnaire()); err != nil {
		t.Fatalf("PutQuestionnaire: %v", err)
	}

	a, err := store.NewAttempt(ctx, "ddand-v1", "caregiver-1")
	if err != nil {
		t.Fatalf("NewAttempt: %v", err)
	}
	if a.Status != StatusInProgress {
		t.Errorf("status = %q, want in_progress", a.Status)
	}

	a, err = store.SaveAnswers(ctx, a.ID, AnswerSet{"q1": {Question: "item", Score: 1, Subdom: 1, Dom: "Mot"}})
	if err != nil {
		t.Fatalf("SaveAnswers: %v", err)
	}
	if len(a.Answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(a.Answers))
	}

	a, err = store.Submit(ctx, a.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if a.Status != StatusSubmitted || a.SubmittedAt == 0 {
		t.Errorf("after submit: %+v", a)
	}

	// answers frozen after submission
	if _, err := store.SaveAnswers(ctx, a.ID, AnswerSet{}); err != ErrAlreadySubmitted {
		t.Errorf("save after submit: got %v, want ErrAlreadySubmitted", err)
	}

	// idempotent submit
	again, err := store.Submit(ctx, a.ID)
	if err != nil || again.SubmittedAt != a.SubmittedAt {
		t.Errorf("second submit: %+v, %v", again, err)
	}
}

func TestSaveAnswersRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	_ = store.PutQuestionnaire(ctx, testQuestionnaire())
	a, _ := store.NewAttempt(ctx, "ddand-v1", "caregiver-1")

	if _, err := store.SaveAnswers(ctx, a.ID, AnswerSet{"q1": {Question: "item", Score: 3, Subdom: 1}}); err == nil {
		t.Error("rating score 3 should be rejected")
	}
}

func TestNewAttemptUnknownQuiz(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.NewAttempt(context.Background(), "nope", "u"); err != ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListAttemptsFilters(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	_ = store.PutQuestionnaire(ctx, testQuestionnaire())
	a1, _ := store.NewAttempt(ctx, "ddand-v1", "u1")
	_, _ = store.NewAttempt(ctx, "ddand-v1", "u2")
	_, _ = store.Submit(ctx, a1.ID)

	byUser, err := store.ListAttempts(ctx, AttemptListOpts{UserID: "u1"})
	if err != nil || len(byUser) != 1 {
		t.Fatalf("by user: %v, %v", byUser, err)
	}
	submitted, err := store.ListAttempts(ctx, AttemptListOpts{Status: StatusSubmitted})
	if err != nil || len(submitted) != 1 || submitted[0].ID != a1.ID {
		t.Fatalf("by status: %v, %v", submitted, err)
	}
}
