package quiz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Attempt is one caregiver's pass through the questionnaire. Computed scores
// are never stored; the report layer recomputes them from the frozen answers.
type Attempt struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quiz_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"` // in_progress|submitted
	Answers     AnswerSet `json:"answers"`
	StartedAt   int64     `json:"started_at"`
	SubmittedAt int64     `json:"submitted_at,omitempty"`
}

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
)

// AttemptListOpts filters ListAttempts.
type AttemptListOpts struct {
	QuizID string
	UserID string
	Status string
	Limit  int
	Offset int
}

type Store interface {
	PutQuestionnaire(ctx context.Context, q Questionnaire) error
	GetQuestionnaire(ctx context.Context, id string) (Questionnaire, error)

	NewAttempt(ctx context.Context, quizID, userID string) (Attempt, error)
	SaveAnswers(ctx context.Context, attemptID string, answers AnswerSet) (Attempt, error)
	Submit(ctx context.Context, attemptID string) (Attempt, error)
	GetAttempt(ctx context.Context, attemptID string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
}

type memoryStore struct {
	mu       sync.RWMutex
	quizzes  map[string]Questionnaire
	attempts map[string]Attempt
}

// NewInMemoryStore backs the store with process memory; used by tests and
// throwaway dev setups.
func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:  map[string]Questionnaire{},
		attempts: map[string]Attempt{},
	}
}

func (m *memoryStore) PutQuestionnaire(_ context.Context, q Questionnaire) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuestionnaire(_ context.Context, id string) (Questionnaire, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Questionnaire{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) NewAttempt(_ context.Context, quizID, userID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[quizID]; !ok {
		return Attempt{}, ErrNotFound
	}
	a := Attempt{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		UserID:    userID,
		Status:    StatusInProgress,
		Answers:   AnswerSet{},
		StartedAt: time.Now().Unix(),
	}
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) SaveAnswers(_ context.Context, attemptID string, answers AnswerSet) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	if a.Status == StatusSubmitted {
		return Attempt{}, ErrAlreadySubmitted
	}
	if err := answers.Validate(); err != nil {
		return Attempt{}, err
	}
	for k, v := range answers {
		a.Answers[k] = v
	}
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) Submit(_ context.Context, attemptID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	if a.Status == StatusSubmitted {
		return a, nil
	}
	if err := a.Answers.Validate(); err != nil {
		return Attempt{}, err
	}
	a.Status = StatusSubmitted
	a.SubmittedAt = time.Now().Unix()
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, attemptID string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Attempt
	for _, a := range m.attempts {
		if opts.QuizID != "" && a.QuizID != opts.QuizID {
			continue
		}
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
