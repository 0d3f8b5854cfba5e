package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutQuestionnaire(ctx context.Context, q Questionnaire) error {
	sj, err := json.Marshal(q.Sections)
	if err != nil {
		return err
	}
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO questionnaires (id,title,sections_json,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, sections_json=EXCLUDED.sections_json, questions_json=EXCLUDED.questions_json`,
		q.ID, q.Title, string(sj), string(qj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetQuestionnaire(ctx context.Context, id string) (Questionnaire, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,sections_json,questions_json,created_at FROM questionnaires WHERE id=$1`, id)
	var q Questionnaire
	var sj, qj string
	if err := row.Scan(&q.ID, &q.Title, &sj, &qj, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Questionnaire{}, ErrNotFound
		}
		return Questionnaire{}, err
	}
	if err := json.Unmarshal([]byte(sj), &q.Sections); err != nil {
		return Questionnaire{}, err
	}
	if err := json.Unmarshal([]byte(qj), &q.Questions); err != nil {
		return Questionnaire{}, err
	}
	return q, nil
}

func (s *SQLStore) NewAttempt(ctx context.Context, quizID, userID string) (Attempt, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM questionnaires WHERE id=$1`, quizID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, err
	}
	a := Attempt{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		UserID:    userID,
		Status:    StatusInProgress,
		Answers:   AnswerSet{},
		StartedAt: time.Now().Unix(),
	}
	aj, _ := json.Marshal(a.Answers)
	_, err := s.db.ExecContext(ctx, `INSERT INTO attempts (id,quiz_id,user_id,status,answers_json,started_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.QuizID, a.UserID, a.Status, string(aj), a.StartedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) SaveAnswers(ctx context.Context, attemptID string, answers AnswerSet) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		return Attempt{}, ErrAlreadySubmitted
	}
	if err := answers.Validate(); err != nil {
		return Attempt{}, err
	}
	if a.Answers == nil {
		a.Answers = AnswerSet{}
	}
	for k, v := range answers {
		a.Answers[k] = v
	}
	buf, _ := json.Marshal(a.Answers)
	if _, err := s.db.ExecContext(ctx, `UPDATE attempts SET answers_json=$1 WHERE id=$2`, string(buf), attemptID); err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(ctx, attemptID)
}

func (s *SQLStore) Submit(ctx context.Context, attemptID string) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		return a, nil
	}
	if err := a.Answers.Validate(); err != nil {
		return Attempt{}, err
	}
	now := time.Now().Unix()
	if _, err := s.db.ExecContext(ctx, `UPDATE attempts SET status=$1, submitted_at=$2 WHERE id=$3`,
		StatusSubmitted, now, attemptID); err != nil {
		return Attempt{}, err
	}
	a.Status = StatusSubmitted
	a.SubmittedAt = now
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, attemptID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,user_id,status,answers_json,started_at,COALESCE(submitted_at,0)
		FROM attempts WHERE id=$1`, attemptID)
	var a Attempt
	var aj string
	if err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Status, &aj, &a.StartedAt, &a.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(aj), &a.Answers); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	var where []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if opts.QuizID != "" {
		add("quiz_id=$%d", opts.QuizID)
	}
	if opts.UserID != "" {
		add("user_id=$%d", opts.UserID)
	}
	if opts.Status != "" {
		add("status=$%d", opts.Status)
	}
	q := `SELECT id,quiz_id,user_id,status,answers_json,started_at,COALESCE(submitted_at,0) FROM attempts`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY started_at DESC"
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	args = append(args, opts.Limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, opts.Offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var aj string
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Status, &aj, &a.StartedAt, &a.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &a.Answers); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
