// Package billing gates access to the questionnaire. Payment processing
// itself happens outside this service; here an entitlement is just a record
// that a user may take the interview, granted by an admin or by the external
// payment callback.
package billing

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Entitlement struct {
	UserID    string `json:"user_id"`
	GrantedBy string `json:"granted_by,omitempty"`
	GrantedAt int64  `json:"granted_at"`
	// ExpiresAt 0 means no expiry (clinic licences).
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

type Store interface {
	HasAccess(ctx context.Context, userID string) (bool, error)
	Grant(ctx context.Context, e Entitlement) error
	Revoke(ctx context.Context, userID string) error
	List(ctx context.Context) ([]Entitlement, error)
}

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) HasAccess(ctx context.Context, userID string) (bool, error) {
	var expires sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT expires_at FROM entitlements WHERE user_id=$1`, userID).Scan(&expires)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if expires.Valid && expires.Int64 != 0 && expires.Int64 < time.Now().Unix() {
		return false, nil
	}
	return true, nil
}

func (s *SQLStore) Grant(ctx context.Context, e Entitlement) error {
	if e.GrantedAt == 0 {
		e.GrantedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entitlements (user_id, granted_by, granted_at, expires_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (user_id) DO UPDATE SET granted_by=EXCLUDED.granted_by,
		   granted_at=EXCLUDED.granted_at, expires_at=EXCLUDED.expires_at`,
		e.UserID, e.GrantedBy, e.GrantedAt, nullableInt(e.ExpiresAt))
	return err
}

func (s *SQLStore) Revoke(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entitlements WHERE user_id=$1`, userID)
	return err
}

func (s *SQLStore) List(ctx context.Context) ([]Entitlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, granted_by, granted_at, COALESCE(expires_at,0) FROM entitlements ORDER BY granted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entitlement
	for rows.Next() {
		var e Entitlement
		if err := rows.Scan(&e.UserID, &e.GrantedBy, &e.GrantedAt, &e.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullableInt(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
