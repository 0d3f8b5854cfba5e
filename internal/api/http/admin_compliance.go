package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// -----------------------------
// Admin: Compliance & Audit
// -----------------------------

// HandleAdminPIIExport returns everything stored about a user as a
// downloadable JSON file: the account record and the raw answers of every
// attempt. Answers are personal health data, so they belong in the export.
func HandleAdminPIIExport(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			http.Error(w, "user_id required", http.StatusBadRequest)
			return
		}

		var id, username, role string
		err := db.QueryRowContext(r.Context(),
			`SELECT id, username, role FROM users WHERE id=$1 OR username=$1`,
			req.UserID).Scan(&id, &username, &role)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		rows, err := db.QueryContext(r.Context(),
			`SELECT id, quiz_id, status, answers_json, started_at, submitted_at
			 FROM attempts WHERE user_id=$1 ORDER BY started_at`, id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		attempts := []map[string]any{}
		for rows.Next() {
			var aid, quizID, status, answers string
			var started int64
			var submitted sql.NullInt64
			if err := rows.Scan(&aid, &quizID, &status, &answers, &started, &submitted); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			a := map[string]any{
				"id": aid, "quiz_id": quizID, "status": status,
				"answers":    json.RawMessage(answers),
				"started_at": started,
			}
			if submitted.Valid {
				a["submitted_at"] = submitted.Int64
			}
			attempts = append(attempts, a)
		}

		resp := map[string]any{
			"id":       id,
			"username": username,
			"role":     role,
			"attempts": attempts,
		}

		filename := fmt.Sprintf("pii_%s.json", id)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleAdminPIIDelete removes all data held for a user: attempts,
// entitlement and the account itself.
func HandleAdminPIIDelete(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			http.Error(w, "user_id required", http.StatusBadRequest)
			return
		}

		tx, err := db.BeginTx(r.Context(), nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(r.Context(),
			`DELETE FROM attempts WHERE user_id=$1`, req.UserID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := tx.ExecContext(r.Context(),
			`DELETE FROM entitlements WHERE user_id=$1`, req.UserID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := tx.ExecContext(r.Context(),
			`DELETE FROM users WHERE id=$1 OR username=$1`, req.UserID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// HandleAdminAuditSearch queries the event_log for recent events, filtered by q.
func HandleAdminAuditSearch(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")

		rows, err := db.QueryContext(r.Context(),
			`SELECT typ, key, data, created_at FROM event_log
			 WHERE typ LIKE '%'||$1||'%' OR key LIKE '%'||$1||'%'
			 ORDER BY created_at DESC LIMIT 100`, q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []map[string]any{}
		for rows.Next() {
			var typ, key, data string
			var createdAt int64
			if err := rows.Scan(&typ, &key, &data, &createdAt); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, map[string]any{
				"typ":        typ,
				"key":        key,
				"data":       data,
				"created_at": time.Unix(createdAt, 0),
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}
