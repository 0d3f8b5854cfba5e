package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dravet-care/ddand/internal/billing"
	syncx "github.com/dravet-care/ddand/internal/sync"
)

type grantReq struct {
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at,omitempty"` // RFC 3339; empty means no expiry
}

// POST /admin/entitlements: grant questionnaire access to a caregiver account.
func GrantEntitlementHandler(store billing.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req grantReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			http.Error(w, "user_id required", http.StatusBadRequest)
			return
		}
		ent := billing.Entitlement{UserID: req.UserID}
		if req.ExpiresAt != "" {
			t, err := time.Parse(time.RFC3339, req.ExpiresAt)
			if err != nil {
				http.Error(w, "bad expires_at", http.StatusBadRequest)
				return
			}
			ent.ExpiresAt = t.Unix()
		}
		ent.GrantedBy, _ = subjectAndRole(r)
		if err := store.Grant(r.Context(), ent); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if events != nil {
			if err := events.Append(r.Context(), syncx.TypeEntitlementGrant, req.UserID, ent); err != nil {
				log.Printf("event append: %v", err)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /admin/entitlements/{userID}
func RevokeEntitlementHandler(store billing.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if userID == "" {
			http.Error(w, "userID required", http.StatusBadRequest)
			return
		}
		if err := store.Revoke(r.Context(), userID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /admin/entitlements
func ListEntitlementsHandler(store billing.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if out == nil {
			out = []billing.Entitlement{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}
