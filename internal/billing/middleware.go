package billing

import (
	"net/http"

	authmw "github.com/dravet-care/ddand/internal/auth/middleware"
	"github.com/dravet-care/ddand/internal/rbac"
)

// RequireEntitlement blocks quiz and attempt routes for users without an
// active entitlement. Clinicians and admins are never gated; they do not
// take the interview for themselves.
func RequireEntitlement(store Store, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			role := rbac.RoleFromContext(r.Context())
			if role == "clinician" || role == "admin" {
				next.ServeHTTP(w, r)
				return
			}
			sub := authmw.SubjectFromContext(r.Context())
			if sub == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ok, err := store.HasAccess(r.Context(), sub)
			if err != nil {
				http.Error(w, "entitlement check failed", http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Error(w, "subscription required", http.StatusPaymentRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
