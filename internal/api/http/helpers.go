package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	authmw "github.com/dravet-care/ddand/internal/auth/middleware"
	"github.com/dravet-care/ddand/internal/rbac"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func subjectAndRole(r *http.Request) (sub, role string) {
	return authmw.SubjectFromContext(r.Context()), rbac.RoleFromContext(r.Context())
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
