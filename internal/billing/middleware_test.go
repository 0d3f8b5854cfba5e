package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	authmw "github.com/dravet-care/ddand/internal/auth/middleware"
	"github.com/dravet-care/ddand/internal/rbac"
)

type fakeStore struct{ granted map[string]bool }

func (f *fakeStore) HasAccess(_ context.Context, userID string) (bool, error) {
	return f.granted[userID], nil
}
func (f *fakeStore) Grant(_ context.Context, e Entitlement) error {
	f.granted[e.UserID] = true
	return nil
}
func (f *fakeStore) Revoke(_ context.Context, userID string) error {
	delete(f.granted, userID)
	return nil
}
func (f *fakeStore) List(context.Context) ([]Entitlement, error) { return nil, nil }

func doRequest(t *testing.T, mw func(http.Handler) http.Handler, sub, role string) int {
	t.Helper()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest("GET", "/quiz", nil)
	ctx := authmw.WithSubject(req.Context(), sub)
	ctx = rbac.WithRole(ctx, role)
	rec := httptest.NewRecorder()
	mw(ok).ServeHTTP(rec, req.WithContext(ctx))
	return rec.Code
}

func TestRequireEntitlement(t *testing.T) {
	store := &fakeStore{granted: map[string]bool{"paid": true}}
	mw := RequireEntitlement(store, true)

	if code := doRequest(t, mw, "paid", "caregiver"); code != http.StatusOK {
		t.Errorf("entitled caregiver: %d", code)
	}
	if code := doRequest(t, mw, "unpaid", "caregiver"); code != http.StatusPaymentRequired {
		t.Errorf("unentitled caregiver: %d, want 402", code)
	}
	if code := doRequest(t, mw, "doc", "clinician"); code != http.StatusOK {
		t.Errorf("clinician should bypass gating: %d", code)
	}
	if code := doRequest(t, mw, "", "caregiver"); code != http.StatusUnauthorized {
		t.Errorf("missing subject: %d, want 401", code)
	}
}

func TestRequireEntitlementDisabled(t *testing.T) {
	store := &fakeStore{granted: map[string]bool{}}
	mw := RequireEntitlement(store, false)
	if code := doRequest(t, mw, "anyone", "caregiver"); code != http.StatusOK {
		t.Errorf("disabled gate should pass everyone: %d", code)
	}
}
