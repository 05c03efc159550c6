package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iMallco/iMall/internal/crypto"
)

func protected(t *testing.T, issuer *crypto.TokenIssuer) http.Handler {
	t.Helper()
	return JWTAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("user ID missing from context")
		}
		email, _ := UserEmailFromContext(r.Context())
		json.NewEncoder(w).Encode(map[string]string{"id": id, "email": email})
	}))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Success {
		t.Error("error body has success=true")
	}
	return body.Error
}

func TestJWTAuth(t *testing.T) {
	issuer := crypto.NewTokenIssuer("test-secret", time.Hour)
	valid, err := issuer.Issue("u1", "jo@example.com")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	expired, err := issuer.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue("u1", "jo@example.com")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantError: "Access token required"},
		{name: "bearer without token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantError: "Access token required"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantError: "Access token required"},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusForbidden, wantError: "Invalid or expired token"},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusForbidden, wantError: "Invalid or expired token"},
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK},
		{name: "uppercase scheme", header: "BEARER " + valid, wantStatus: http.StatusOK},
		{name: "lowercase scheme garbage token", header: "bearer junk", wantStatus: http.StatusForbidden, wantError: "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected(t, issuer).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantError != "" {
				if got := decodeError(t, rec); got != tt.wantError {
					t.Errorf("error = %q, want %q", got, tt.wantError)
				}
				return
			}

			var body map[string]string
			json.NewDecoder(rec.Body).Decode(&body)
			if body["id"] != "u1" || body["email"] != "jo@example.com" {
				t.Errorf("context claims = %v", body)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeError(t, rec); got != "internal server error" {
		t.Errorf("error = %q", got)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
