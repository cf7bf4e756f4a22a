package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evcraddock/homebid/internal/access"
	"github.com/evcraddock/homebid/internal/apperr"
)

func TestAuthenticateMiddleware(t *testing.T) {
	tokens, _, u := testTokenService(t)

	raw, _, err := tokens.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		wantID   string
		wantKind apperr.Kind
	}{
		{"no header", "", "", apperr.Unauthenticated},
		{"valid token", "Bearer " + raw, u.ID, -1},
		{"invalid token", "Bearer nope", "", apperr.Unauthenticated},
		{"wrong scheme", "Token " + raw, "", apperr.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got    access.Caller
				gotErr error
				called bool
			)
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				got, gotErr = CallerFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest("GET", "/api/properties", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			Authenticate(tokens, inner).ServeHTTP(w, r)

			if !called {
				t.Fatal("middleware must pass every request through")
			}
			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if got.ID != tt.wantID {
				t.Errorf("caller id = %q, want %q", got.ID, tt.wantID)
			}
			if tt.wantKind == -1 {
				if gotErr != nil {
					t.Errorf("unexpected error: %v", gotErr)
				}
				return
			}
			if apperr.KindOf(gotErr) != tt.wantKind {
				t.Errorf("err = %v, want kind %v", gotErr, tt.wantKind)
			}
		})
	}
}

func TestCallerFromContextWithoutMiddleware(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	c, err := CallerFromContext(r.Context())
	if c.Authenticated() {
		t.Error("expected anonymous caller")
	}
	if !apperr.Is(err, apperr.Unauthenticated) {
		t.Errorf("err = %v, want unauthenticated", err)
	}
}
