package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/evcraddock/homebid/internal/apperr"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is returned by a successful login.
type loginResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}

	id, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		apiError(w, r, err)
		return
	}

	apiMessage(w, "User registered successfully", http.StatusCreated, "user_id", id)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}

	u, err := s.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if apperr.Is(err, apperr.Unauthenticated) {
			slog.InfoContext(r.Context(), "login failed", "username", req.Username)
		}
		apiError(w, r, err)
		return
	}

	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		apiError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "login succeeded", "user_id", u.ID)
	apiJSON(w, loginResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		Token:     token,
		ExpiresAt: expiresAt,
	}, http.StatusOK)
}

// handleLogout exists for clients that call it. Tokens are stateless and
// stay valid until they expire.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	apiMessage(w, "Logged out successfully", http.StatusOK)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	apiJSON(w, c, http.StatusOK)
}
