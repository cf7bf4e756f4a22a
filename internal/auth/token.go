package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/evcraddock/homebid/internal/access"
	"github.com/evcraddock/homebid/internal/apperr"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 24 * time.Hour

var (
	errTokenMissing = apperr.New(apperr.Unauthenticated, "Token is missing")
	errTokenInvalid = apperr.New(apperr.Unauthenticated, "Token is invalid")
)

// Claims is the signed payload of a bearer token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserLookup resolves a token subject to a live user record.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
	now    func() time.Time
}

// NewTokenService creates a token service. A zero ttl means DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration, users UserLookup) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
}

// Issue signs a token for u and returns it with its expiry. Claims carry
// whole seconds, so now is truncated before exp is derived from it and the
// returned expiry matches the signed one.
func (s *TokenService) Issue(u *User) (string, time.Time, error) {
	now := s.now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		Username: u.Username,
		Role:     string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks a raw token and resolves it to the caller's live identity.
//
// A token is expired from the instant now reaches exp. Every token failure,
// including a subject that no longer exists, returns the same
// Unauthenticated error. The role comes from the stored user row,
// not from the token's claim.
func (s *TokenService) Verify(ctx context.Context, raw string) (access.Caller, error) {
	if raw == "" {
		return access.Caller{}, errTokenMissing
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		slog.DebugContext(ctx, "token rejected", "error", err)
		return access.Caller{}, errTokenInvalid
	}

	if claims.Subject == "" {
		return access.Caller{}, errTokenInvalid
	}

	u, err := s.users.GetByID(ctx, claims.Subject)
	if apperr.Is(err, apperr.NotFound) {
		slog.DebugContext(ctx, "token subject no longer exists", "user_id", claims.Subject)
		return access.Caller{}, errTokenInvalid
	}
	if err != nil {
		return access.Caller{}, fmt.Errorf("resolving token subject: %w", err)
	}

	return u.Caller(), nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// It returns "" when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
