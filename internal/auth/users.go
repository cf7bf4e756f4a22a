package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/homebid/internal/access"
	"github.com/evcraddock/homebid/internal/apperr"
	"github.com/evcraddock/homebid/internal/db"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         access.Role `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// Caller returns the caller identity for u.
func (u *User) Caller() access.Caller {
	return access.Caller{ID: u.ID, Username: u.Username, Role: u.Role}
}

// seedAccount is a fixed account created at startup when missing.
type seedAccount struct {
	id, username, email, password string
	role                          access.Role
}

var seedAccounts = []seedAccount{
	{"user-1", "muser", "muser@example.com", "muser", access.RoleUser},
	{"admin-1", "mvc", "mvc@example.com", "mvc", access.RoleAdmin},
}

var errInvalidCredentials = apperr.New(apperr.Unauthenticated, "Invalid credentials")

// UserStore manages user accounts in SQLite.
type UserStore struct {
	db   *sql.DB
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserStore creates a user store that hashes passwords at the given bcrypt cost.
func NewUserStore(db *sql.DB, cost int) *UserStore {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserStore{db: db, cost: cost}
}

// Register creates a user with role user and returns its id.
func (s *UserStore) Register(ctx context.Context, username, email, password string) (string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	switch {
	case username == "":
		return "", apperr.MissingField("username")
	case email == "":
		return "", apperr.MissingField("email")
	case password == "":
		return "", apperr.MissingField("password")
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ? OR email = ?", username, email,
	).Scan(&count); err != nil {
		return "", fmt.Errorf("checking existing user: %w", err)
	}
	if count > 0 {
		return "", apperr.New(apperr.Conflict, "Username or email already exists")
	}

	id := uuid.NewString()
	if err := s.insert(ctx, id, username, email, password, access.RoleUser); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "user registered", "user_id", id, "username", username)
	return id, nil
}

func (s *UserStore) insert(ctx context.Context, id, username, email, password string, role access.Role) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password, role) VALUES (?, ?, ?, ?, ?)",
		id, username, email, string(hash), string(role),
	); err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.Wrap(apperr.Conflict, "Username or email already exists", err)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// Authenticate checks a username and password.
// Unknown usernames and wrong passwords fail identically.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "Username and password are required")
	}

	u, err := s.getBy(ctx, "username", strings.TrimSpace(username))
	if apperr.Is(err, apperr.NotFound) {
		// Burn a comparison so response timing matches a wrong password.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	return u, nil
}

func (s *UserStore) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("homebid-timing-pad"), s.cost)
		if err != nil {
			slog.Warn("generating dummy hash", "error", err)
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// GetByID returns a user by id, or a NotFound error.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	return s.getBy(ctx, "id", id)
}

// Exists reports whether a user with the given id exists.
func (s *UserStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", id).Scan(&count); err != nil {
		return false, fmt.Errorf("checking user %s: %w", id, err)
	}
	return count > 0, nil
}

func (s *UserStore) getBy(ctx context.Context, column, value string) (*User, error) {
	var u User
	var role string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id, username, email, password, role, created_at FROM users WHERE %s = ?", column),
		value,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Wrap(apperr.NotFound, "User not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	u.Role = access.Role(role)
	return &u, nil
}

// List returns all users ordered by creation time.
func (s *UserStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, email, role, created_at FROM users ORDER BY created_at, username",
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("closing rows", "error", cerr)
		}
	}()

	users := make([]*User, 0)
	for rows.Next() {
		var u User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Role = access.Role(role)
		users = append(users, &u)
	}

	return users, rows.Err()
}

// Delete removes a user by id. Rows that reference the user are left in place.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return apperr.New(apperr.NotFound, "User not found")
	}

	return nil
}

// Seed creates the built-in accounts whose usernames are not taken yet.
func (s *UserStore) Seed(ctx context.Context) error {
	for _, a := range seedAccounts {
		var count int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE username = ?", a.username,
		).Scan(&count); err != nil {
			return fmt.Errorf("checking seed user %s: %w", a.username, err)
		}
		if count > 0 {
			continue
		}
		if err := s.insert(ctx, a.id, a.username, a.email, a.password, a.role); err != nil {
			return fmt.Errorf("seeding %s: %w", a.username, err)
		}
		slog.InfoContext(ctx, "seeded account", "username", a.username, "role", a.role)
	}
	return nil
}
