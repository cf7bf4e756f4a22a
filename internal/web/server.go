// Package web provides the HTTP/JSON API server for homebid.
package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/evcraddock/homebid/internal/admin"
	"github.com/evcraddock/homebid/internal/auth"
	"github.com/evcraddock/homebid/internal/bid"
	"github.com/evcraddock/homebid/internal/cache"
	"github.com/evcraddock/homebid/internal/contract"
	"github.com/evcraddock/homebid/internal/logging"
	"github.com/evcraddock/homebid/internal/property"
)

// shutdownTimeout bounds how long in-flight requests get after a stop signal.
const shutdownTimeout = 10 * time.Second

// Server is the API HTTP server.
type Server struct {
	users      *auth.UserStore
	tokens     *auth.TokenService
	properties *property.Service
	bids       *bid.Service
	contracts  *contract.Service
	admin      *admin.Service
	mux        *http.ServeMux
	handler    http.Handler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	cache cache.Store
}

// WithCache serves public property reads through store.
func WithCache(store cache.Store) Option {
	return func(o *serverOptions) { o.cache = store }
}

// NewServer creates an API server backed by db.
func NewServer(db *sql.DB, cfg auth.Config, opts ...Option) *Server {
	o := serverOptions{cache: cache.Noop{}}
	for _, opt := range opts {
		opt(&o)
	}

	users := auth.NewUserStore(db, cfg.HashCost)
	properties := property.NewService(property.NewRepository(db), o.cache)
	bids := bid.NewService(bid.NewRepository(db), properties)
	contracts := contract.NewService(contract.NewRepository(db), properties, users)

	s := &Server{
		users:      users,
		tokens:     auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, users),
		properties: properties,
		bids:       bids,
		contracts:  contracts,
		admin:      admin.NewService(users, bids, contracts),
		mux:        http.NewServeMux(),
	}
	s.routes()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{logging.RequestIDHeader},
	})

	s.handler = logging.RequestLogger(c.Handler(auth.Authenticate(s.tokens, s.mux)))
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("GET /api/auth/me", s.handleMe)

	s.mux.HandleFunc("GET /api/properties", s.handleListProperties)
	s.mux.HandleFunc("POST /api/properties", s.handleCreateProperty)
	s.mux.HandleFunc("GET /api/properties/{id}", s.handleGetProperty)
	s.mux.HandleFunc("PUT /api/properties/{id}", s.handleUpdateProperty)
	s.mux.HandleFunc("DELETE /api/properties/{id}", s.handleDeleteProperty)

	s.mux.HandleFunc("POST /api/bids", s.handleCreateBid)
	s.mux.HandleFunc("GET /api/bids/property/{id}", s.handlePropertyBids)
	s.mux.HandleFunc("GET /api/bids/user", s.handleUserBids)
	s.mux.HandleFunc("PUT /api/bids/{id}/status", s.handleBidStatus)

	s.mux.HandleFunc("POST /api/contracts", s.handleCreateContract)
	s.mux.HandleFunc("GET /api/contracts/user", s.handleUserContracts)
	s.mux.HandleFunc("PUT /api/contracts/{id}/status", s.handleContractStatus)

	s.mux.HandleFunc("GET /api/admin/users", s.handleAdminUsers)
	s.mux.HandleFunc("DELETE /api/admin/users/{id}", s.handleAdminDeleteUser)
	s.mux.HandleFunc("GET /api/admin/bids", s.handleAdminBids)
	s.mux.HandleFunc("GET /api/admin/contracts", s.handleAdminContracts)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Seed creates the built-in accounts.
func (s *Server) Seed(ctx context.Context) error {
	return s.users.Seed(ctx)
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
