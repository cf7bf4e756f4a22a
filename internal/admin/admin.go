// Package admin implements the admin-only views over users, bids and contracts.
package admin

import (
	"context"
	"log/slog"

	"github.com/evcraddock/homebid/internal/access"
	"github.com/evcraddock/homebid/internal/auth"
	"github.com/evcraddock/homebid/internal/bid"
	"github.com/evcraddock/homebid/internal/contract"
)

// Service exposes the admin operations. Every call requires an admin caller.
type Service struct {
	users     *auth.UserStore
	bids      *bid.Service
	contracts *contract.Service
}

// NewService creates an admin service.
func NewService(users *auth.UserStore, bids *bid.Service, contracts *contract.Service) *Service {
	return &Service{users: users, bids: bids, contracts: contracts}
}

// ListUsers returns every user without password hashes.
func (s *Service) ListUsers(ctx context.Context, c access.Caller) ([]*auth.User, error) {
	if err := access.Authorize(c, access.Request{Kind: access.User, Action: access.Admin}); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// DeleteUser removes a user. Properties, bids and contracts that reference
// the user are left in place.
func (s *Service) DeleteUser(ctx context.Context, c access.Caller, id string) error {
	if err := access.Authorize(c, access.Request{Kind: access.User, Action: access.Delete, SubjectID: id}); err != nil {
		slog.WarnContext(ctx, "user deletion denied", "user_id", id, "caller_id", c.ID)
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user deleted", "user_id", id, "caller_id", c.ID)
	return nil
}

// ListBids returns every bid.
func (s *Service) ListBids(ctx context.Context, c access.Caller) ([]*bid.Bid, error) {
	return s.bids.ListAll(ctx, c)
}

// ListContracts returns every contract.
func (s *Service) ListContracts(ctx context.Context, c access.Caller) ([]*contract.Contract, error) {
	return s.contracts.ListAll(ctx, c)
}
