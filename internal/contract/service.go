package contract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/evcraddock/homebid/internal/access"
	"github.com/evcraddock/homebid/internal/apperr"
	"github.com/evcraddock/homebid/internal/property"
)

// PropertyLookup resolves the property a contract covers.
type PropertyLookup interface {
	Lookup(ctx context.Context, id string) (*property.Property, error)
}

// UserLookup checks that an agent exists.
type UserLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

var errAgentNotFound = apperr.New(apperr.NotFound, "Agent not found")

// Service creates contracts and changes their status.
type Service struct {
	repo       *Repository
	properties PropertyLookup
	users      UserLookup
}

// NewService creates a contract service.
func NewService(repo *Repository, properties PropertyLookup, users UserLookup) *Service {
	return &Service{repo: repo, properties: properties, users: users}
}

// Create records a contract for a property. Only the property's owner or an
// admin may do so. The contract's owner is the property's current owner,
// whoever the caller is. The agent must exist; its role is not checked.
func (s *Service) Create(ctx context.Context, c access.Caller, in Input) (*Contract, error) {
	if err := access.RequireAuthenticated(c); err != nil {
		return nil, err
	}
	t, err := in.validate()
	if err != nil {
		return nil, err
	}

	p, err := s.properties.Lookup(ctx, t.propertyID)
	if err != nil {
		return nil, err
	}

	req := access.Request{Kind: access.Contract, Action: access.Create, OwnerID: p.OwnerID}
	if err := access.Authorize(c, req); err != nil {
		slog.WarnContext(ctx, "contract creation denied", "property_id", p.ID, "caller_id", c.ID)
		return nil, err
	}

	ok, err := s.users.Exists(ctx, t.agentID)
	if err != nil {
		return nil, fmt.Errorf("checking agent: %w", err)
	}
	if !ok {
		return nil, errAgentNotFound
	}

	created, err := s.repo.Insert(ctx, &Contract{
		ID:         uuid.NewString(),
		PropertyID: p.ID,
		OwnerID:    p.OwnerID,
		AgentID:    t.agentID,
		Commission: t.commission,
		Status:     StatusPending,
		StartDate:  t.start,
		EndDate:    t.end,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "contract created",
		"contract_id", created.ID, "property_id", p.ID, "agent_id", t.agentID, "caller_id", c.ID)
	return created, nil
}

// ListOwn returns the contracts where the caller is the owner or the agent.
// The query itself restricts rows to the caller's parties, admins included.
func (s *Service) ListOwn(ctx context.Context, c access.Caller) ([]*Contract, error) {
	if err := access.RequireAuthenticated(c); err != nil {
		return nil, err
	}
	return s.repo.ListForUser(ctx, c.ID)
}

// ListAll returns every contract. Admin only.
func (s *Service) ListAll(ctx context.Context, c access.Caller) ([]*Contract, error) {
	if err := access.Authorize(c, access.Request{Kind: access.Contract, Action: access.Admin}); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

// SetStatus changes a contract's status. The owner, the agent, or an admin may do so.
func (s *Service) SetStatus(ctx context.Context, c access.Caller, id, status string) (*Contract, error) {
	if err := access.RequireAuthenticated(c); err != nil {
		return nil, err
	}
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}

	ct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req := access.Request{Kind: access.Contract, Action: access.UpdateStatus, OwnerID: ct.OwnerID, AgentID: ct.AgentID}
	if err := access.Authorize(c, req); err != nil {
		slog.WarnContext(ctx, "contract status change denied", "contract_id", id, "caller_id", c.ID)
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	ct.Status = status
	slog.InfoContext(ctx, "contract status changed", "contract_id", id, "status", status, "caller_id", c.ID)
	return ct, nil
}
