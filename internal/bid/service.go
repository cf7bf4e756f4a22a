package bid

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/evcraddock/homebid/internal/access"
	"github.com/evcraddock/homebid/internal/property"
)

// PropertyLookup resolves the property a bid targets.
type PropertyLookup interface {
	Lookup(ctx context.Context, id string) (*property.Property, error)
}

// Service places bids and changes their status.
type Service struct {
	repo       *Repository
	properties PropertyLookup
}

// NewService creates a bid service.
func NewService(repo *Repository, properties PropertyLookup) *Service {
	return &Service{repo: repo, properties: properties}
}

// Create places a bid by the caller. The property must exist.
// Owners may bid on their own listings.
func (s *Service) Create(ctx context.Context, c access.Caller, in Input) (*Bid, error) {
	if err := access.Authorize(c, access.Request{Kind: access.Bid, Action: access.Create}); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	propertyID := strings.TrimSpace(*in.PropertyID)
	if _, err := s.properties.Lookup(ctx, propertyID); err != nil {
		return nil, err
	}

	b, err := s.repo.Insert(ctx, &Bid{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		UserID:     c.ID,
		Amount:     *in.Amount,
		Message:    in.Message,
		Status:     StatusPending,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "bid placed", "bid_id", b.ID, "property_id", propertyID, "user_id", c.ID)
	return b, nil
}

// ListByProperty returns the bids on a property. Reads are public and an
// unknown property simply has no bids.
func (s *Service) ListByProperty(ctx context.Context, propertyID string) ([]*Bid, error) {
	return s.repo.ListByProperty(ctx, propertyID)
}

// ListOwn returns the bids placed by the caller.
func (s *Service) ListOwn(ctx context.Context, c access.Caller) ([]*Bid, error) {
	req := access.Request{Kind: access.Bid, Action: access.ReadOwn, SubjectID: c.ID}
	if err := access.Authorize(c, req); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, c.ID)
}

// ListAll returns every bid. Admin only.
func (s *Service) ListAll(ctx context.Context, c access.Caller) ([]*Bid, error) {
	if err := access.Authorize(c, access.Request{Kind: access.Bid, Action: access.Admin}); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

// SetStatus changes a bid's status. Only the owner of the property the bid
// is placed on, or an admin, may do so. The bidder alone may not.
func (s *Service) SetStatus(ctx context.Context, c access.Caller, id, status string) (*Bid, error) {
	if err := access.RequireAuthenticated(c); err != nil {
		return nil, err
	}
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}

	b, ownerID, err := s.repo.GetWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	req := access.Request{Kind: access.Bid, Action: access.UpdateStatus, OwnerID: ownerID, SubjectID: b.UserID}
	if err := access.Authorize(c, req); err != nil {
		slog.WarnContext(ctx, "bid status change denied", "bid_id", id, "caller_id", c.ID)
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	b.Status = status
	slog.InfoContext(ctx, "bid status changed", "bid_id", id, "status", status, "caller_id", c.ID)
	return b, nil
}
