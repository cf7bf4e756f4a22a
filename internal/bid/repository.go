package bid

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evcraddock/homebid/internal/apperr"
)

const selectColumns = "b.id, b.property_id, b.user_id, b.amount, b.message, b.status, b.timestamp"

var errNotFound = apperr.New(apperr.NotFound, "Bid not found")

// Repository provides storage for bids.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a bid repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanBid(row interface{ Scan(...interface{}) error }, extra ...interface{}) (*Bid, error) {
	var b Bid
	var message sql.NullString
	dest := append([]interface{}{
		&b.ID, &b.PropertyID, &b.UserID, &b.Amount, &message, &b.Status, &b.Timestamp,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if message.Valid {
		b.Message = &message.String
	}
	return &b, nil
}

// Insert stores a new bid and returns it as stored.
func (r *Repository) Insert(ctx context.Context, b *Bid) (*Bid, error) {
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO bids (id, property_id, user_id, amount, message, status) VALUES (?, ?, ?, ?, ?, ?)",
		b.ID, b.PropertyID, b.UserID, b.Amount, b.Message, b.Status,
	); err != nil {
		return nil, fmt.Errorf("inserting bid: %w", err)
	}
	return r.GetByID(ctx, b.ID)
}

// GetByID returns a bid by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Bid, error) {
	query := "SELECT " + selectColumns + " FROM bids b WHERE b.id = ?"
	b, err := scanBid(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying bid %s: %w", id, err)
	}
	return b, nil
}

// GetWithOwner returns a bid together with the owner of the property it is
// placed on. A bid whose property no longer exists is reported as not found.
func (r *Repository) GetWithOwner(ctx context.Context, id string) (*Bid, string, error) {
	query := "SELECT " + selectColumns + ", p.owner_id FROM bids b " +
		"JOIN properties p ON p.id = b.property_id WHERE b.id = ?"
	var ownerID string
	b, err := scanBid(r.db.QueryRowContext(ctx, query, id), &ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", errNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("querying bid %s: %w", id, err)
	}
	return b, ownerID, nil
}

// ListByProperty returns the bids on a property, newest first.
func (r *Repository) ListByProperty(ctx context.Context, propertyID string) ([]*Bid, error) {
	return r.list(ctx, "WHERE b.property_id = ?", propertyID)
}

// ListByUser returns the bids placed by a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*Bid, error) {
	return r.list(ctx, "WHERE b.user_id = ?", userID)
}

// ListAll returns every bid, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]*Bid, error) {
	return r.list(ctx, "")
}

func (r *Repository) list(ctx context.Context, where string, args ...interface{}) ([]*Bid, error) {
	query := "SELECT " + selectColumns + " FROM bids b " + where + " ORDER BY b.timestamp DESC, b.id"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bids: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("closing rows", "error", closeErr)
		}
	}()

	bids := make([]*Bid, 0)
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bids: %w", err)
	}
	return bids, nil
}

// UpdateStatus sets the status of a bid.
func (r *Repository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE bids SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("updating bid status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}
