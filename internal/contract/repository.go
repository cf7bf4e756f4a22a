package contract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evcraddock/homebid/internal/apperr"
)

const selectColumns = `id, property_id, owner_id, agent_id, commission, status,
	start_date, end_date, created_at`

var errNotFound = apperr.New(apperr.NotFound, "Contract not found")

// Repository provides storage for contracts.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a contract repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanContract(row interface{ Scan(...interface{}) error }) (*Contract, error) {
	var c Contract
	var start, end sql.NullTime
	if err := row.Scan(
		&c.ID, &c.PropertyID, &c.OwnerID, &c.AgentID, &c.Commission, &c.Status,
		&start, &end, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	c.StartDate = start.Time
	c.EndDate = end.Time
	return &c, nil
}

// Insert stores a new contract and returns it as stored.
func (r *Repository) Insert(ctx context.Context, c *Contract) (*Contract, error) {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO contracts (id, property_id, owner_id, agent_id, commission, status, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PropertyID, c.OwnerID, c.AgentID, c.Commission, c.Status, c.StartDate, c.EndDate,
	); err != nil {
		return nil, fmt.Errorf("inserting contract: %w", err)
	}
	return r.GetByID(ctx, c.ID)
}

// GetByID returns a contract by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Contract, error) {
	query := fmt.Sprintf("SELECT %s FROM contracts WHERE id = ?", selectColumns)
	c, err := scanContract(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying contract %s: %w", id, err)
	}
	return c, nil
}

// ListForUser returns the contracts where the user is the owner or the agent.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]*Contract, error) {
	return r.list(ctx, "WHERE owner_id = ? OR agent_id = ?", userID, userID)
}

// ListAll returns every contract.
func (r *Repository) ListAll(ctx context.Context) ([]*Contract, error) {
	return r.list(ctx, "")
}

func (r *Repository) list(ctx context.Context, where string, args ...interface{}) ([]*Contract, error) {
	query := fmt.Sprintf("SELECT %s FROM contracts %s ORDER BY created_at DESC, id", selectColumns, where)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("closing rows", "error", closeErr)
		}
	}()

	contracts := make([]*Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contracts: %w", err)
	}
	return contracts, nil
}

// UpdateStatus sets the status of a contract.
func (r *Repository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE contracts SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("updating contract status: %w", err)
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
