package property

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evcraddock/homebid/internal/apperr"
)

// Repository provides CRUD operations for properties.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a property repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const insertSQL = `INSERT INTO properties
	(id, title, description, type, property_type, price, bedrooms, bathrooms, area,
	 street, city, state, zip_code, features, images, owner_id, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const updateSQL = `UPDATE properties SET
	title = ?, description = ?, type = ?, property_type = ?, price = ?,
	bedrooms = ?, bathrooms = ?, area = ?, street = ?, city = ?,
	state = ?, zip_code = ?, features = ?, images = ?, status = ?
	WHERE id = ?`

const selectColumns = `id, title, description, type, property_type, price, bedrooms, bathrooms, area,
	street, city, state, zip_code, features, images, owner_id, status, listed_at`

var errNotFound = apperr.New(apperr.NotFound, "Property not found")

// scanProperty scans a property from a database row.
func scanProperty(row interface{ Scan(...interface{}) error }) (*Property, error) {
	var p Property
	var description, street, zipCode, features, images sql.NullString
	var bedrooms sql.NullInt64
	var bathrooms sql.NullFloat64

	err := row.Scan(
		&p.ID, &p.Title, &description, &p.ListingType, &p.PropertyType, &p.Price,
		&bedrooms, &bathrooms, &p.Area, &street, &p.City, &p.State, &zipCode,
		&features, &images, &p.OwnerID, &p.Status, &p.ListedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		p.Description = &description.String
	}
	if street.Valid {
		p.Street = &street.String
	}
	if zipCode.Valid {
		p.ZipCode = &zipCode.String
	}
	if bedrooms.Valid {
		p.Bedrooms = &bedrooms.Int64
	}
	if bathrooms.Valid {
		p.Bathrooms = &bathrooms.Float64
	}
	p.Features = decodeList(features)
	p.Images = decodeList(images)

	return &p, nil
}

// Insert adds a new property and returns it as stored.
func (r *Repository) Insert(ctx context.Context, p *Property) (*Property, error) {
	features, images, err := encodeLists(p)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, insertSQL,
		p.ID, p.Title, p.Description, p.ListingType, p.PropertyType, p.Price,
		p.Bedrooms, p.Bathrooms, p.Area, p.Street, p.City, p.State, p.ZipCode,
		features, images, p.OwnerID, p.Status,
	); err != nil {
		return nil, fmt.Errorf("inserting property: %w", err)
	}

	return r.GetByID(ctx, p.ID)
}

// GetByID returns a property by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE id = ?", selectColumns)
	p, err := scanProperty(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %s: %w", id, err)
	}
	return p, nil
}

// ListOptions controls filtering for List. Empty fields match everything.
type ListOptions struct {
	OwnerID     string
	City        string
	State       string
	ListingType string
	Status      string
}

// List returns properties, newest first, optionally filtered.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties", selectColumns)
	var args []interface{}
	var conditions []string

	filters := []struct{ column, value string }{
		{"owner_id", opts.OwnerID},
		{"city", opts.City},
		{"state", opts.State},
		{"type", opts.ListingType},
		{"status", opts.Status},
	}
	for _, f := range filters {
		if f.value != "" {
			conditions = append(conditions, f.column+" = ?")
			args = append(args, f.value)
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY listed_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("closing rows", "error", closeErr)
		}
	}()

	properties := make([]*Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	return properties, nil
}

// Update writes every mutable column of p. Owner and listing time are never changed.
func (r *Repository) Update(ctx context.Context, p *Property) error {
	features, images, err := encodeLists(p)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, updateSQL,
		p.Title, p.Description, p.ListingType, p.PropertyType, p.Price,
		p.Bedrooms, p.Bathrooms, p.Area, p.Street, p.City,
		p.State, p.ZipCode, features, images, p.Status,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating property: %w", err)
	}

	return expectOneRow(result)
}

// Delete removes a property by ID. Bids and contracts on it are kept.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return errNotFound
	}
	return nil
}

func encodeLists(p *Property) (sql.NullString, sql.NullString, error) {
	features, err := encodeList(p.Features)
	if err != nil {
		return sql.NullString{}, sql.NullString{}, fmt.Errorf("encoding features: %w", err)
	}
	images, err := encodeList(p.Images)
	if err != nil {
		return sql.NullString{}, sql.NullString{}, fmt.Errorf("encoding images: %w", err)
	}
	return features, images, nil
}
