// Package property provides the listing domain model, storage, and the
// ownership-gated service on top of it.
package property

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/evcraddock/homebid/internal/apperr"
)

// StatusActive is the status of a newly listed property.
const StatusActive = "active"

// Property is a listing owned by a user.
type Property struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	ListingType  string    `json:"type"`
	PropertyType string    `json:"propertyType"`
	Price        float64   `json:"price"`
	Bedrooms     *int64    `json:"bedrooms"`
	Bathrooms    *float64  `json:"bathrooms"`
	Area         float64   `json:"area"`
	Street       *string   `json:"street"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	ZipCode      *string   `json:"zipCode"`
	Features     []string  `json:"features"`
	Images       []string  `json:"images"`
	OwnerID      string    `json:"ownerId"`
	Status       string    `json:"status"`
	ListedAt     time.Time `json:"listedAt"`
}

// Input is a create or update payload. Each field records whether its key
// was present. Present with null clears a nullable column; for Features and
// Images a present value replaces the whole sequence, including with an
// empty one.
type Input struct {
	Title        Optional[string]   `json:"title,omitzero"`
	Description  Optional[string]   `json:"description,omitzero"`
	ListingType  Optional[string]   `json:"type,omitzero"`
	PropertyType Optional[string]   `json:"propertyType,omitzero"`
	Price        Optional[float64]  `json:"price,omitzero"`
	Bedrooms     Optional[int64]    `json:"bedrooms,omitzero"`
	Bathrooms    Optional[float64]  `json:"bathrooms,omitzero"`
	Area         Optional[float64]  `json:"area,omitzero"`
	Street       Optional[string]   `json:"street,omitzero"`
	City         Optional[string]   `json:"city,omitzero"`
	State        Optional[string]   `json:"state,omitzero"`
	ZipCode      Optional[string]   `json:"zipCode,omitzero"`
	Features     Optional[[]string] `json:"features,omitzero"`
	Images       Optional[[]string] `json:"images,omitzero"`
	Status       Optional[string]   `json:"status,omitzero"`
}

type fieldState struct {
	name      string
	set, null bool
}

func state[T any](name string, o Optional[T]) fieldState {
	return fieldState{name: name, set: o.Set, null: o.IsNull()}
}

// required lists the non-nullable columns in reporting order.
func (in Input) required() []fieldState {
	return []fieldState{
		state("title", in.Title),
		state("type", in.ListingType),
		state("propertyType", in.PropertyType),
		state("price", in.Price),
		state("area", in.Area),
		state("city", in.City),
		state("state", in.State),
	}
}

// ValidateCreate checks that every field required for a new listing is
// present and not null.
func (in Input) ValidateCreate() error {
	for _, f := range in.required() {
		if !f.set || f.null {
			return apperr.MissingField(f.name)
		}
	}
	return nil
}

// ValidateUpdate rejects null for columns that cannot be cleared.
func (in Input) ValidateUpdate() error {
	for _, f := range append(in.required(), state("status", in.Status)) {
		if f.null {
			return apperr.Newf(apperr.Validation, "Field cannot be null: %s", f.name)
		}
	}
	return nil
}

// New builds a property from a validated create payload.
// Status is always StatusActive on creation.
func (in Input) New(id, ownerID string) *Property {
	p := &Property{
		ID:      id,
		OwnerID: ownerID,
		Status:  StatusActive,
	}
	create := in
	create.Status = Optional[string]{}
	create.Apply(p)
	return p
}

// Apply merges the present fields of in into p. Absent fields keep their
// value and present nulls clear nullable fields.
func (in Input) Apply(p *Property) {
	setValue(&p.Title, in.Title)
	setValue(&p.ListingType, in.ListingType)
	setValue(&p.PropertyType, in.PropertyType)
	setValue(&p.Price, in.Price)
	setValue(&p.Area, in.Area)
	setValue(&p.City, in.City)
	setValue(&p.State, in.State)
	setValue(&p.Status, in.Status)

	setNullable(&p.Description, in.Description)
	setNullable(&p.Street, in.Street)
	setNullable(&p.ZipCode, in.ZipCode)
	setNullable(&p.Bedrooms, in.Bedrooms)
	setNullable(&p.Bathrooms, in.Bathrooms)

	setList(&p.Features, in.Features)
	setList(&p.Images, in.Images)
}

func setValue[T any](dst *T, o Optional[T]) {
	if o.Val != nil {
		*dst = *o.Val
	}
}

func setNullable[T any](dst **T, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Val == nil {
		*dst = nil
		return
	}
	v := *o.Val
	*dst = &v
}

func setList(dst *[]string, o Optional[[]string]) {
	if !o.Set {
		return
	}
	if o.Val == nil {
		*dst = nil
		return
	}
	*dst = copyList(*o.Val)
}

// copyList returns a non-nil copy so an empty sequence stays distinct from an absent one.
func copyList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// encodeList stores a sequence as JSON text. A nil sequence is stored as NULL.
func encodeList(list []string) (sql.NullString, error) {
	if list == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// decodeList reads a stored sequence. Rows written by the comma-joined
// encoding are split on commas.
func decodeList(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return nil
	}
	if strings.HasPrefix(v.String, "[") {
		var list []string
		if err := json.Unmarshal([]byte(v.String), &list); err == nil {
			if list == nil {
				list = []string{}
			}
			return list
		}
	}
	return strings.Split(v.String, ",")
}
