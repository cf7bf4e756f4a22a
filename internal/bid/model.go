// Package bid stores offers placed on properties and gates status changes
// on the owner of the property being bid on.
package bid

import (
	"strings"
	"time"

	"github.com/evcraddock/homebid/internal/apperr"
)

// StatusPending is the status of a newly placed bid.
const StatusPending = "pending"

// Bid is an offer by a user on a property.
type Bid struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	UserID     string    `json:"userId"`
	Amount     float64   `json:"amount"`
	Message    *string   `json:"message"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// Input is the payload for placing a bid.
type Input struct {
	PropertyID *string  `json:"propertyId"`
	Amount     *float64 `json:"amount"`
	Message    *string  `json:"message"`
}

// Validate checks the required fields of a new bid.
func (in Input) Validate() error {
	if in.PropertyID == nil || strings.TrimSpace(*in.PropertyID) == "" {
		return apperr.MissingField("propertyId")
	}
	if in.Amount == nil {
		return apperr.MissingField("amount")
	}
	return nil
}

// ValidateStatus checks a requested status. Any non-empty value is accepted.
func ValidateStatus(status string) error {
	if strings.TrimSpace(status) == "" {
		return apperr.New(apperr.Validation, "Status is required")
	}
	return nil
}
