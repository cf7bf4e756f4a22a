// Package contract stores agency agreements between a property owner and an agent.
package contract

import (
	"strings"
	"time"

	"github.com/evcraddock/homebid/internal/apperr"
)

// StatusPending is the status of a new contract.
const StatusPending = "pending"

// dateLayouts are the accepted formats for start and end dates.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// Contract is an agency agreement on a property.
type Contract struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	OwnerID    string    `json:"ownerId"`
	AgentID    string    `json:"agentId"`
	Commission float64   `json:"commission"`
	Status     string    `json:"status"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Input is the payload for creating a contract. The owner is never taken
// from the payload.
type Input struct {
	PropertyID *string  `json:"propertyId"`
	AgentID    *string  `json:"agentId"`
	Commission *float64 `json:"commission"`
	StartDate  *string  `json:"startDate"`
	EndDate    *string  `json:"endDate"`
}

// terms is a validated Input.
type terms struct {
	propertyID string
	agentID    string
	commission float64
	start, end time.Time
}

func (in Input) validate() (terms, error) {
	var t terms
	switch {
	case blank(in.PropertyID):
		return t, apperr.MissingField("propertyId")
	case blank(in.AgentID):
		return t, apperr.MissingField("agentId")
	case in.Commission == nil:
		return t, apperr.MissingField("commission")
	case blank(in.StartDate):
		return t, apperr.MissingField("startDate")
	case blank(in.EndDate):
		return t, apperr.MissingField("endDate")
	}

	start, err := parseDate("startDate", *in.StartDate)
	if err != nil {
		return t, err
	}
	end, err := parseDate("endDate", *in.EndDate)
	if err != nil {
		return t, err
	}

	return terms{
		propertyID: strings.TrimSpace(*in.PropertyID),
		agentID:    strings.TrimSpace(*in.AgentID),
		commission: *in.Commission,
		start:      start,
		end:        end,
	}, nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Newf(apperr.Validation, "Invalid date for %s: %q", field, v)
}

// ValidateStatus checks a requested status. Any non-empty value is accepted.
func ValidateStatus(status string) error {
	if strings.TrimSpace(status) == "" {
		return apperr.New(apperr.Validation, "Status is required")
	}
	return nil
}
