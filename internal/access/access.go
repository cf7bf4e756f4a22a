// Package access decides whether a caller may perform an action on a resource.
//
// Authorize is a pure function: it never touches storage. Callers load the
// resource first and pass the ownership fields that matter for the decision.
package access

import (
	"fmt"

	"github.com/evcraddock/homebid/internal/apperr"
)

// Role is a user's role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Caller is the identity resolved from a verified token.
// The zero Caller is anonymous.
type Caller struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Authenticated reports whether the caller has an identity.
func (c Caller) Authenticated() bool {
	return c.ID != ""
}

// IsAdmin reports whether the caller is an authenticated admin.
func (c Caller) IsAdmin() bool {
	return c.Authenticated() && c.Role == RoleAdmin
}

// Kind is a resource kind.
type Kind string

const (
	Property Kind = "property"
	Bid      Kind = "bid"
	Contract Kind = "contract"
	User     Kind = "user"
)

// Action is an operation on a resource kind.
type Action string

const (
	Create         Action = "create"
	Read           Action = "read"
	Update         Action = "update"
	Delete         Action = "delete"
	ReadOwn        Action = "read-own"
	ReadByProperty Action = "read-by-property"
	UpdateStatus   Action = "update-status"
	// Admin covers admin-scoped reads and deletes of any kind.
	Admin Action = "admin"
)

// Request describes the resource snapshot being acted on.
type Request struct {
	Kind   Kind
	Action Action
	// OwnerID is the property owner (for bids, the owner of the joined property).
	OwnerID string
	// AgentID is the agent named on a contract.
	AgentID string
	// SubjectID is the user a bid belongs to.
	SubjectID string
}

// Authorize returns nil when the caller may perform the request.
// A denial is an apperr with kind Unauthenticated or Forbidden.
func Authorize(c Caller, req Request) error {
	if req.Kind == User || req.Action == Admin {
		return requireAdmin(c)
	}

	switch req.Kind {
	case Property:
		switch req.Action {
		case Read:
			return nil
		case Create:
			return requireAuthenticated(c)
		case Update, Delete:
			return ownerOrAdmin(c, req)
		}
	case Bid:
		switch req.Action {
		case ReadByProperty:
			return nil
		case Create:
			return requireAuthenticated(c)
		case ReadOwn:
			if err := requireAuthenticated(c); err != nil {
				return err
			}
			if req.SubjectID != c.ID {
				return forbidden(req)
			}
			return nil
		case UpdateStatus:
			return ownerOrAdmin(c, req)
		}
	case Contract:
		switch req.Action {
		case Create:
			return ownerOrAdmin(c, req)
		case ReadOwn:
			if err := requireAuthenticated(c); err != nil {
				return err
			}
			if c.ID != req.OwnerID && c.ID != req.AgentID {
				return forbidden(req)
			}
			return nil
		case UpdateStatus:
			if err := requireAuthenticated(c); err != nil {
				return err
			}
			if c.ID == req.OwnerID || c.ID == req.AgentID || c.IsAdmin() {
				return nil
			}
			return forbidden(req)
		}
	}

	if err := requireAuthenticated(c); err != nil {
		return err
	}
	return forbidden(req)
}

// RequireAuthenticated fails with Unauthenticated for anonymous callers.
func RequireAuthenticated(c Caller) error {
	return requireAuthenticated(c)
}

func requireAuthenticated(c Caller) error {
	if !c.Authenticated() {
		return apperr.New(apperr.Unauthenticated, "Token is missing")
	}
	return nil
}

func requireAdmin(c Caller) error {
	if err := requireAuthenticated(c); err != nil {
		return err
	}
	if !c.IsAdmin() {
		return apperr.New(apperr.Forbidden, "Admin privilege required")
	}
	return nil
}

func ownerOrAdmin(c Caller, req Request) error {
	if err := requireAuthenticated(c); err != nil {
		return err
	}
	if c.ID == req.OwnerID || c.IsAdmin() {
		return nil
	}
	return forbidden(req)
}

func forbidden(req Request) error {
	return apperr.New(apperr.Forbidden, denyMessage(req))
}

func denyMessage(req Request) string {
	switch req.Action {
	case Create:
		if req.Kind == Contract {
			return "Unauthorized to create contract for this property"
		}
		return fmt.Sprintf("Unauthorized to create this %s", req.Kind)
	case Update, UpdateStatus:
		return fmt.Sprintf("Unauthorized to update this %s", req.Kind)
	case Delete:
		return fmt.Sprintf("Unauthorized to delete this %s", req.Kind)
	default:
		return fmt.Sprintf("Unauthorized to access this %s", req.Kind)
	}
}
