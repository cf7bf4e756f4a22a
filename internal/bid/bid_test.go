package bid

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/evcraddock/homebid/internal/access"
	"github.com/evcraddock/homebid/internal/apperr"
	"github.com/evcraddock/homebid/internal/db"
	"github.com/evcraddock/homebid/internal/property"
)

var (
	owner  = access.Caller{ID: "owner", Username: "owner", Role: access.RoleUser}
	bidder = access.Caller{ID: "bidder", Username: "bidder", Role: access.RoleUser}
	admin  = access.Caller{ID: "admin", Username: "admin", Role: access.RoleAdmin}
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

type fixture struct {
	svc        *Service
	repo       *Repository
	properties *property.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	props := property.NewService(property.NewRepository(d), nil)
	repo := NewRepository(d)
	return &fixture{svc: NewService(repo, props), repo: repo, properties: props}
}

func (f *fixture) listing(t *testing.T, c access.Caller) *property.Property {
	t.Helper()
	p, err := f.properties.Create(context.Background(), c, property.Input{
		Title:        property.Some("Lake house"),
		ListingType:  property.Some("sale"),
		PropertyType: property.Some("house"),
		Price:        property.Some(500000.0),
		Area:         property.Some(2000.0),
		City:         property.Some("Austin"),
		State:        property.Some("TX"),
	})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	return p
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.listing(t, owner)

	b, err := f.svc.Create(ctx, bidder, Input{PropertyID: &p.ID, Amount: floatPtr(480000), Message: strPtr("cash offer")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != StatusPending {
		t.Errorf("status = %q, want %q", b.Status, StatusPending)
	}
	if b.UserID != bidder.ID || b.PropertyID != p.ID {
		t.Errorf("bid = %+v", b)
	}
	if b.Message == nil || *b.Message != "cash offer" {
		t.Errorf("message = %v", b.Message)
	}
	if b.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}

	if _, err := f.svc.Create(ctx, owner, Input{PropertyID: &p.ID, Amount: floatPtr(1)}); err != nil {
		t.Errorf("owner bidding on own listing: %v", err)
	}
}

func TestCreateChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.listing(t, owner)

	tests := []struct {
		name   string
		caller access.Caller
		in     Input
		kind   apperr.Kind
		msg    string
	}{
		{"anonymous", access.Caller{}, Input{PropertyID: &p.ID, Amount: floatPtr(1)}, apperr.Unauthenticated, "Token is missing"},
		{"no property", bidder, Input{Amount: floatPtr(1)}, apperr.Validation, "Missing required field: propertyId"},
		{"no amount", bidder, Input{PropertyID: &p.ID}, apperr.Validation, "Missing required field: amount"},
		{"unknown property", bidder, Input{PropertyID: strPtr("nope"), Amount: floatPtr(1)}, apperr.NotFound, "Property not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.caller, tt.in)
			if !apperr.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %s", err, tt.kind)
			}
			if got := apperr.MessageOf(err); got != tt.msg {
				t.Errorf("message = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestSetStatusPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.listing(t, owner)

	b, err := f.svc.Create(ctx, bidder, Input{PropertyID: &p.ID, Amount: floatPtr(1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name   string
		caller access.Caller
		id     string
		status string
		kind   apperr.Kind
		ok     bool
	}{
		{"anonymous", access.Caller{}, b.ID, "accepted", apperr.Unauthenticated, false},
		{"empty status", owner, b.ID, "", apperr.Validation, false},
		{"missing bid", owner, "nope", "accepted", apperr.NotFound, false},
		{"bidder", bidder, b.ID, "accepted", apperr.Forbidden, false},
		{"owner", owner, b.ID, "accepted", 0, true},
		{"admin", admin, b.ID, "rejected", 0, true},
		{"free-form status", owner, b.ID, "countered", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.SetStatus(ctx, tt.caller, tt.id, tt.status)
			if !tt.ok {
				if !apperr.Is(err, tt.kind) {
					t.Errorf("err = %v, want %s", err, tt.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("set status: %v", err)
			}
			if got.Status != tt.status {
				t.Errorf("status = %q, want %q", got.Status, tt.status)
			}
			stored, err := f.repo.GetByID(ctx, tt.id)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if stored.Status != tt.status {
				t.Errorf("stored status = %q, want %q", stored.Status, tt.status)
			}
		})
	}
}

func TestSetStatusPropertyGone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.listing(t, owner)

	b, err := f.svc.Create(ctx, bidder, Input{PropertyID: &p.ID, Amount: floatPtr(1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.properties.Delete(ctx, owner, p.ID); err != nil {
		t.Fatalf("delete property: %v", err)
	}

	if _, err := f.repo.GetByID(ctx, b.ID); err != nil {
		t.Errorf("bid should survive property deletion: %v", err)
	}
	_, err = f.svc.SetStatus(ctx, admin, b.ID, "accepted")
	if !apperr.Is(err, apperr.NotFound) || apperr.MessageOf(err) != "Bid not found" {
		t.Errorf("err = %v, want Bid not found", err)
	}
}

func TestListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.listing(t, owner)
	p2 := f.listing(t, owner)

	for _, pid := range []string{p1.ID, p1.ID, p2.ID} {
		if _, err := f.svc.Create(ctx, bidder, Input{PropertyID: strPtr(pid), Amount: floatPtr(10)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := f.svc.Create(ctx, owner, Input{PropertyID: &p2.ID, Amount: floatPtr(10)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	byProperty, err := f.svc.ListByProperty(ctx, p1.ID)
	if err != nil {
		t.Fatalf("list by property: %v", err)
	}
	if len(byProperty) != 2 {
		t.Errorf("by property = %d, want 2", len(byProperty))
	}

	none, err := f.svc.ListByProperty(ctx, "unknown")
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("unknown property = %v, %v; want empty", none, err)
	}

	own, err := f.svc.ListOwn(ctx, bidder)
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(own) != 3 {
		t.Errorf("own = %d, want 3", len(own))
	}
	for _, b := range own {
		if b.UserID != bidder.ID {
			t.Errorf("own list leaked bid by %q", b.UserID)
		}
	}

	if _, err := f.svc.ListOwn(ctx, access.Caller{}); !apperr.Is(err, apperr.Unauthenticated) {
		t.Errorf("anonymous list own: %v", err)
	}

	if _, err := f.svc.ListAll(ctx, bidder); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("non-admin list all: %v, want forbidden", err)
	}
	all, err := f.svc.ListAll(ctx, admin)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("all = %d, want 4", len(all))
	}
}
