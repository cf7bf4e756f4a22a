package property

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/evcraddock/homebid/internal/access"
	"github.com/evcraddock/homebid/internal/apperr"
)

var (
	owner    = access.Caller{ID: "u1", Username: "owner", Role: access.RoleUser}
	stranger = access.Caller{ID: "u2", Username: "stranger", Role: access.RoleUser}
	admin    = access.Caller{ID: "a1", Username: "admin", Role: access.RoleAdmin}
)

// memoryCache is an in-process cache.Store used to observe caching behavior.
// beforeSet, when non-nil, runs once just before the next Set stores its value.
type memoryCache struct {
	entries     map[string][]byte
	generations map[string]int64
	invalidated []string
	beforeSet   func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte), generations: make(map[string]int64)}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	data, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	if hook := m.beforeSet; hook != nil {
		m.beforeSet = nil
		hook()
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	return nil
}

func (m *memoryCache) Generation(_ context.Context, ns string) (int64, error) {
	return m.generations[ns], nil
}

func (m *memoryCache) Invalidate(_ context.Context, prefix string) error {
	m.invalidated = append(m.invalidated, prefix)
	m.generations[prefix]++
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func testService(t *testing.T) (*Service, *memoryCache) {
	t.Helper()
	mc := newMemoryCache()
	return NewService(testRepo(t), mc), mc
}

func TestServiceCreate(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	in := validInput()
	in.Status = Some("sold")
	p, err := svc.Create(ctx, owner, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated id")
	}
	if p.OwnerID != owner.ID {
		t.Errorf("owner = %q, want %q", p.OwnerID, owner.ID)
	}
	if p.Status != StatusActive {
		t.Errorf("status = %q, want %q", p.Status, StatusActive)
	}
}

func TestServiceCreateChecks(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, access.Caller{}, validInput()); !apperr.Is(err, apperr.Unauthenticated) {
		t.Errorf("anonymous create: %v, want unauthenticated", err)
	}

	in := validInput()
	in.Price = Optional[float64]{}
	if _, err := svc.Create(ctx, owner, in); !apperr.Is(err, apperr.Validation) {
		t.Errorf("missing price: %v, want validation", err)
	}
}

func TestServiceUpdateOwnership(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name   string
		caller access.Caller
		id     string
		kind   apperr.Kind
		ok     bool
	}{
		{"anonymous", access.Caller{}, p.ID, apperr.Unauthenticated, false},
		{"missing", owner, "nope", apperr.NotFound, false},
		{"stranger", stranger, p.ID, apperr.Forbidden, false},
		{"owner", owner, p.ID, 0, true},
		{"admin", admin, p.ID, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.caller, tt.id, Input{Price: Some(1.0)})
			if tt.ok {
				if err != nil {
					t.Fatalf("update: %v", err)
				}
				return
			}
			if !apperr.Is(err, tt.kind) {
				t.Errorf("err = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestServiceUpdateForbiddenMessage(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.Update(ctx, stranger, p.ID, Input{})
	if got := apperr.MessageOf(err); got != "Unauthorized to update this property" {
		t.Errorf("message = %q", got)
	}
	err = svc.Delete(ctx, stranger, p.ID)
	if got := apperr.MessageOf(err); got != "Unauthorized to delete this property" {
		t.Errorf("message = %q", got)
	}
}

func TestServicePartialUpdate(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	in := validInput()
	in.Description = Some("cozy")
	in.Features = listOf("pool", "garage")
	p, err := svc.Create(ctx, owner, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, owner, p.ID, Input{Price: Some(410000.0)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 410000 {
		t.Errorf("price = %v, want 410000", got.Price)
	}
	if got.Title != "Bright bungalow" {
		t.Errorf("title = %q, want unchanged", got.Title)
	}
	if got.Description == nil || *got.Description != "cozy" {
		t.Errorf("description = %v, want unchanged", got.Description)
	}
	if len(got.Features) != 2 {
		t.Errorf("features = %v, want unchanged", got.Features)
	}

	if _, err := svc.Update(ctx, owner, p.ID, Input{Features: listOf()}); err != nil {
		t.Fatalf("clear features: %v", err)
	}
	got, err = svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Features == nil || len(got.Features) != 0 {
		t.Errorf("features = %#v, want empty", got.Features)
	}
}

func TestServiceUpdateNullClears(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	in := validInput()
	in.Description = Some("old desc")
	in.Bedrooms = Some[int64](3)
	in.ZipCode = Some("78701")
	p, err := svc.Create(ctx, owner, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var patch Input
	if err := json.Unmarshal([]byte(`{"description": null, "bedrooms": null}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := svc.Update(ctx, owner, p.ID, patch); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != nil {
		t.Errorf("description = %q, want cleared", *got.Description)
	}
	if got.Bedrooms != nil {
		t.Errorf("bedrooms = %d, want cleared", *got.Bedrooms)
	}
	if got.ZipCode == nil || *got.ZipCode != "78701" {
		t.Errorf("zip = %v, want unchanged", got.ZipCode)
	}
}

func TestServiceUpdateNullRequired(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(ctx, owner, p.ID, Input{Price: Null[float64]()})
	if !apperr.Is(err, apperr.Validation) || apperr.MessageOf(err) != "Field cannot be null: price" {
		t.Errorf("err = %v, want null price rejected", err)
	}
	// Validation is reported before the lookup.
	if _, err := svc.Update(ctx, owner, "missing", Input{Title: Null[string]()}); !apperr.Is(err, apperr.Validation) {
		t.Errorf("missing property: %v, want validation", err)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 350000 {
		t.Errorf("price = %v, want unchanged", got.Price)
	}
}

func TestServiceDelete(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, admin, p.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("get after delete: %v, want not found", err)
	}
	if err := svc.Delete(ctx, owner, p.ID); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("repeat delete: %v, want not found", err)
	}
}

func TestServiceCaching(t *testing.T) {
	svc, mc := testService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, owner, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(mc.invalidated) != 1 || mc.invalidated[0] != "properties:" {
		t.Errorf("invalidated = %v, want [properties:]", mc.invalidated)
	}

	list, err := svc.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	if _, ok := mc.entries["properties:v1:list:all"]; !ok {
		t.Error("expected list result to be cached")
	}

	second, err := svc.Create(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(mc.entries) != 0 {
		t.Errorf("cache entries = %d after write, want 0", len(mc.entries))
	}

	list, err = svc.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len = %d, want 2 after invalidation", len(list))
	}

	if _, err := svc.Get(ctx, second.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := svc.Update(ctx, owner, second.ID, Input{Title: Some("Renamed")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.Get(ctx, second.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("title = %q, stale cache after update", got.Title)
	}
}

func TestServiceCacheIgnoresStaleWrite(t *testing.T) {
	svc, mc := testService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The update lands after Get has read the row but before it caches it.
	mc.beforeSet = func() {
		if _, err := svc.Update(ctx, owner, p.ID, Input{Title: Some("Renamed")}); err != nil {
			t.Errorf("update: %v", err)
		}
	}
	stale, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stale.Title != "Bright bungalow" {
		t.Fatalf("first read = %q, want the pre-update row", stale.Title)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("title = %q, stale snapshot served from cache", got.Title)
	}
}

func TestServiceNilCache(t *testing.T) {
	svc := NewService(testRepo(t), nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); err != nil {
		t.Errorf("get: %v", err)
	}
}
