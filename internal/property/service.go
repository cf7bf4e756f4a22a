package property

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/evcraddock/homebid/internal/access"
	"github.com/evcraddock/homebid/internal/cache"
)

const cachePrefix = "properties:"

// Service applies ownership rules on top of the repository.
type Service struct {
	repo  *Repository
	cache cache.Store
}

// NewService creates a property service. A nil store disables caching.
func NewService(repo *Repository, store cache.Store) *Service {
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{repo: repo, cache: store}
}

// Create lists a new property owned by the caller.
func (s *Service) Create(ctx context.Context, c access.Caller, in Input) (*Property, error) {
	if err := access.Authorize(c, access.Request{Kind: access.Property, Action: access.Create}); err != nil {
		return nil, err
	}
	if err := in.ValidateCreate(); err != nil {
		return nil, err
	}

	p, err := s.repo.Insert(ctx, in.New(uuid.NewString(), c.ID))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	slog.InfoContext(ctx, "property created", "property_id", p.ID, "owner_id", c.ID)
	return p, nil
}

// Get returns a property. Reads are public.
func (s *Service) Get(ctx context.Context, id string) (*Property, error) {
	key, ok := s.cacheKey(ctx, "id:"+id)
	var cached Property
	if ok && s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ok {
		s.toCache(ctx, key, p)
	}
	return p, nil
}

// List returns properties matching opts. Reads are public.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*Property, error) {
	key, ok := s.cacheKey(ctx, cache.Key("list:", map[string]string{
		"owner":  opts.OwnerID,
		"city":   opts.City,
		"state":  opts.State,
		"type":   opts.ListingType,
		"status": opts.Status,
	}))
	var cached []*Property
	if ok && s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	props, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	if ok {
		s.toCache(ctx, key, props)
	}
	return props, nil
}

// Update merges the present fields of in into the property. A present null
// clears a nullable field. Only the owner or an admin may update.
func (s *Service) Update(ctx context.Context, c access.Caller, id string, in Input) (*Property, error) {
	if err := access.RequireAuthenticated(c); err != nil {
		return nil, err
	}
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}

	p, err := s.loadForWrite(ctx, c, id, access.Update)
	if err != nil {
		return nil, err
	}

	in.Apply(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	slog.InfoContext(ctx, "property updated", "property_id", id, "caller_id", c.ID)
	return p, nil
}

// Delete removes the property. Only the owner or an admin may delete.
func (s *Service) Delete(ctx context.Context, c access.Caller, id string) error {
	if _, err := s.loadForWrite(ctx, c, id, access.Delete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	slog.InfoContext(ctx, "property deleted", "property_id", id, "caller_id", c.ID)
	return nil
}

// Lookup returns a property straight from storage, bypassing the cache.
// Other services use it for ownership checks.
func (s *Service) Lookup(ctx context.Context, id string) (*Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) loadForWrite(ctx context.Context, c access.Caller, id string, action access.Action) (*Property, error) {
	if err := access.RequireAuthenticated(c); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req := access.Request{Kind: access.Property, Action: action, OwnerID: p.OwnerID}
	if err := access.Authorize(c, req); err != nil {
		slog.WarnContext(ctx, "property write denied",
			"property_id", id, "caller_id", c.ID, "action", string(action))
		return nil, err
	}
	return p, nil
}

// cacheKey returns the key for suffix under the current generation. It must
// be called before reading storage. ok is false when the cache is unusable.
func (s *Service) cacheKey(ctx context.Context, suffix string) (key string, ok bool) {
	gen, err := s.cache.Generation(ctx, cachePrefix)
	if err != nil {
		slog.WarnContext(ctx, "cache generation read failed", "error", err)
		return "", false
	}
	return cache.Versioned(cachePrefix, gen, suffix), true
}

func (s *Service) fromCache(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		return false
	}
	return found
}

func (s *Service) toCache(ctx context.Context, key string, v interface{}) {
	if err := s.cache.Set(ctx, key, v); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cachePrefix); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "error", err)
	}
}
