package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/delus-studio/storefront/internal/domain/catalog"
)

type ProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[int64]*domain.Product)}
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return r.ListLimit(ctx, 0)
}

// ListLimit returns products in id order; n <= 0 means no limit.
func (r *ProductRepository) ListLimit(ctx context.Context, n int) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProduct(p), nil
}

// FindByName returns the lowest-id product with exactly this name.
func (r *ProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	all, _ := r.List(ctx)
	for _, p := range all {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil {
		return nil
	}
	if p.Stock < 0 {
		return domain.ErrInvalidStock
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	} else if p.ID > r.nextID {
		r.nextID = p.ID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if _, err := p.DecrementStock(quantity); err != nil {
		return p.Stock, err
	}
	return p.Stock, nil
}

type TrackRepository struct {
	mu     sync.RWMutex
	nextID int64
	tracks map[int64]*domain.Track
}

func NewTrackRepository() *TrackRepository {
	return &TrackRepository{tracks: make(map[int64]*domain.Track)}
}

func (r *TrackRepository) List(ctx context.Context) ([]*domain.Track, error) {
	return r.filter(ctx, func(*domain.Track) bool { return true }), nil
}

func (r *TrackRepository) Featured(ctx context.Context) (*domain.Track, error) {
	featured := r.filter(ctx, func(t *domain.Track) bool { return t.Featured })
	if len(featured) == 0 {
		return nil, domain.ErrNotFound
	}
	return featured[0], nil
}

func (r *TrackRepository) Releases(ctx context.Context) ([]*domain.Track, error) {
	return r.filter(ctx, func(t *domain.Track) bool { return t.IsRelease }), nil
}

func (r *TrackRepository) Count(ctx context.Context) (int64, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.tracks)), nil
}

func (r *TrackRepository) Create(ctx context.Context, t *domain.Track) error {
	_ = ctx
	if t == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == 0 {
		r.nextID++
		t.ID = r.nextID
	} else if t.ID > r.nextID {
		r.nextID = t.ID
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	clone := *t
	r.tracks[t.ID] = &clone
	return nil
}

func (r *TrackRepository) filter(ctx context.Context, keep func(*domain.Track) bool) []*domain.Track {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Track, 0, len(r.tracks))
	for _, t := range r.tracks {
		if keep(t) {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
