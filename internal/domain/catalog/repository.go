package catalog

import "context"

type ProductRepository interface {
	List(ctx context.Context) ([]*Product, error)
	ListLimit(ctx context.Context, n int) ([]*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, p *Product) error
	// DecrementStock atomically removes up to quantity units and returns the stock left.
	DecrementStock(ctx context.Context, id int64, quantity int) (int, error)
}

type TrackRepository interface {
	List(ctx context.Context) ([]*Track, error)
	// Featured returns ErrNotFound when no track is featured.
	Featured(ctx context.Context) (*Track, error)
	Releases(ctx context.Context) ([]*Track, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, t *Track) error
}
