package order

import "context"

type Repository interface {
	// Insert returns ErrConflict when the checkout session is already recorded.
	Insert(ctx context.Context, o *Order) error
	FindBySession(ctx context.Context, sessionID string) (*Order, error)
	// Update rewrites the status and lines of a recorded order; ErrNotFound when absent.
	Update(ctx context.Context, o *Order) error
}
