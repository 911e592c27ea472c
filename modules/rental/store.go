package rental

import (
	"context"
	"time"
)

// Store is the data access of rentals in one tenant database.
type Store interface {
	Create(ctx context.Context, r *Rental) error
	// FindByID returns ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (*Rental, error)
	ActiveByUser(ctx context.Context, userID string) ([]Rental, error)
	// Expired returns active rentals whose end date is before now.
	Expired(ctx context.Context, now time.Time) ([]Rental, error)
	ByWebtoon(ctx context.Context, webtoonID string) ([]Rental, error)
	// Update replaces the stored rental with r.
	Update(ctx context.Context, r *Rental) error
}
