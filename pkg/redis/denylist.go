package redis

import (
	"context"
	"fmt"
	"time"
)

const denylistPrefix = "jwt:revoked:"

// Denylist stores revoked token ids with the remaining token lifetime as
// TTL, so entries disappear when the token would have expired anyway.
// It satisfies jwt.Denylist.
type Denylist struct {
	store *Storage
	now   func() time.Time
}

// NewDenylist creates a denylist on top of store.
func NewDenylist(store *Storage) *Denylist {
	return &Denylist{store: store, now: time.Now}
}

func (d *Denylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.store.Set(ctx, denylistPrefix+tokenID, []byte{1}, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ok, err := d.store.Exists(ctx, denylistPrefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return ok, nil
}
