package tenant

import "context"

// Info is the control-plane view of a tenant needed during request
// handling.
type Info struct {
	ID     string `json:"id"`
	Key    string `json:"subdomain"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Active bool   `json:"active"`
}

// Provider loads tenant information for a normalized key.
type Provider interface {
	// GetByKey returns ErrTenantNotFound if no organization owns key.
	GetByKey(ctx context.Context, key string) (*Info, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, key string) (*Info, error)

func (f ProviderFunc) GetByKey(ctx context.Context, key string) (*Info, error) {
	return f(ctx, key)
}
