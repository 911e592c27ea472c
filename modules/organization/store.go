package organization

import "context"

// Store persists organizations in the control-plane database.
type Store interface {
	// FindByID returns ErrNotFound or ErrInvalidID.
	FindByID(ctx context.Context, id string) (*Organization, error)
	// FindBySubdomain matches any of statuses, or every status when none
	// is given. It returns ErrNotFound when nothing matches.
	FindBySubdomain(ctx context.Context, subdomain string, statuses ...Status) (*Organization, error)
	// SubdomainAvailable ignores deleted organizations.
	SubdomainAvailable(ctx context.Context, subdomain string) (bool, error)
	RegistrationExists(ctx context.Context, number string) (bool, error)
	// Create returns ErrSubdomainTaken or ErrRegistrationExists on unique
	// index violations.
	Create(ctx context.Context, o *Organization) error
	Update(ctx context.Context, o *Organization) error
	// Remove hard-deletes a record that was never served. Lifecycle
	// deletes go through Update with StatusDeleted.
	Remove(ctx context.Context, id string) error
	List(ctx context.Context, q ListQuery) ([]Organization, int64, error)
}
