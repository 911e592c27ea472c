package organization_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/webix/udirdlaga/modules/organization"
	"github.com/webix/udirdlaga/modules/user"
	"github.com/webix/udirdlaga/pkg/auth"
)

type memStore struct {
	mu   sync.Mutex
	orgs []*organization.Organization
}

func (s *memStore) FindByID(_ context.Context, id string) (*organization.Organization, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, organization.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orgs {
		if o.ID == oid {
			cp := *o
			return &cp, nil
		}
	}
	return nil, organization.ErrNotFound
}

func (s *memStore) FindBySubdomain(_ context.Context, subdomain string, statuses ...organization.Status) (*organization.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.orgs) - 1; i >= 0; i-- {
		o := s.orgs[i]
		if o.Subdomain == subdomain && (len(statuses) == 0 || slices.Contains(statuses, o.Status)) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, organization.ErrNotFound
}

func (s *memStore) SubdomainAvailable(_ context.Context, subdomain string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orgs {
		if o.Subdomain == subdomain && o.Status != organization.StatusDeleted {
			return false, nil
		}
	}
	return true, nil
}

func (s *memStore) RegistrationExists(_ context.Context, number string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orgs {
		if o.RegistrationNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Create(_ context.Context, o *organization.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = bson.NewObjectID()
	}
	o.CreatedAt = time.Now()
	cp := *o
	s.orgs = append(s.orgs, &cp)
	return nil
}

func (s *memStore) Update(_ context.Context, o *organization.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.orgs {
		if cur.ID == o.ID {
			cp := *o
			s.orgs[i] = &cp
			return nil
		}
	}
	return organization.ErrNotFound
}

func (s *memStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs = slices.DeleteFunc(s.orgs, func(o *organization.Organization) bool { return o.ID.Hex() == id })
	return nil
}

func (s *memStore) List(_ context.Context, q organization.ListQuery) ([]organization.Organization, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []organization.Organization
	for _, o := range s.orgs {
		if q.Status != "" && string(o.Status) != q.Status {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(o.Name+" "+o.Subdomain), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, *o)
	}
	total := int64(len(matched))
	start := min(int(q.Skip()), len(matched))
	end := min(start+q.Limit, len(matched))
	return matched[start:end], total, nil
}

func (s *memStore) get(subdomain string) *organization.Organization {
	o, _ := s.FindBySubdomain(context.Background(), subdomain)
	return o
}

type memUsers struct {
	mu        sync.Mutex
	users     []*user.User
	createErr error
}

func (s *memUsers) FindByUsername(_ context.Context, username string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *memUsers) FindByID(context.Context, string) (*user.User, error) { return nil, nil }

func (s *memUsers) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	u.ID = bson.NewObjectID()
	s.users = append(s.users, u)
	return nil
}

func (s *memUsers) SaveLockState(context.Context, string, auth.LockState) error { return nil }
func (s *memUsers) RecordLogin(context.Context, string, time.Time) error        { return nil }

type fakeTenants struct {
	mu          sync.Mutex
	users       map[string]*memUsers
	provisioned []string
	released    []string
	err         error
}

func newFakeTenants() *fakeTenants { return &fakeTenants{users: map[string]*memUsers{}} }

func (f *fakeTenants) Provision(_ context.Context, key string) (user.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.provisioned = append(f.provisioned, key)
	if f.users[key] == nil {
		f.users[key] = &memUsers{}
	}
	return f.users[key], nil
}

func (f *fakeTenants) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeTenants) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, key)
	return nil
}
