package rbac

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Authorizer answers permission questions for a fixed role set. All
// inherited permissions are resolved once at construction; the
// Authorizer is immutable afterwards and safe for concurrent use.
type Authorizer struct {
	permissions map[string][]string
	sorted      []string
}

// NewAuthorizer loads roles from source and resolves inheritance.
func NewAuthorizer(ctx context.Context, source RoleSource) (*Authorizer, error) {
	roles, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = make(map[string]Role)
	}
	if err := validateInheritance(roles); err != nil {
		return nil, err
	}

	a := &Authorizer{permissions: make(map[string][]string, len(roles))}
	depths := make(map[string]int, len(roles))
	for name := range roles {
		perms := collect(name, roles, make(map[string]bool))
		slices.Sort(perms)
		a.permissions[name] = slices.Compact(perms)
		depths[name] = depth(name, roles, 0)
		a.sorted = append(a.sorted, name)
	}
	slices.SortFunc(a.sorted, func(x, y string) int {
		if d := depths[x] - depths[y]; d != 0 {
			return d
		}
		if x < y {
			return -1
		}
		return 1
	})
	return a, nil
}

// MustAuthorizer is NewAuthorizer for built-in policies; it panics on error.
func MustAuthorizer(source RoleSource) *Authorizer {
	a, err := NewAuthorizer(context.Background(), source)
	if err != nil {
		panic(fmt.Sprintf("rbac: %v", err))
	}
	return a
}

// Can checks whether role grants permission, directly or inherited.
func (a *Authorizer) Can(role, permission string) error {
	perms, ok := a.permissions[role]
	if !ok {
		return ErrInvalidRole
	}
	if !granted(perms, permission) {
		return ErrInsufficientPermissions
	}
	return nil
}

// CanAny checks whether role grants at least one of permissions.
func (a *Authorizer) CanAny(role string, permissions ...string) error {
	if len(permissions) == 0 {
		return nil
	}
	perms, ok := a.permissions[role]
	if !ok {
		return ErrInvalidRole
	}
	for _, p := range permissions {
		if granted(perms, p) {
			return nil
		}
	}
	return ErrInsufficientPermissions
}

// CanAll checks whether role grants every one of permissions.
func (a *Authorizer) CanAll(role string, permissions ...string) error {
	perms, ok := a.permissions[role]
	if !ok {
		return ErrInvalidRole
	}
	for _, p := range permissions {
		if !granted(perms, p) {
			return ErrInsufficientPermissions
		}
	}
	return nil
}

// Allowed checks permission for s. Permissions stored on the subject are
// honored in addition to those of its role, so an unknown role still
// passes when the permission was granted explicitly.
func (a *Authorizer) Allowed(s Subject, permission string) error {
	if permission != "" && granted(s.Permissions, permission) {
		return nil
	}
	err := a.Can(s.Role, permission)
	if errors.Is(err, ErrInvalidRole) {
		return ErrInsufficientPermissions
	}
	return err
}

// VerifyRole returns ErrInvalidRole for unknown roles.
func (a *Authorizer) VerifyRole(role string) error {
	if _, ok := a.permissions[role]; !ok {
		return ErrInvalidRole
	}
	return nil
}

// Roles returns role names, base roles first.
func (a *Authorizer) Roles() []string {
	return slices.Clone(a.sorted)
}

// Permissions returns the resolved permissions of role.
func (a *Authorizer) Permissions(role string) []string {
	return slices.Clone(a.permissions[role])
}

func granted(perms []string, permission string) bool {
	if permission == "" {
		return false
	}
	for _, p := range perms {
		if p == permission || p == Wildcard {
			return true
		}
	}
	return false
}

func collect(name string, roles map[string]Role, visited map[string]bool) []string {
	if visited[name] {
		return nil
	}
	visited[name] = true
	role, ok := roles[name]
	if !ok {
		return nil
	}
	out := slices.Clone(role.Permissions)
	for _, parent := range role.Inherits {
		out = append(out, collect(parent, roles, visited)...)
	}
	return out
}

func depth(name string, roles map[string]Role, level int) int {
	role, ok := roles[name]
	if !ok || level > MaxInheritanceDepth {
		return 0
	}
	deepest := 0
	for _, parent := range role.Inherits {
		deepest = max(deepest, depth(parent, roles, level+1)+1)
	}
	return deepest
}

func validateInheritance(roles map[string]Role) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(roles))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("%w: %v -> %s", ErrCircularInheritance, path, name)
		case done:
			return nil
		}
		if len(path) > MaxInheritanceDepth {
			return fmt.Errorf("%w: inheritance depth exceeds %d", ErrCircularInheritance, MaxInheritanceDepth)
		}
		state[name] = visiting
		next := append(slices.Clone(path), name)
		for _, parent := range roles[name].Inherits {
			if err := visit(parent, next); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}
