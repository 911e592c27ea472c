package rbac

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed policies/*.yaml
var policies embed.FS

// RoleSource provides role definitions.
type RoleSource interface {
	Load(ctx context.Context) (map[string]Role, error)
}

type memorySource map[string]Role

// NewInMemRoleSource returns a source serving a copy of roles.
func NewInMemRoleSource(roles map[string]Role) RoleSource {
	src := make(memorySource, len(roles))
	for name, role := range roles {
		src[name] = Role{
			Permissions: slices.Clone(role.Permissions),
			Inherits:    slices.Clone(role.Inherits),
		}
	}
	return src
}

func (s memorySource) Load(context.Context) (map[string]Role, error) {
	return maps.Clone(map[string]Role(s)), nil
}

type yamlSource struct {
	data []byte
}

// NewYAMLRoleSource returns a source decoding a Policy document.
func NewYAMLRoleSource(data []byte) RoleSource {
	return yamlSource{data: data}
}

func (s yamlSource) Load(context.Context) (map[string]Role, error) {
	var p Policy
	if err := yaml.Unmarshal(s.data, &p); err != nil {
		return nil, errors.Join(ErrInvalidPolicy, err)
	}
	if len(p.Roles) == 0 {
		return nil, fmt.Errorf("%w: no roles defined", ErrInvalidPolicy)
	}
	return p.Roles, nil
}

func embedded(name string) RoleSource {
	data, err := policies.ReadFile("policies/" + name)
	if err != nil {
		panic(fmt.Sprintf("rbac: missing embedded policy %q", name))
	}
	return NewYAMLRoleSource(data)
}

// TenantPolicy is the built-in role set for tenant users:
// user < moderator < admin < owner.
func TenantPolicy() RoleSource { return embedded("tenant.yaml") }

// PlatformPolicy is the built-in role set for control-plane admins:
// admin < super_admin.
func PlatformPolicy() RoleSource { return embedded("platform.yaml") }
