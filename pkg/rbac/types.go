package rbac

// MaxInheritanceDepth bounds role inheritance chains.
const MaxInheritanceDepth = 10

// Wildcard grants every permission.
const Wildcard = "*"

// Tenant permissions.
const (
	PermRead           = "read"
	PermWrite          = "write"
	PermDelete         = "delete"
	PermManageUsers    = "manage_users"
	PermManageContent  = "manage_content"
	PermManageSettings = "manage_settings"
)

// Tenant roles.
const (
	RoleOwner     = "owner"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// Platform roles.
const (
	RoleSuperAdmin = "super_admin"
)

// Role is a named set of permissions that may inherit other roles.
type Role struct {
	Permissions []string `yaml:"permissions"`
	Inherits    []string `yaml:"inherits"`
}

// Policy is the document a YAML role source decodes.
type Policy struct {
	Roles map[string]Role `yaml:"roles"`
}

// Subject is the identity an authorization check is made for.
type Subject struct {
	ID          string
	Role        string
	Permissions []string
}
