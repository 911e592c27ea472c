package user

import (
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/sanitizer"
	"github.com/webix/udirdlaga/pkg/validator"
)

// Status is the account state of a tenant user.
type Status string

const (
	StatusActive              Status = "active"
	StatusInactive            Status = "inactive"
	StatusSuspended           Status = "suspended"
	StatusPendingVerification Status = "pending_verification"
)

// Roles lists the tenant roles a user may hold.
var Roles = []string{rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleModerator, rbac.RoleUser}

// Permissions lists the explicit permissions a user may be granted.
var Permissions = []string{
	rbac.PermRead,
	rbac.PermWrite,
	rbac.PermDelete,
	rbac.PermManageUsers,
	rbac.PermManageContent,
	rbac.PermManageSettings,
}

// User is a member of one tenant. It lives in the tenant database only.
type User struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Username      string        `bson:"username" json:"username"`
	Email         string        `bson:"email" json:"email"`
	FirstName     string        `bson:"firstName" json:"firstName"`
	LastName      string        `bson:"lastName" json:"lastName"`
	Phone         string        `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash  string        `bson:"password" json:"-"`
	Role          string        `bson:"role" json:"role"`
	Permissions   []string      `bson:"permissions,omitempty" json:"permissions,omitempty"`
	Status        Status        `bson:"status" json:"status"`
	LoginAttempts int           `bson:"loginAttempts" json:"-"`
	LockUntil     *time.Time    `bson:"lockUntil,omitempty" json:"-"`
	LastLogin     *time.Time    `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// LockState returns the lockout counters of u.
func (u *User) LockState() auth.LockState {
	return auth.LockState{Attempts: u.LoginAttempts, LockUntil: u.LockUntil}
}

// IsLocked reports whether a lockout is in force at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockState().Locked(now)
}

// IsActive reports whether u may sign in.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// Account returns the credential view used by auth.Authenticator.
func (u *User) Account() *auth.Account {
	return &auth.Account{
		ID:           u.ID.Hex(),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Active:       u.IsActive(),
		Lock:         u.LockState(),
	}
}

// Normalize cleans up whitespace and email case.
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = sanitizer.NormalizeEmail(u.Email)
	u.FirstName = sanitizer.NormalizeWhitespace(u.FirstName)
	u.LastName = sanitizer.NormalizeWhitespace(u.LastName)
	u.Phone = sanitizer.NormalizePhone(u.Phone)
}

// Validate checks the profile fields of u. It does not look at the
// password hash.
func (u *User) Validate() error {
	return validator.Apply(validator.Join(
		[]validator.Rule{
			validator.ValidUsername("username", u.Username, 3, 30),
			validator.Required("email", u.Email),
			validator.ValidEmail("email", u.Email),
			validator.Required("firstName", u.FirstName),
			validator.MaxLen("firstName", u.FirstName, 50),
			validator.Required("lastName", u.LastName),
			validator.MaxLen("lastName", u.LastName, 50),
			validator.OneOf("role", u.Role, Roles),
			validator.OneOf("status", u.Status, []Status{
				StatusActive, StatusInactive, StatusSuspended, StatusPendingVerification,
			}),
			validator.Each("permissions", u.Permissions, "contains an unknown permission", func(p string) bool {
				return slices.Contains(Permissions, p)
			}),
		},
		validator.When(u.Phone != "", validator.ValidPhone("phone", u.Phone)),
	)...)
}
