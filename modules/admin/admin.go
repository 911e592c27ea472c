package admin

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/validator"
)

// RoleAdmin is the regular platform administrator role.
const RoleAdmin = "admin"

// Roles lists the platform roles.
var Roles = []string{rbac.RoleSuperAdmin, RoleAdmin}

// Admin is a platform administrator stored in the control-plane database.
type Admin struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Username      string        `bson:"username" json:"username"`
	Email         string        `bson:"email" json:"email"`
	PasswordHash  string        `bson:"password" json:"-"`
	Role          string        `bson:"role" json:"role"`
	IsActive      bool          `bson:"isActive" json:"isActive"`
	LoginAttempts int           `bson:"loginAttempts" json:"-"`
	LockUntil     *time.Time    `bson:"lockUntil,omitempty" json:"-"`
	LastLogin     *time.Time    `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

func (a *Admin) LockState() auth.LockState {
	return auth.LockState{Attempts: a.LoginAttempts, LockUntil: a.LockUntil}
}

func (a *Admin) IsLocked(now time.Time) bool {
	return a.LockState().Locked(now)
}

// Account returns the credential view used by auth.Authenticator.
func (a *Admin) Account() *auth.Account {
	return &auth.Account{
		ID:           a.ID.Hex(),
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		Active:       a.IsActive,
		Lock:         a.LockState(),
	}
}

// Subject is the authorization identity of a.
func (a *Admin) Subject() rbac.Subject {
	return rbac.Subject{ID: a.ID.Hex(), Role: a.Role}
}

func (a *Admin) Validate() error {
	return validator.Apply(
		validator.ValidUsername("username", a.Username, 3, 30),
		validator.Required("email", a.Email),
		validator.ValidEmail("email", a.Email),
		validator.OneOf("role", a.Role, Roles),
		validator.Required("password", a.PasswordHash),
	)
}
