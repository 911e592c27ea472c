package admin

import (
	"context"
	"log/slog"

	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/sanitizer"
)

// BootstrapConfig names the super admin created at startup.
type BootstrapConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
	Email    string `env:"ADMIN_EMAIL" envDefault:"admin@webix.com"`
}

// Enabled reports whether credentials were configured.
func (c BootstrapConfig) Enabled() bool {
	return c.Username != "" && c.Password != ""
}

// Bootstrap creates the configured super admin unless an admin with that
// username already exists. It reports whether an admin was created.
func Bootstrap(ctx context.Context, store Store, hasher *auth.Hasher, cfg BootstrapConfig, log *slog.Logger) (bool, error) {
	if !cfg.Enabled() {
		return false, nil
	}
	existing, err := store.FindByUsername(ctx, cfg.Username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	hash, err := hasher.Hash(cfg.Password)
	if err != nil {
		return false, err
	}
	a := &Admin{
		Username:     cfg.Username,
		Email:        sanitizer.NormalizeEmail(cfg.Email),
		PasswordHash: hash,
		Role:         rbac.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := a.Validate(); err != nil {
		return false, err
	}
	if err := store.Create(ctx, a); err != nil {
		return false, err
	}
	log.InfoContext(ctx, "bootstrap admin created",
		logger.Component("admin"),
		slog.String("username", a.Username),
		slog.String("email", sanitizer.MaskEmail(a.Email)),
	)
	return true, nil
}
