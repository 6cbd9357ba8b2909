package startup

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/cycle"
	"github.com/slingventas/sales-tracker-backend/internal/platform/config"
	"github.com/slingventas/sales-tracker-backend/internal/platform/health"
	"github.com/slingventas/sales-tracker-backend/internal/platform/metadata"
	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

// Modules are the pieces startup needs to prepare.
type Modules struct {
	DB    *gorm.DB
	Users *user.Service
	Log   *logrus.Logger
}

// InitializeApplication migrates every table, installs the binding tags,
// warms the caches and creates the bootstrap owner on an empty directory.
func InitializeApplication(ctx context.Context, m Modules, owner config.OwnerConfig) error {
	m.Log.Info("startup: initializing application")

	// 1. Schema
	for _, migrate := range []func(*gorm.DB) error{metadata.Migrate, record.Migrate, cycle.Migrate} {
		if err := migrate(m.DB); err != nil {
			return err
		}
	}
	if err := m.Users.PrimeCachedDB(ctx); err != nil {
		return err
	}

	// 2. Binding tags
	if err := user.RegisterValidators(); err != nil {
		return fmt.Errorf("register user validators: %w", err)
	}
	if err := record.RegisterValidators(); err != nil {
		return fmt.Errorf("register record validators: %w", err)
	}

	// 3. First account
	created, err := m.Users.EnsureBootstrapOwner(ctx, owner.Username, owner.Password)
	if err != nil {
		return fmt.Errorf("bootstrap owner: %w", err)
	}
	if created {
		// the owner was added after the warmup above
		if err := m.Users.WarmupCache(ctx); err != nil {
			m.Log.WithError(err).Warn("startup: user cache warmup failed")
		}
	}

	m.Log.Info("startup: application ready")
	return nil
}

// RebuildCache returns the hot rebuild run by the health checker after a
// Redis restart.
func RebuildCache(users *user.Service, log *logrus.Logger) health.RebuildFunc {
	return func(ctx context.Context) error {
		log.Info("startup: rebuilding redis caches")
		if err := users.WarmupCache(ctx); err != nil {
			return fmt.Errorf("rebuild user cache: %w", err)
		}
		return nil
	}
}
