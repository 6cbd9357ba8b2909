package user

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/platform/validation"
)

// Migrate creates the app_users table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("migrate app_users: %w", err)
	}
	return nil
}

// RegisterValidators installs the "role" binding tag.
func RegisterValidators() error {
	return validation.RegisterTag("role", validation.OneOf(func(s string) bool {
		_, ok := ParseRole(s)
		return ok
	}))
}

// WarmupCache rebuilds the known_users hash from the database. It is a
// no-op without Redis.
func (s *Service) WarmupCache(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	// 1. Load every user. Writes racing with the rebuild mark it dirty again.
	s.cacheDirty.Store(false)
	users, err := listUsers(ctx, s.db)
	if err != nil {
		s.cacheDirty.Store(true)
		return err
	}

	// 2. Replace the hash in one round trip
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, KnownUsersKey)
	if len(users) > 0 {
		values := make([]any, 0, len(users)*2)
		for _, u := range users {
			values = append(values, u.Username, string(u.Role))
		}
		pipe.HSet(ctx, KnownUsersKey, values...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.cacheDirty.Store(true)
		return fmt.Errorf("warm up user cache: %w", err)
	}

	s.log.WithField("count", len(users)).Info("user: cache warmed up")
	return nil
}

// PrimeCachedDB migrates the table and warms the cache.
func (s *Service) PrimeCachedDB(ctx context.Context) error {
	if err := Migrate(s.db); err != nil {
		return err
	}
	return s.WarmupCache(ctx)
}
