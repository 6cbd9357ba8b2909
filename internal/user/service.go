package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/platform/apperr"
	"github.com/slingventas/sales-tracker-backend/internal/platform/database"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
	"github.com/slingventas/sales-tracker-backend/pkg/token"
)

var (
	ErrUserExists     = fmt.Errorf("user already exists: %w", apperr.ErrConflict)
	ErrUserNotFound   = fmt.Errorf("user: %w", apperr.ErrNotFound)
	ErrDeleteSelf     = fmt.Errorf("you cannot delete your own account: %w", apperr.ErrForbidden)
	ErrDemoteSelf     = fmt.Errorf("you cannot remove your own owner role: %w", apperr.ErrForbidden)
	ErrUnknownAccount = fmt.Errorf("account no longer exists: %w", apperr.ErrUnauthorized)
)

const moduleName = "user"

// Service is the user directory.
type Service struct {
	db       *gorm.DB
	rdb      *redis.Client
	log      *logrus.Logger
	tokenTTL time.Duration

	// cacheDirty is set when a directory write could not reach Redis.
	// The next cached lookup rebuilds the hash first.
	cacheDirty atomic.Bool
}

// NewService builds the directory. rdb may be nil.
func NewService(db *gorm.DB, rdb *redis.Client, log *logrus.Logger, tokenTTL time.Duration) *Service {
	if log == nil {
		log = logging.GetLogger()
	}
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Service{db: db, rdb: rdb, log: log, tokenTTL: tokenTTL}
}

func (s *Service) cacheUsable() bool {
	return s.rdb != nil && database.IsRedisHealthy()
}

// Login checks the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	u, err := findUser(ctx, s.db, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if u == nil || subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return nil, apperr.ErrInvalidCredentials
	}

	tok, exp, err := token.GenerateToken(u.Username, string(u.Role), s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: tok, ExpiresAt: exp, User: *u}, nil
}

// Lookup resolves the current role of username, preferring the Redis cache.
func (s *Service) Lookup(ctx context.Context, username string) (*User, error) {
	if s.cacheUsable() && s.cacheFresh(ctx) {
		role, err := s.rdb.HGet(ctx, KnownUsersKey, username).Result()
		switch {
		case err == nil:
			if r, ok := ParseRole(role); ok {
				return &User{Username: username, Role: r}, nil
			}
		case errors.Is(err, redis.Nil):
		default:
			s.log.WithError(err).Warn("user: cache lookup failed, falling back to database")
		}
	}

	u, err := findUser(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnknownAccount
	}
	s.cacheSet(ctx, u)
	return u, nil
}

// List returns every user ordered by username.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return listUsers(ctx, s.db)
}

// Add creates a user. The username is trimmed and must be unused.
func (s *Service) Add(ctx context.Context, req AddRequest) (*User, error) {
	// 1. Validate
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperr.Invalid("username", "username is required")
	}
	if req.Password == "" {
		return nil, apperr.Invalid("password", "password is required")
	}
	role := RoleEmployee
	if req.Role != "" {
		r, ok := ParseRole(req.Role)
		if !ok {
			return nil, apperr.Invalid("role", "role must be owner or employee")
		}
		role = r
	}

	// 2. Reject existing usernames
	existing, err := findUser(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	// 3. Persist, then cache
	u := &User{Username: username, Password: req.Password, Role: role}
	if err := insertUser(ctx, s.db, u); err != nil {
		return nil, err
	}
	s.cacheSet(ctx, u)
	return u, nil
}

// Update changes the password and/or role of username.
func (s *Service) Update(ctx context.Context, actor *User, username string, req UpdateRequest) (*User, error) {
	fields := map[string]any{}
	if req.Password != "" {
		fields["password"] = req.Password
	}
	if req.Role != "" {
		r, ok := ParseRole(req.Role)
		if !ok {
			return nil, apperr.Invalid("role", "role must be owner or employee")
		}
		if actor != nil && actor.Username == username && r != RoleOwner && actor.IsOwner() {
			return nil, ErrDemoteSelf
		}
		fields["role"] = r
	}

	if len(fields) > 0 {
		n, err := updateUser(ctx, s.db, username, fields)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrUserNotFound
		}
	}

	u, err := findUser(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	s.cacheSet(ctx, u)
	return u, nil
}

// Delete removes username. Records the user created are kept.
func (s *Service) Delete(ctx context.Context, actor *User, username string) error {
	if actor != nil && actor.Username == username {
		return ErrDeleteSelf
	}
	n, err := deleteUser(ctx, s.db, username)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	s.cacheDel(ctx, username)
	return nil
}

// EnsureBootstrapOwner creates the configured owner when no user exists.
func (s *Service) EnsureBootstrapOwner(ctx context.Context, username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return false, nil
	}
	n, err := countUsers(ctx, s.db)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.Add(ctx, AddRequest{Username: username, Password: password, Role: string(RoleOwner)}); err != nil {
		return false, err
	}
	s.log.WithField("username", username).Info("user: bootstrap owner created")
	return true, nil
}

func (s *Service) cacheSet(ctx context.Context, u *User) {
	if !s.cacheUsable() {
		s.markCacheDirty()
		return
	}
	if err := s.rdb.HSet(ctx, KnownUsersKey, u.Username, string(u.Role)).Err(); err != nil {
		s.markCacheDirty()
		logging.LogError(s.log, moduleName, "cacheSet", "cache user role", u.Username, err)
	}
}

func (s *Service) cacheDel(ctx context.Context, username string) {
	if !s.cacheUsable() {
		s.markCacheDirty()
		return
	}
	if err := s.rdb.HDel(ctx, KnownUsersKey, username).Err(); err != nil {
		s.markCacheDirty()
		logging.LogError(s.log, moduleName, "cacheDel", "evict cached user", username, err)
	}
}

func (s *Service) markCacheDirty() {
	if s.rdb != nil {
		s.cacheDirty.Store(true)
	}
}

// cacheFresh rebuilds a dirty cache and reports whether it may be read.
func (s *Service) cacheFresh(ctx context.Context) bool {
	if !s.cacheDirty.Load() {
		return true
	}
	if err := s.WarmupCache(ctx); err != nil {
		logging.LogError(s.log, moduleName, "cacheFresh", "rebuild stale user cache", nil, err)
		return false
	}
	return true
}
