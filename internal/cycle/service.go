package cycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/platform/apperr"
	"github.com/slingventas/sales-tracker-backend/internal/platform/database"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
	"github.com/slingventas/sales-tracker-backend/internal/platform/metadata"
	"github.com/slingventas/sales-tracker-backend/internal/platform/metrics"
	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

const (
	moduleName = "cycle"

	archiveLockKey = "lock:cycle-archive"
	archiveLockTTL = 30 * time.Second
)

var (
	ErrCycleNotFound     = fmt.Errorf("cycle: %w", apperr.ErrNotFound)
	ErrArchiveInProgress = fmt.Errorf("another archival is running: %w", apperr.ErrConflict)
)

type Service struct {
	db       *gorm.DB
	rdb      *redis.Client
	log      *logrus.Logger
	notifier record.Notifier
	loc      *time.Location
	now      func() time.Time

	// mu serialises archival inside this process; the Redis lock covers
	// other instances.
	mu sync.Mutex
}

type Option func(*Service)

func WithNotifier(n record.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLocation sets the timezone used for default cycle names.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string) {}

// NewService builds the cycle registry. rdb may be nil.
func NewService(db *gorm.DB, rdb *redis.Client, log *logrus.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.GetLogger()
	}
	s := &Service{
		db:       db,
		rdb:      rdb,
		log:      log,
		notifier: nopNotifier{},
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns archived cycles, newest first.
func (s *Service) List(ctx context.Context) ([]Cycle, error) {
	return listCycles(ctx, s.db)
}

func (s *Service) Get(ctx context.Context, id string) (*Cycle, error) {
	c, err := findCycle(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCycleNotFound
	}
	return c, nil
}

// CycleName resolves id to its name.
func (s *Service) CycleName(ctx context.Context, id string) (string, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

// Archive closes the open cycle: a new Cycle is created and every open
// visit moves into it, atomically. A blank name gets DefaultName.
func (s *Service) Archive(ctx context.Context, actor *user.User, name string) (*ArchiveResult, error) {
	if !actor.IsOwner() {
		return nil, apperr.ErrForbidden
	}

	// 1. Resolve the name
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName(s.now().In(s.loc))
	}

	// 2. Serialise archivals
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := s.obtainLock(ctx)
	if err != nil {
		return nil, err
	}
	if lock != nil {
		defer func() {
			if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				logging.LogError(s.log, moduleName, "Archive", "release archive lock", nil, err)
			}
		}()
	}

	// 3. Create the cycle and move the open visits in one transaction
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate cycle id: %w", err)
	}
	result := &ArchiveResult{Cycle: Cycle{ID: id.String(), Name: name}}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := insertCycle(tx, &result.Cycle); err != nil {
			return err
		}
		moved, err := record.MoveOpenToCycle(tx, result.Cycle.ID)
		if err != nil {
			return err
		}
		result.Moved = moved
		return metadata.SetLastArchivedCycleID(tx, result.Cycle.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("archive cycle %q: %w", name, err)
	}

	// 4. Announce
	metrics.CyclesArchived.Inc()
	metrics.RecordsArchived.Add(float64(result.Moved))
	s.log.WithFields(logrus.Fields{
		"cycle": result.Cycle.ID,
		"name":  name,
		"moved": result.Moved,
		"actor": actor.Username,
	}).Info("cycle: archived")
	s.notifier.Notify(ctx, "sales_cycles", "INSERT")
	s.notifier.Notify(ctx, "sales_records", "UPDATE")

	return result, nil
}

// obtainLock takes the cluster-wide archive lock. Without a healthy Redis
// it returns nil and archival proceeds on the process mutex alone.
func (s *Service) obtainLock(ctx context.Context) (*redislock.Lock, error) {
	if s.rdb == nil || !database.IsRedisHealthy() {
		return nil, nil
	}

	locker := redislock.New(s.rdb)
	lock, err := locker.Obtain(ctx, archiveLockKey, archiveLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(200*time.Millisecond), 25),
	})
	switch {
	case err == nil:
		return lock, nil
	case errors.Is(err, redislock.ErrNotObtained):
		return nil, ErrArchiveInProgress
	default:
		s.log.WithError(err).Warn("cycle: archive lock unavailable, continuing without it")
		return nil, nil
	}
}
