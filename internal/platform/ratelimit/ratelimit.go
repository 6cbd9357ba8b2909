// Package ratelimit throttles sensitive endpoints per client IP.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/slingventas/sales-tracker-backend/internal/platform/database"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
)

const moduleName = "ratelimit"

// fallbackStore counts in Redis while it is healthy and in process memory
// otherwise, so an outage never locks users out of login.
type fallbackStore struct {
	primary limiter.Store
	local   limiter.Store
}

func (s *fallbackStore) pick() limiter.Store {
	if s.primary != nil && database.IsRedisHealthy() {
		return s.primary
	}
	return s.local
}

func (s *fallbackStore) Get(ctx context.Context, key string, rate limiter.Rate) (limiter.Context, error) {
	return s.pick().Get(ctx, key, rate)
}

func (s *fallbackStore) Peek(ctx context.Context, key string, rate limiter.Rate) (limiter.Context, error) {
	return s.pick().Peek(ctx, key, rate)
}

func (s *fallbackStore) Reset(ctx context.Context, key string, rate limiter.Rate) (limiter.Context, error) {
	return s.pick().Reset(ctx, key, rate)
}

func (s *fallbackStore) Increment(ctx context.Context, key string, count int64, rate limiter.Rate) (limiter.Context, error) {
	return s.pick().Increment(ctx, key, count, rate)
}

// New builds a limiter for a formatted rate such as "10-M". rdb may be nil.
func New(formatted, prefix string, rdb *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", formatted, err)
	}

	opts := limiter.StoreOptions{Prefix: prefix, CleanUpInterval: limiter.DefaultCleanUpInterval}
	store := &fallbackStore{local: memory.NewStoreWithOptions(opts)}
	if rdb != nil {
		store.primary, err = sredis.NewStoreWithOptions(rdb, opts)
		if err != nil {
			return nil, fmt.Errorf("redis limiter store: %w", err)
		}
	}
	return limiter.New(store, rate), nil
}

// Middleware rejects requests over the limit with 429.
func Middleware(l *limiter.Limiter, log *logrus.Logger) gin.HandlerFunc {
	if log == nil {
		log = logging.GetLogger()
	}
	return mgin.NewMiddleware(l,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			log.WithFields(logrus.Fields{"ip": c.ClientIP(), "path": c.FullPath()}).Warn("ratelimit: limit reached")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logging.LogError(log, moduleName, "Middleware", "limiter store", c.ClientIP(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process"})
		}),
	)
}
