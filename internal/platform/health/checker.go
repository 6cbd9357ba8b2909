package health

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/slingventas/sales-tracker-backend/internal/platform/database"
	"github.com/slingventas/sales-tracker-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// RebuildFunc repopulates every Redis cache from the database.
type RebuildFunc func(ctx context.Context) error

// Checker watches Redis and rebuilds caches after a restart.
type Checker struct {
	rdb      *redis.Client
	log      *logrus.Logger
	rebuild  RebuildFunc
	status   *statusManager
	interval time.Duration
}

// NewChecker builds a checker. rdb may be nil, in which case the service
// reports Redis as disabled and Run only waits for shutdown.
func NewChecker(rdb *redis.Client, log *logrus.Logger, rebuild RebuildFunc) *Checker {
	initial := StateDegraded
	if database.IsRedisHealthy() {
		initial = StateHealthy
	}
	return &Checker{
		rdb:      rdb,
		log:      log,
		rebuild:  rebuild,
		status:   newStatusManager(initial, database.GetLastKnownRunID(), log),
		interval: checkInterval,
	}
}

func (c *Checker) runID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	info, err := c.rdb.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	m := runIDPattern.FindStringSubmatch(info)
	if len(m) < 2 {
		return "", errors.New("run_id not found in redis INFO")
	}
	return m[1], nil
}

// InitializeRunID records the run_id Redis has at startup.
func (c *Checker) InitializeRunID(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	id, err := c.runID(ctx)
	if err != nil {
		c.log.WithError(err).Warn("health: could not read initial redis run_id")
		return
	}
	c.status = newStatusManager(StateHealthy, id, c.log)
	database.UpdateStatus(true, id)
}

// PerformCheck runs one observation and, if needed, one rebuild.
func (c *Checker) PerformCheck(ctx context.Context) {
	if c.rdb == nil {
		return
	}

	id, err := c.runID(ctx)
	connected := err == nil
	if c.status.Assess(connected, id) {
		// keep features off Redis while it is being refilled
		database.UpdateStatus(false, "")
		ok := c.rebuild == nil || c.runRebuild(ctx)
		after, err := c.runID(ctx)
		if err != nil {
			ok = false
		}
		c.status.MarkRebuildComplete(ok, after)
	}

	healthy := c.status.State() == StateHealthy
	if database.UpdateStatus(healthy, c.status.RunID()) {
		c.log.WithField("healthy", healthy).Info("health: redis availability changed")
	}
}

func (c *Checker) runRebuild(ctx context.Context) bool {
	if err := c.rebuild(ctx); err != nil {
		c.log.WithError(err).Error("health: cache rebuild failed")
		return false
	}
	return true
}

// Run checks Redis periodically until h shuts down.
func (c *Checker) Run(h *lifecycle.Handle) {
	if c.rdb == nil {
		<-h.Done()
		return
	}
	c.log.Info("health: redis checker started")
	for {
		if err := h.Sleep(c.interval); err != nil {
			return
		}
		c.PerformCheck(h.Ctx())
	}
}

// State returns the checker's view of Redis.
func (c *Checker) State() State {
	return c.status.State()
}

// Handler serves GET /healthz.
func (c *Checker) Handler(ctx *gin.Context) {
	redisState := "disabled"
	if c.rdb != nil {
		redisState = c.State().String()
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"redis":  redisState,
	})
}
