package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slingventas/sales-tracker-backend/pkg/lifecycle"
)

const (
	httpTimeout     = 15 * time.Second
	gracefulTimeout = 30 * time.Second
	forcefulTimeout = 1 * time.Second
	finalTimeout    = 10 * time.Second
)

// Coordinator runs the shutdown sequence of the server.
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager

	// BeforeHTTP runs before the HTTP server stops accepting requests.
	// Long-lived streams must be released here or Shutdown waits for them.
	BeforeHTTP func()
	// FinalSnapshot runs once every background service has stopped.
	FinalSnapshot func(ctx context.Context) error

	log *logrus.Logger
}

func NewCoordinator(gracefulMgr, forcefulMgr *lifecycle.Manager, log *logrus.Logger) *Coordinator {
	return &Coordinator{
		GracefulManager: gracefulMgr,
		ForcefulManager: forcefulMgr,
		log:             log,
	}
}

// ListenForSignalsAndShutdown blocks until SIGINT or SIGTERM, then shuts
// everything down.
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	c.log.WithField("signal", sig.String()).Info("shutdown: signal received")
	c.Shutdown(server)
}

// Shutdown stops the HTTP server, then the background services in two
// phases, then takes the final snapshot.
func (c *Coordinator) Shutdown(server *http.Server) {
	if c.BeforeHTTP != nil {
		c.BeforeHTTP()
	}

	ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		c.log.WithError(err).Error("shutdown: http server did not stop cleanly")
	} else {
		c.log.Info("shutdown: http server stopped")
	}

	// --- Phase one: graceful ---
	c.log.WithField("timeout", gracefulTimeout).Info("shutdown: waiting for background services")
	c.GracefulManager.Shutdown()
	remaining := c.GracefulManager.WaitWithTimeout(gracefulTimeout)

	// --- Phase two: forceful ---
	// services that drain work after phase one are told to stop now
	if len(remaining) > 0 {
		c.log.WithField("services", remaining).Warn("shutdown: graceful phase timed out, forcing")
	}
	c.ForcefulManager.Shutdown()
	if left := c.ForcefulManager.WaitWithTimeout(forcefulTimeout); len(left) > 0 {
		c.log.WithField("services", left).Warn("shutdown: services still running")
	}

	// --- Final step ---
	if c.FinalSnapshot != nil {
		ctx, cancel := context.WithTimeout(context.Background(), finalTimeout)
		defer cancel()
		if err := c.FinalSnapshot(ctx); err != nil {
			c.log.WithError(err).Error("shutdown: final snapshot failed")
		} else {
			c.log.Info("shutdown: final snapshot done")
		}
	}

	c.log.Info("shutdown: complete")
}
