package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slingventas/sales-tracker-backend/api"
	"github.com/slingventas/sales-tracker-backend/internal/cycle"
	"github.com/slingventas/sales-tracker-backend/internal/dashboard"
	"github.com/slingventas/sales-tracker-backend/internal/platform/backup"
	"github.com/slingventas/sales-tracker-backend/internal/platform/config"
	"github.com/slingventas/sales-tracker-backend/internal/platform/database"
	"github.com/slingventas/sales-tracker-backend/internal/platform/health"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
	"github.com/slingventas/sales-tracker-backend/internal/platform/ratelimit"
	"github.com/slingventas/sales-tracker-backend/internal/platform/shutdown"
	"github.com/slingventas/sales-tracker-backend/internal/platform/startup"
	"github.com/slingventas/sales-tracker-backend/internal/realtime"
	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/report"
	"github.com/slingventas/sales-tracker-backend/internal/user"
	"github.com/slingventas/sales-tracker-backend/pkg/lifecycle"
	"github.com/slingventas/sales-tracker-backend/pkg/token"
	"github.com/slingventas/sales-tracker-backend/pkg/whatsapp"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetLogger().WithError(err).Fatal("failed to load config")
	}
	log := logging.Init(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	// 1. Stores and session signing
	if err := token.SetSecret(cfg.Auth.Secret); err != nil {
		log.WithError(err).Fatal("failed to set token secret")
	}
	if cfg.Auth.Secret == "" {
		log.Warn("auth.secret is empty, sessions will not survive a restart")
	}
	if err := database.InitDB(cfg.Database.Driver, cfg.Database.DSN, log); err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	rdb := database.InitRedis(cfg.Database.Redis.Address, cfg.Database.Redis.Password, cfg.Database.Redis.DB, log)
	db := database.DB

	// 2. Services
	loc := cfg.Contact.Location()
	hub := realtime.NewHub()
	publisher := realtime.NewPublisher(hub, rdb, log)
	users := user.NewService(db, rdb, log, cfg.Auth.TokenTTL)
	records := record.NewService(db, log,
		record.WithNotifier(publisher),
		record.WithLocation(loc),
		record.WithLinkBuilder(whatsapp.New(cfg.Contact.CountryPrefix, cfg.Contact.Region)),
	)
	cycles := cycle.NewService(db, rdb, log, cycle.WithNotifier(publisher), cycle.WithLocation(loc))
	reports := report.NewService(db, log, users, cycles)
	board := dashboard.NewService(db, log, cycles, reports)

	// 3. Schema, caches and the first owner
	checker := health.NewChecker(rdb, log, startup.RebuildCache(users, log))
	checker.InitializeRunID(context.Background())
	if err := startup.InitializeApplication(context.Background(), startup.Modules{DB: db, Users: users, Log: log}, cfg.Auth.BootstrapOwner); err != nil {
		log.WithError(err).Fatal("application initialization failed")
	}
	checker.PerformCheck(context.Background())

	// 4. Background services
	gracefulMgr := lifecycle.NewManager(log)
	forcefulMgr := lifecycle.NewManager(log)
	scheduler := backup.NewScheduler(db, cfg.Backup.Dir, cfg.Backup.Interval, log)

	mustGo(log, gracefulMgr, "health-checker", checker.Run)
	mustGo(log, gracefulMgr, "backup-scheduler", scheduler.Run)
	mustGo(log, gracefulMgr, "realtime-subscriber", publisher.RunSubscriber)
	startRelay(log, gracefulMgr, forcefulMgr, publisher)

	// 5. HTTP
	loginLimiter, err := ratelimit.New(cfg.RateLimit.Login, "limiter:login", rdb)
	if err != nil {
		log.WithError(err).Fatal("invalid rateLimit.login")
	}
	router := api.NewRouter(cfg.Server, api.Deps{
		Users:        users,
		Records:      records,
		Cycles:       cycles,
		Reports:      reports,
		Dashboard:    board,
		Hub:          hub,
		LoginLimiter: ratelimit.Middleware(loginLimiter, log),
		Health:       checker.Handler,
		Log:          log,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr, log)
	coordinator.BeforeHTTP = hub.Close
	coordinator.FinalSnapshot = func(ctx context.Context) error {
		_, err := scheduler.Snapshot(ctx)
		return err
	}
	coordinator.ListenForSignalsAndShutdown(srv)
}

func mustGo(log *logrus.Logger, m *lifecycle.Manager, name string, fn func(*lifecycle.Handle)) {
	if err := m.Go(name, fn); err != nil {
		log.WithError(err).Fatal("failed to start background service")
	}
}

// startRelay runs the relay under both managers: it stops taking events in
// the graceful phase and stops draining in the forceful one.
func startRelay(log *logrus.Logger, graceful, forceful *lifecycle.Manager, p *realtime.Publisher) {
	g, err := graceful.NewServiceHandle("realtime-relay")
	if err != nil {
		log.WithError(err).Fatal("failed to register realtime relay")
	}
	f, err := forceful.NewServiceHandle("realtime-relay")
	if err != nil {
		log.WithError(err).Fatal("failed to register realtime relay")
	}
	go func() {
		defer g.Close()
		defer f.Close()
		p.RunRelay(g, f)
	}()
}
