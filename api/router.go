package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slingventas/sales-tracker-backend/internal/cycle"
	"github.com/slingventas/sales-tracker-backend/internal/dashboard"
	"github.com/slingventas/sales-tracker-backend/internal/platform/config"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
	"github.com/slingventas/sales-tracker-backend/internal/platform/metrics"
	"github.com/slingventas/sales-tracker-backend/internal/realtime"
	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/report"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

// Deps is everything the router needs from the wired application.
type Deps struct {
	Users     *user.Service
	Records   *record.Service
	Cycles    *cycle.Service
	Reports   *report.Service
	Dashboard *dashboard.Service
	Hub       *realtime.Hub

	// LoginLimiter guards POST /api/auth/login; nil disables it.
	LoginLimiter gin.HandlerFunc
	// Health serves GET /healthz; nil answers a plain ok.
	Health gin.HandlerFunc

	Log *logrus.Logger
}

// NewRouter builds the gin engine with middleware, probes and API routes.
func NewRouter(cfg config.ServerConfig, d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logging.GetLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(d.Log, func(c *gin.Context) string {
		if u := user.Current(c); u != nil {
			return u.Username
		}
		return ""
	}))
	if origins := allowedOrigins(cfg.Cors.AllowedOrigins); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logging.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", logging.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		d.Log.Warn("api: no CORS origins configured, cross-origin requests are not allowed")
	}

	health := d.Health
	if health == nil {
		health = func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	}
	r.GET("/healthz", health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	SetupRoutes(r, d)
	return r
}

// allowedOrigins drops blank entries; cors.New panics on an empty list.
func allowedOrigins(configured []string) []string {
	origins := make([]string, 0, len(configured))
	for _, o := range configured {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
