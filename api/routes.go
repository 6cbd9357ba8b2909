package api

import (
	"github.com/gin-gonic/gin"

	"github.com/slingventas/sales-tracker-backend/internal/cycle"
	"github.com/slingventas/sales-tracker-backend/internal/dashboard"
	"github.com/slingventas/sales-tracker-backend/internal/realtime"
	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/report"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

// SetupRoutes registers every API route under /api.
func SetupRoutes(router *gin.Engine, d Deps) {
	users := user.NewHandler(d.Users)
	records := record.NewHandler(d.Records)
	cycles := cycle.NewHandler(d.Cycles)
	reports := report.NewHandler(d.Reports)
	board := dashboard.NewHandler(d.Dashboard)
	events := realtime.NewHandler(d.Hub)

	auth := user.AuthMiddleware(d.Users)
	ownerOnly := user.RequireOwner()

	api := router.Group("/api")
	{
		// session
		login := []gin.HandlerFunc{users.Login}
		if d.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{d.LoginLimiter}, login...)
		}
		api.POST("/auth/login", login...)
		api.GET("/auth/me", auth, users.Me)

		// directory management
		userRoutes := api.Group("/users", auth, ownerOnly)
		{
			userRoutes.GET("", users.List)
			userRoutes.POST("", users.Add)
			userRoutes.PUT("/:username", users.Update)
			userRoutes.DELETE("/:username", users.Delete)
		}

		// visits
		recordRoutes := api.Group("/records", auth)
		{
			recordRoutes.GET("", records.List)
			recordRoutes.POST("", records.Create)
			recordRoutes.GET("/duplicate", records.CheckDuplicate)
			recordRoutes.GET("/industries", records.Industries)
			recordRoutes.DELETE("/open", ownerOnly, records.ClearOpen)
			recordRoutes.PUT("/:id", records.Update)
			recordRoutes.POST("/:id/contacted", records.ToggleContacted)
			recordRoutes.DELETE("/:id", records.Delete)
			recordRoutes.GET("/:id/whatsapp", records.WhatsApp)
		}

		cycleRoutes := api.Group("/cycles", auth)
		{
			cycleRoutes.GET("", cycles.List)
			cycleRoutes.POST("/archive", ownerOnly, cycles.Archive)
		}

		statsRoutes := api.Group("/stats", auth)
		{
			statsRoutes.GET("", reports.Stats)
			statsRoutes.GET("/tiers", reports.Tiers)
			statsRoutes.GET("/leader", reports.Leader)
		}

		exportRoutes := api.Group("/export", auth, ownerOnly)
		{
			exportRoutes.GET("/csv", reports.ExportCSV)
			exportRoutes.GET("/json", reports.ExportJSON)
			exportRoutes.GET("/xlsx", reports.ExportXLSX)
		}

		api.GET("/dashboard", auth, board.Get)
		api.GET("/events", auth, events.Stream)
	}
}
