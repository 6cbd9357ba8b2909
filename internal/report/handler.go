package report

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slingventas/sales-tracker-backend/internal/platform/apperr"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Stats GET /api/stats?cycle=
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), c.Query("cycle"))
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Tiers GET /api/stats/tiers
func (h *Handler) Tiers(c *gin.Context) {
	c.JSON(http.StatusOK, CommissionTiers())
}

// Leader GET /api/stats/leader
func (h *Handler) Leader(c *gin.Context) {
	leader, err := h.svc.Leader(c.Request.Context(), user.Current(c))
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Leader", err)
		return
	}
	c.JSON(http.StatusOK, leader)
}

func (h *Handler) load(c *gin.Context, funcName string) (*Export, bool) {
	exp, err := h.svc.Export(c.Request.Context(), user.Current(c), c.Query("cycle"))
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, funcName, err)
		return nil, false
	}
	return exp, true
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// ExportCSV GET /api/export/csv?cycle=
func (h *Handler) ExportCSV(c *gin.Context) {
	exp, ok := h.load(c, "ExportCSV")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, exp.Records); err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "ExportCSV", err)
		return
	}
	attachment(c, CSVFileName(exp.CycleName, h.svc.now()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON GET /api/export/json?cycle=
func (h *Handler) ExportJSON(c *gin.Context) {
	exp, ok := h.load(c, "ExportJSON")
	if !ok {
		return
	}
	body, err := ConvertToJSON(exp.Records)
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "ExportJSON", err)
		return
	}
	attachment(c, JSONFileName(exp.CycleName))
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// ExportXLSX GET /api/export/xlsx?cycle=
func (h *Handler) ExportXLSX(c *gin.Context) {
	exp, ok := h.load(c, "ExportXLSX")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, exp.Records, exp.Stats); err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "ExportXLSX", err)
		return
	}
	attachment(c, XLSXFileName(exp.CycleName, h.svc.now()))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
