package cycle

import (
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

// List GET /api/cycles
func (h *Handler) List(c *gin.Context) {
	cycles, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "List", err)
		return
	}
	c.JSON(http.StatusOK, cycles)
}

// Archive POST /api/cycles/archive
func (h *Handler) Archive(c *gin.Context) {
	var req ArchiveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, h.svc.log, moduleName, "Archive", apperr.FromBinding(err))
			return
		}
	}
	result, err := h.svc.Archive(c.Request.Context(), user.Current(c), req.Name)
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Archive", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
