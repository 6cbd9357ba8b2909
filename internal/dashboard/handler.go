package dashboard

import (
	"net/http"
	"strconv"

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

// Get GET /api/dashboard?index=N
func (h *Handler) Get(c *gin.Context) {
	index := OpenIndex
	if raw := c.Query("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			apperr.Respond(c, h.svc.log, moduleName, "Get", apperr.Invalid("index", "index must be an integer"))
			return
		}
		index = n
	}

	snap, err := h.svc.Load(c.Request.Context(), user.Current(c), index)
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Get", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
