package record

import (
	"errors"
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

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("id", "id must be a positive integer")
	}
	return uint(id), nil
}

func (h *Handler) respond(c *gin.Context, funcName string, err error) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": dup.Error(), "owner": dup.Owner})
		return
	}
	apperr.Respond(c, h.svc.log, moduleName, funcName, err)
}

// List GET /api/records?cycle=&q=&status=
func (h *Handler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context(), user.Current(c), Filter{
		Cycle:  c.Query("cycle"),
		Query:  c.Query("q"),
		Status: c.Query("status"),
	})
	if err != nil {
		h.respond(c, "List", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Create POST /api/records
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, "Create", apperr.FromBinding(err))
		return
	}
	r, err := h.svc.Create(c.Request.Context(), user.Current(c), req)
	if err != nil {
		h.respond(c, "Create", err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// CheckDuplicate GET /api/records/duplicate?company=&contact=
func (h *Handler) CheckDuplicate(c *gin.Context) {
	owner, found, err := h.svc.CheckDuplicate(c.Request.Context(), c.Query("company"), c.Query("contact"))
	if err != nil {
		h.respond(c, "CheckDuplicate", err)
		return
	}
	c.JSON(http.StatusOK, DuplicateResult{Duplicate: found, Owner: owner})
}

// Industries GET /api/records/industries
func (h *Handler) Industries(c *gin.Context) {
	c.JSON(http.StatusOK, Industries)
}

// Update PUT /api/records/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respond(c, "Update", err)
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, "Update", apperr.FromBinding(err))
		return
	}
	r, err := h.svc.Update(c.Request.Context(), user.Current(c), id, req)
	if err != nil {
		h.respond(c, "Update", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ToggleContacted POST /api/records/:id/contacted
func (h *Handler) ToggleContacted(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respond(c, "ToggleContacted", err)
		return
	}
	r, err := h.svc.ToggleContacted(c.Request.Context(), user.Current(c), id)
	if err != nil {
		h.respond(c, "ToggleContacted", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Delete DELETE /api/records/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respond(c, "Delete", err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), user.Current(c), id); err != nil {
		h.respond(c, "Delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearOpen DELETE /api/records/open
func (h *Handler) ClearOpen(c *gin.Context) {
	n, err := h.svc.ClearOpen(c.Request.Context(), user.Current(c))
	if err != nil {
		h.respond(c, "ClearOpen", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// WhatsApp GET /api/records/:id/whatsapp
func (h *Handler) WhatsApp(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respond(c, "WhatsApp", err)
		return
	}
	link, err := h.svc.WhatsAppLink(c.Request.Context(), user.Current(c), id)
	if err != nil {
		h.respond(c, "WhatsApp", err)
		return
	}
	c.JSON(http.StatusOK, link)
}
