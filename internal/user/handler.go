package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slingventas/sales-tracker-backend/internal/platform/apperr"
)

// Handler exposes the directory over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Login POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Login", apperr.FromBinding(err))
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Login", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, Current(c))
}

// List GET /api/users
func (h *Handler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "List", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Add POST /api/users
func (h *Handler) Add(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Add", apperr.FromBinding(err))
		return
	}
	u, err := h.svc.Add(c.Request.Context(), req)
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Add", err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Update PUT /api/users/:username
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Update", apperr.FromBinding(err))
		return
	}
	u, err := h.svc.Update(c.Request.Context(), Current(c), c.Param("username"), req)
	if err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Update", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Delete DELETE /api/users/:username
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), Current(c), c.Param("username")); err != nil {
		apperr.Respond(c, h.svc.log, moduleName, "Delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}
