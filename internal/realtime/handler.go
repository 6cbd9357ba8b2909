package realtime

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultKeepAlive = 25 * time.Second

// Handler streams hub events as server-sent events.
type Handler struct {
	hub       *Hub
	keepAlive time.Duration
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub, keepAlive: defaultKeepAlive}
}

// Stream GET /api/events
func (h *Handler) Stream(c *gin.Context) {
	events, unsubscribe := h.hub.Subscribe(16)
	defer unsubscribe()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", gin.H{"at": time.Now().UTC()})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("change", ev)
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", t.Unix())
			return true
		}
	})
}
