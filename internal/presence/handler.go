package presence

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"telehealth-backend/internal/shared/server/respond"
)

// Handler exposes consultation presence over HTTP.
type Handler struct {
	cache *Cache
}

func NewHandler(cache *Cache) *Handler {
	return &Handler{cache: cache}
}

// RegisterRoutes mounts the presence endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/consultations/:id/presence", h.Heartbeat)
	rg.DELETE("/consultations/:id/presence", h.Leave)
	rg.GET("/consultations/:id/viewers", h.Viewers)
}

type heartbeatRequest struct {
	ViewerID string `json:"viewer_id"`
}

// Heartbeat handles POST /consultations/:id/presence.
func (h *Handler) Heartbeat(c *gin.Context) {
	var body heartbeatRequest
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.ViewerID) == "" {
		respond.Error(c, http.StatusBadRequest, "bad_request", "viewer_id is required", nil)
		return
	}
	h.cache.Touch(c.Param("id"), strings.TrimSpace(body.ViewerID))
	respond.OK(c, gin.H{"status": "ok"})
}

// Leave handles DELETE /consultations/:id/presence.
func (h *Handler) Leave(c *gin.Context) {
	var body heartbeatRequest
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.ViewerID) == "" {
		respond.Error(c, http.StatusBadRequest, "bad_request", "viewer_id is required", nil)
		return
	}
	h.cache.Leave(c.Param("id"), strings.TrimSpace(body.ViewerID))
	respond.OK(c, gin.H{"status": "ok"})
}

// Viewers handles GET /consultations/:id/viewers.
func (h *Handler) Viewers(c *gin.Context) {
	viewers := h.cache.Viewers(c.Param("id"))
	respond.OK(c, gin.H{"viewers": viewers, "count": len(viewers)})
}
