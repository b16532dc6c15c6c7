package triage

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"telehealth-backend/internal/llm"
	"telehealth-backend/internal/shared/server/respond"
	"telehealth-backend/internal/shared/telemetry"
)

const maxSymptomsLen = 4000

// Handler exposes symptom analysis over HTTP.
type Handler struct {
	analyzer *Analyzer
	blocked  BlockedRepo
}

func NewHandler(analyzer *Analyzer, blocked BlockedRepo) *Handler {
	return &Handler{analyzer: analyzer, blocked: blocked}
}

// RegisterRoutes mounts the triage endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/symptoms/analyze", h.Analyze)
	rg.GET("/symptoms/blocked", h.ListBlocked)
}

type analyzeRequest struct {
	Symptoms string `json:"symptoms"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	UserID   *int64 `json:"user_id"`
}

// Analyze handles POST /symptoms/analyze.
func (h *Handler) Analyze(c *gin.Context) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}
	if len(body.Symptoms) > maxSymptomsLen {
		respond.Error(c, http.StatusBadRequest, "bad_request", "symptoms text too long", nil)
		return
	}
	if body.Age < 0 || body.Age > 130 {
		respond.Error(c, http.StatusBadRequest, "bad_request", "age out of range", nil)
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), Request{
		Symptoms: body.Symptoms,
		Age:      body.Age,
		Gender:   strings.TrimSpace(body.Gender),
		UserID:   body.UserID,
	})
	if err != nil {
		if llm.IsConfigError(err) {
			respond.Error(c, http.StatusServiceUnavailable, "service_unavailable", "analysis service is not available", nil)
			return
		}
		telemetry.Error("symptom analysis failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", nil)
		return
	}

	c.Set("triageSeverity", result.Severity)
	c.Set("triageRetried", result.Retried)
	respond.OK(c, result)
}

// ListBlocked handles GET /symptoms/blocked; an operator view of recent audit
// records.
func (h *Handler) ListBlocked(c *gin.Context) {
	attempts, err := h.blocked.ListRecentBlocked(c.Request.Context(), 50)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load blocked attempts", nil)
		return
	}
	out := make([]gin.H, 0, len(attempts))
	for _, a := range attempts {
		entry := gin.H{
			"id":         a.ID,
			"symptoms":   a.Symptoms,
			"reason":     a.Reason,
			"model":      a.Model,
			"created_at": a.CreatedAt,
		}
		if a.UserID != nil {
			entry["user_id"] = *a.UserID
		}
		if a.RawResponse != nil {
			entry["raw_response"] = *a.RawResponse
		}
		out = append(out, entry)
	}
	respond.OK(c, gin.H{"blocked": out})
}
