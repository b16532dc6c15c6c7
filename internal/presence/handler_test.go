package presence

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewCache(30 * time.Second))
	engine := gin.New()
	api := engine.Group("/api/v1")
	handler.RegisterRoutes(api)
	return engine
}

func TestPresenceHeartbeatAndViewers(t *testing.T) {
	engine := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/c1/presence", strings.NewReader(`{"viewer_id": "doctor-1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("heartbeat status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/consultations/c1/viewers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("viewers status = %d", rec.Code)
	}
	var payload struct {
		Viewers []string `json:"viewers"`
		Count   int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Count != 1 || len(payload.Viewers) != 1 || payload.Viewers[0] != "doctor-1" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestPresenceHeartbeatRequiresViewerID(t *testing.T) {
	engine := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/c1/presence", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPresenceLeave(t *testing.T) {
	engine := newTestRouter()

	beat := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/c1/presence", strings.NewReader(`{"viewer_id": "doctor-1"}`))
	beat.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(httptest.NewRecorder(), beat)

	leave := httptest.NewRequest(http.MethodDelete, "/api/v1/consultations/c1/presence", strings.NewReader(`{"viewer_id": "doctor-1"}`))
	leave.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, leave)
	if rec.Code != http.StatusOK {
		t.Fatalf("leave status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/consultations/c1/viewers", nil))
	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Count != 0 {
		t.Fatalf("count = %d, want 0", payload.Count)
	}
}
