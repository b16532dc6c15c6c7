package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telehealth-backend/internal/shared/config"
	"telehealth-backend/internal/shared/metrics"
	"telehealth-backend/internal/shared/server/middleware"
	"telehealth-backend/internal/shared/server/respond"
)

// RouteRegistrar mounts a feature's endpoints on the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// New builds the gin engine with the standard middleware chain and mounts
// health, metrics, and all feature routes under /api/v1.
func New(cfg config.Config, registrars ...RouteRegistrar) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logging())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.CORS(cfg.CORSAllowOrigin))

	health := func(c *gin.Context) {
		respond.OK(c, gin.H{"status": "ok"})
	}
	engine.GET("/healthz", health)

	api := engine.Group("/api/v1")
	api.GET("/health", health)
	api.GET("/metrics", metrics.Handler())
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}

	engine.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return engine
}
