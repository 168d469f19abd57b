package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/mapscout/api/handler"
	"github.com/use-agent/mapscout/api/middleware"
	"github.com/use-agent/mapscout/cache"
	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/output"
	"github.com/use-agent/mapscout/scraper"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	Jobs:    RateLimit
//
// Health endpoint is intentionally outside rate limiting so monitoring
// probes always work.
func NewRouter(session scraper.Session, sinks []output.Sink, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(startTime))

	limited := v1.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit))
	limited.POST("/jobs", handler.Jobs(session, sinks, cfg, cc))

	return r
}
