// Package httpapi exposes the analysis pipeline over HTTP: start a run,
// poll the latest snapshot, look up past runs.
package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"comment-lens/internal/orchestrator"
	"comment-lens/shared/config"
	"comment-lens/shared/monitoring"
)

// NewRouter wires the HTTP surface for the analysis service.
func NewRouter(orch *orchestrator.Orchestrator, monitor *monitoring.Monitor, cfg *config.Config) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(metricsMiddleware())

	h := &handlers{orch: orch, monitor: monitor}
	limiter := newRateLimiter(cfg.Server.RateLimitPerMinute, time.Minute)

	api := r.Group("/api")
	{
		api.POST("/analyses", limiter.middleware(), h.startAnalysis)
		api.GET("/analyses/latest", h.latestAnalysis)
		api.GET("/analyses/:id", h.getAnalysis)
	}

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
