package api

import (
	"github.com/Ayash-Bera/nutri-agent/backend/internal/api/handlers"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter wires middleware and the /api/v1 routes
func NewRouter(agent *handlers.AgentHandler, health *handlers.HealthHandler, limiter *middleware.RateLimiter, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health_check", health.HandleLiveness)
		v1.GET("/health", health.HandleHealth)

		limited := v1.Group("")
		if limiter != nil {
			limited.Use(limiter.RateLimit())
		}
		limited.POST("/query_llm", agent.HandleQuery)
		limited.POST("/correlate", agent.HandleCorrelate)
		limited.POST("/feedback", agent.HandleFeedback)
	}

	return r
}
