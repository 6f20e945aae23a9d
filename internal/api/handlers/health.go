package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/health"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// LivenessMessage is returned by the health_check probe
const LivenessMessage = "Agent API Started!"

// HealthReporter is satisfied by *health.HealthChecker
type HealthReporter interface {
	CheckAll(ctx context.Context) health.OverallHealth
	CheckCached(ctx context.Context) (*health.OverallHealth, error)
}

type HealthHandler struct {
	checker HealthReporter
}

func NewHealthHandler(checker HealthReporter) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleLiveness answers as soon as the router is up
func (h *HealthHandler) HandleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessMessage)
}

// HandleHealth reports component health, preferring the cached snapshot
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	overall, err := h.checker.CheckCached(ctx)
	if err != nil {
		fresh := h.checker.CheckAll(ctx)
		overall = &fresh
	}

	services := make(map[string]string, len(overall.Services))
	for _, s := range overall.Services {
		services[s.Name] = s.Status
	}

	code := http.StatusOK
	if overall.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{
		Status:    overall.Status,
		Service:   "nutri-agent",
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	})
}
