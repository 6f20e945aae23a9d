package health

import (
	"context"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Stores is satisfied by *database.Manager
type Stores interface {
	PingDatabase() error
	PingRedis() error
}

// PatientSource is satisfied by *patient.Client
type PatientSource interface {
	Ping(ctx context.Context) error
}

// SnapshotCache is satisfied by *database.Cache
type SnapshotCache interface {
	CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error
	GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error)
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	stores     Stores
	patients   PatientSource
	cache      SnapshotCache
	healthRepo models.SystemHealthRepository
	logger     *logrus.Logger
	startedAt  time.Time
}

func NewHealthChecker(stores Stores, patients PatientSource, cache SnapshotCache, healthRepo models.SystemHealthRepository, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		stores:     stores,
		patients:   patients,
		cache:      cache,
		healthRepo: healthRepo,
		logger:     logger,
		startedAt:  time.Now(),
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

func (h *HealthChecker) CheckPostgreSQL() ServiceHealth {
	return h.check("postgresql", h.stores.PingDatabase)
}

func (h *HealthChecker) CheckRedis() ServiceHealth {
	return h.check("redis", h.stores.PingRedis)
}

// CheckPatientSource probes the patient-data endpoint. A failing source degrades
// the service; correlation still works for callers that retry later.
func (h *HealthChecker) CheckPatientSource(ctx context.Context) ServiceHealth {
	result := h.check("patient_source", func() error {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return h.patients.Ping(ctx)
	})
	if result.Status == "unhealthy" {
		result.Status = "degraded"
	}
	return result
}

func (h *HealthChecker) check(name string, ping func() error) ServiceHealth {
	start := time.Now()
	err := ping()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", name).Error("Health check failed")
	}

	return ServiceHealth{
		Name:         name,
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on all services
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := []ServiceHealth{
		h.CheckPostgreSQL(),
		h.CheckRedis(),
		h.CheckPatientSource(ctx),
	}

	h.record(services)

	return OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   h.getUptime(),
	}
}

// record persists each result; the database may be the thing that is down
func (h *HealthChecker) record(services []ServiceHealth) {
	if h.healthRepo == nil {
		return
	}
	for _, s := range services {
		if err := h.healthRepo.UpdateServiceHealth(s.Name, s.Status, s.ResponseTime, s.Error); err != nil {
			h.logger.WithError(err).WithField("service", s.Name).Debug("Failed to record health status")
		}
	}
}

// CheckCached returns cached health status if available
func (h *HealthChecker) CheckCached(ctx context.Context) (*OverallHealth, error) {
	cachedHealth, err := h.cache.GetCachedSystemHealth(ctx)
	if err != nil {
		return nil, err
	}

	services := make([]ServiceHealth, len(cachedHealth))
	for i, health := range cachedHealth {
		services[i] = ServiceHealth{
			Name:         health.ServiceName,
			Status:       health.Status,
			ResponseTime: health.ResponseTimeMs,
			Error:        health.ErrorMessage,
			LastChecked:  health.CheckedAt.Format(time.RFC3339),
		}
	}

	return &OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   h.getUptime(),
	}, nil
}

func overallStatus(services []ServiceHealth) string {
	status := "healthy"
	for _, service := range services {
		if service.Status == "unhealthy" {
			return "unhealthy"
		}
		if service.Status == "degraded" {
			status = "degraded"
		}
	}
	return status
}

func (h *HealthChecker) getUptime() string {
	return time.Since(h.startedAt).Round(time.Second).String()
}

// PeriodicHealthCheck runs health checks periodically and caches the snapshot
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.CheckAll(ctx)

			cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := h.cache.CacheSystemHealth(cacheCtx, toModels(health.Services), 2*interval); err != nil {
				h.logger.WithError(err).Error("Failed to cache health status")
			}
			cancel()

			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}

func toModels(services []ServiceHealth) []models.SystemHealth {
	healthModels := make([]models.SystemHealth, len(services))
	for i, service := range services {
		checkedAt, _ := time.Parse(time.RFC3339, service.LastChecked)
		healthModels[i] = models.SystemHealth{
			ServiceName:    service.Name,
			Status:         service.Status,
			ResponseTimeMs: service.ResponseTime,
			ErrorMessage:   service.Error,
			CheckedAt:      checkedAt,
		}
	}
	return healthModels
}
