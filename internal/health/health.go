package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/cache"
)

const dbPingTimeout = 2 * time.Second

type HealthChecker struct {
	db *pgxpool.Pool
}

func NewHealthChecker(db *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{db: db}
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
	Cache    CacheHealth    `json:"cache"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type CacheHealth struct {
	Status string `json:"status"`
}

// CheckBasic reports overall readiness. The database decides the
// overall status; the cache is optional, so a down Redis only shows as
// a degraded component.
func (h *HealthChecker) CheckBasic() HealthStatus {
	status := HealthStatus{
		Status:   "healthy",
		Database: h.checkDatabase(),
		Cache:    CacheHealth{Status: "healthy"},
	}
	if !cache.IsHealthy() {
		status.Cache.Status = "unavailable"
	}
	if status.Database.Status != "healthy" {
		status.Status = "unhealthy"
	}
	return status
}

func (h *HealthChecker) checkDatabase() DatabaseHealth {
	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)

	health := DatabaseHealth{
		Status:       "healthy",
		ResponseTime: time.Since(start).Milliseconds(),
	}
	if err != nil {
		health.Status = "unhealthy"
	}
	return health
}
