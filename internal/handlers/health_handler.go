package handlers

import (
	"net/http"

	"rental-backend/internal/health"
	"rental-backend/internal/notifications"
	"rental-backend/pkg/utils"
)

type HealthHandler struct {
	checker *health.HealthChecker
	hub     *notifications.Hub
}

func NewHealthHandler(checker *health.HealthChecker, hub *notifications.Hub) *HealthHandler {
	return &HealthHandler{checker: checker, hub: hub}
}

// BasicHealth - for Kubernetes liveness probe
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHealth - for Kubernetes readiness probe
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckBasic()

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	utils.JSON(w, code, status)
}

// DetailedHealth - for monitoring dashboard
func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckBasic()

	response := map[string]interface{}{
		"status":     status.Status,
		"database":   status.Database,
		"cache":      status.Cache,
		"ws_clients": 0,
	}
	if h.hub != nil {
		response["ws_clients"] = h.hub.ClientCount()
	}

	utils.JSON(w, http.StatusOK, response)
}
