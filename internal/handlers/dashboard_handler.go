package handlers

import (
	"encoding/json"
	"net/http"

	"rental-backend/internal/cache"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type DashboardHandler struct {
	Rooms     *services.RoomService
	Invoices  *repositories.InvoiceRepository
	Contracts *repositories.ContractRepository
}

func NewDashboardHandler(rooms *services.RoomService, invoices *repositories.InvoiceRepository, contracts *repositories.ContractRepository) *DashboardHandler {
	return &DashboardHandler{Rooms: rooms, Invoices: invoices, Contracts: contracts}
}

type dashboardSummary struct {
	Rooms           *models.RoomStatistics `json:"rooms"`
	ActiveContracts int                    `json:"active_contracts"`
	MonthlyRevenue  map[string]float64     `json:"monthly_revenue"`
}

// GetSummary returns the dashboard overview: room occupancy, active
// contract count and a trailing 12 month revenue series.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if data, ok := cache.GetCached(r.Context(), cache.DashboardKey); ok {
		var cached dashboardSummary
		if json.Unmarshal(data, &cached) == nil {
			utils.JSON(w, http.StatusOK, cached)
			return
		}
	}

	stats, err := h.Rooms.Statistics(r.Context())
	if err != nil {
		utils.Error(w, err)
		return
	}

	_, activeContracts, err := h.Contracts.List(r.Context(), &models.ContractFilter{
		Status: models.ContractActive,
		Limit:  1,
	})
	if err != nil {
		utils.Error(w, err)
		return
	}

	revenue, err := h.Invoices.MonthlyRevenue(r.Context())
	if err != nil {
		utils.Error(w, err)
		return
	}

	summary := dashboardSummary{
		Rooms:           stats,
		ActiveContracts: activeContracts,
		MonthlyRevenue:  revenue,
	}

	if data, err := json.Marshal(summary); err == nil {
		cache.SetCached(r.Context(), cache.DashboardKey, data, cache.DashboardTTL)
	}

	utils.JSON(w, http.StatusOK, summary)
}
