package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type TenantHandler struct {
	Service *services.TenantService
}

func NewTenantHandler(s *services.TenantService) *TenantHandler {
	return &TenantHandler{Service: s}
}

func (h *TenantHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	tenant, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, tenant)
}

func (h *TenantHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &models.TenantFilter{
		Status:   q.Get("status"),
		Search:   q.Get("search"),
		Archived: q.Get("archived") == "true",
		Page:     queryInt(q.Get("page"), 1),
		Limit:    queryInt(q.Get("limit"), 20),
	}
	if v := q.Get("room_id"); v != "" {
		if roomID, err := strconv.Atoi(v); err == nil {
			filter.RoomID = &roomID
		}
	}

	tenants, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

func (h *TenantHandler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var patch models.TenantPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tenant, err := h.Service.Update(r.Context(), id, &patch)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, tenant)
}

// ArchiveTenant retires a tenant record. Tenants linked to an active
// contract are rejected with a conflict.
func (h *TenantHandler) ArchiveTenant(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Archive(r.Context(), id); err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "Tenant archived"})
}
