package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/models"
	"rental-backend/internal/notifications"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type ContractHandler struct {
	Service *services.ContractService
	Hub     *notifications.Hub
}

func NewContractHandler(s *services.ContractService, hub *notifications.Hub) *ContractHandler {
	return &ContractHandler{Service: s, Hub: hub}
}

func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	contract, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, contract)
}

func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &models.ContractFilter{
		Status: q.Get("status"),
		Page:   queryInt(q.Get("page"), 1),
		Limit:  queryInt(q.Get("limit"), 20),
	}
	if v := q.Get("room_id"); v != "" {
		if roomID, err := strconv.Atoi(v); err == nil {
			filter.RoomID = &roomID
		}
	}

	contracts, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"contracts": contracts,
		"total":     total,
		"page":      filter.Page,
		"limit":     filter.Limit,
	})
}

// TerminateContract ends a contract, releases its room and closes out
// the tenants' leases.
func (h *ContractHandler) TerminateContract(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	contract, err := h.Service.Terminate(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(notifications.EventContractTerminated,
			"Contract terminated", map[string]int{"contract_id": contract.ID, "room_id": contract.RoomID})
	}

	utils.JSON(w, http.StatusOK, contract)
}
