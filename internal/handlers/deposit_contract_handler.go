package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/models"
	"rental-backend/internal/notifications"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type DepositContractHandler struct {
	Service *services.DepositContractService
	Hub     *notifications.Hub
}

func NewDepositContractHandler(s *services.DepositContractService, hub *notifications.Hub) *DepositContractHandler {
	return &DepositContractHandler{Service: s, Hub: hub}
}

// CreateDepositContract records a deposit and reserves the room.
func (h *DepositContractHandler) CreateDepositContract(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDepositContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deposit, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		utils.Error(w, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(notifications.EventDepositReserved,
			"Room reserved with deposit", map[string]int{"deposit_id": deposit.ID, "room_id": deposit.RoomID})
	}

	utils.JSON(w, http.StatusCreated, deposit)
}

func (h *DepositContractHandler) GetDepositContract(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	deposit, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, deposit)
}

func (h *DepositContractHandler) ListDepositContracts(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.Service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, deposits)
}

// CancelDepositContract voids a deposit and releases the room when no
// other active deposit holds it.
func (h *DepositContractHandler) CancelDepositContract(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	deposit, err := h.Service.Cancel(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, deposit)
}
