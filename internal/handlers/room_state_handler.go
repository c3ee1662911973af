package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/notifications"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type RoomStateHandler struct {
	Service *services.RoomStateService
	Hub     *notifications.Hub
}

func NewRoomStateHandler(s *services.RoomStateService, hub *notifications.Hub) *RoomStateHandler {
	return &RoomStateHandler{Service: s, Hub: hub}
}

// MarkExpiring transitions a rented room and its active contracts to
// expiring.
func (h *RoomStateHandler) MarkExpiring(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	result, err := h.Service.MarkExpiring(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	h.publish(result.Room.ID, result.Room.Status)
	utils.JSON(w, http.StatusOK, result)
}

// CancelExpiring moves an expiring room and its contracts back to
// rented/active.
func (h *RoomStateHandler) CancelExpiring(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	result, err := h.Service.CancelExpiring(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	h.publish(result.Room.ID, result.Room.Status)
	utils.JSON(w, http.StatusOK, result)
}

func (h *RoomStateHandler) publish(roomID int, status string) {
	if h.Hub == nil {
		return
	}
	h.Hub.Publish(notifications.EventRoomStatusChanged,
		"Room status changed", map[string]interface{}{"room_id": roomID, "status": status})
}
