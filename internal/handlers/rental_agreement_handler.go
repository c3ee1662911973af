package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"rental-backend/internal/models"
	"rental-backend/internal/notifications"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type RentalAgreementHandler struct {
	Service *services.RentalService
	Hub     *notifications.Hub
}

func NewRentalAgreementHandler(s *services.RentalService, hub *notifications.Hub) *RentalAgreementHandler {
	return &RentalAgreementHandler{Service: s, Hub: hub}
}

// CommitAgreement runs the full agreement transaction. The request is
// either plain JSON or a multipart form with a "payload" JSON field and
// per-tenant image files under "tenant_images_<index>".
func (h *RentalAgreementHandler) CommitAgreement(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.CommitRentalAgreement(r.Context(), req)
	if err != nil {
		utils.Error(w, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(notifications.EventAgreementCommitted,
			fmt.Sprintf("Rental agreement committed for room %d", req.RoomID),
			map[string]int{"contract_id": result.Contract.ID, "room_id": req.RoomID})
	}

	utils.JSON(w, http.StatusCreated, result)
}

func (h *RentalAgreementHandler) parseRequest(r *http.Request) (*models.RentalAgreementRequest, error) {
	var req models.RentalAgreementRequest

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid request body")
		}
		return &req, nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, fmt.Errorf("invalid multipart form")
	}

	payload := r.FormValue("payload")
	if payload == "" {
		return nil, fmt.Errorf("missing payload field")
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, fmt.Errorf("invalid payload json")
	}

	for i := range req.Tenants {
		pending, err := collectPendingImages(r, fmt.Sprintf("tenant_images_%d", i))
		if err != nil {
			return nil, fmt.Errorf("failed to read tenant images: %v", err)
		}
		req.Tenants[i].PendingImages = pending
	}
	return &req, nil
}
