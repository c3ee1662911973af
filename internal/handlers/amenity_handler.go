package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/pkg/utils"
)

type AmenityHandler struct {
	Repo *repositories.AmenityRepository
}

func NewAmenityHandler(repo *repositories.AmenityRepository) *AmenityHandler {
	return &AmenityHandler{Repo: repo}
}

func (h *AmenityHandler) CreateAmenity(w http.ResponseWriter, r *http.Request) {
	var req models.AmenityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		utils.ErrorMessage(w, http.StatusBadRequest, "Name is required")
		return
	}

	amenity := &models.Amenity{Name: req.Name, Icon: req.Icon}
	if err := h.Repo.Create(r.Context(), amenity); err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, amenity)
}

func (h *AmenityHandler) ListAmenities(w http.ResponseWriter, r *http.Request) {
	amenities, err := h.Repo.List(r.Context())
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, amenities)
}

func (h *AmenityHandler) UpdateAmenity(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.AmenityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amenity := &models.Amenity{ID: id, Name: req.Name, Icon: req.Icon}
	if err := h.Repo.Update(r.Context(), amenity); err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, amenity)
}

func (h *AmenityHandler) DeleteAmenity(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		utils.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
