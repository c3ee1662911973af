package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

// maxUploadSize caps multipart uploads at 20 MB.
const maxUploadSize = 20 << 20

// maxImagesPerUpload caps image attachments per room or tenant.
const maxImagesPerUpload = 5

type RoomHandler struct {
	Service *services.RoomService
}

func NewRoomHandler(s *services.RoomService) *RoomHandler {
	return &RoomHandler{Service: s}
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var room models.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Service.Create(r.Context(), &room); err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	room, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, room)
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &models.RoomFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Page:   queryInt(q.Get("page"), 1),
		Limit:  queryInt(q.Get("limit"), 20),
	}
	if v := q.Get("floor"); v != "" {
		if floor, err := strconv.Atoi(v); err == nil {
			filter.Floor = &floor
		}
	}
	if v := q.Get("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &p
		}
	}
	if v := q.Get("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &p
		}
	}

	rooms, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"rooms": rooms,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var patch models.RoomPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	room, err := h.Service.Update(r.Context(), id, &patch)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, room)
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Delete(r.Context(), id); err != nil {
		utils.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImages accepts multipart image files under the "images" field
// and attaches their uploaded URLs to the room.
func (h *RoomHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	pending, err := collectPendingImages(r, "images")
	if err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(pending) == 0 {
		utils.ErrorMessage(w, http.StatusBadRequest, "No image files provided")
		return
	}

	urls, err := h.Service.AttachImages(r.Context(), id, pending)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"images": urls})
}

// GetStatistics returns room occupancy counts for the dashboard
func (h *RoomHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Statistics(r.Context())
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, stats)
}

// queryInt parses a positive integer query value with a fallback.
func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// collectPendingImages reads every uploaded file under the given
// multipart field into memory for the image attachment phase.
func collectPendingImages(r *http.Request, field string) ([]models.PendingImage, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[field]
	if len(files) > maxImagesPerUpload {
		return nil, fmt.Errorf("at most %d images per upload", maxImagesPerUpload)
	}
	var pending []models.PendingImage
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		pending = append(pending, models.PendingImage{
			Filename:    header.Filename,
			ContentType: contentType,
			Content:     content,
		})
	}
	return pending, nil
}
