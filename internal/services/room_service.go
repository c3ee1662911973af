package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/cache"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

type RoomService struct {
	rooms  *repositories.RoomRepository
	images ImageStore // optional
}

func NewRoomService(rooms *repositories.RoomRepository, images ImageStore) *RoomService {
	return &RoomService{rooms: rooms, images: images}
}

func (s *RoomService) Create(ctx context.Context, room *models.Room) error {
	if room.Number == "" {
		return apperrors.NewValidation("number", "room number is required")
	}
	if room.Price < 0 {
		return apperrors.NewValidation("price", "price cannot be negative")
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return apperrors.NewExternalCall("room store: create", err)
	}
	cache.InvalidateRoomCaches(ctx)
	return nil
}

func (s *RoomService) Get(ctx context.Context, id int) (*models.Room, error) {
	room, err := s.rooms.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewExternalCall("room store: get", err)
	}
	if room == nil {
		return nil, apperrors.NewNotFound("room", fmt.Sprint(id))
	}
	return room, nil
}

func (s *RoomService) List(ctx context.Context, filter *models.RoomFilter) ([]*models.Room, int, error) {
	rooms, total, err := s.rooms.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.NewExternalCall("room store: list", err)
	}
	return rooms, total, nil
}

func (s *RoomService) Update(ctx context.Context, id int, patch *models.RoomPatch) (*models.Room, error) {
	room, err := s.rooms.Update(ctx, id, patch)
	if err != nil {
		return nil, apperrors.NewExternalCall("room store: update", err)
	}
	if room == nil {
		return nil, apperrors.NewNotFound("room", fmt.Sprint(id))
	}
	cache.InvalidateRoomCaches(ctx)
	return room, nil
}

// Delete refuses rooms that are rented or reserved; their lease or
// reservation has to be resolved first.
func (s *RoomService) Delete(ctx context.Context, id int) error {
	room, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if room.Status != models.RoomAvailable {
		return &apperrors.StateConflictError{Resource: "room", From: room.Status, To: "deleted"}
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		return apperrors.NewExternalCall("room store: delete", err)
	}
	cache.InvalidateRoomCaches(ctx)
	return nil
}

// AttachImages uploads room photos and appends their URLs.
func (s *RoomService) AttachImages(ctx context.Context, id int, pending []models.PendingImage) ([]string, error) {
	if s.images == nil {
		return nil, apperrors.NewValidation("images", "image storage is not configured")
	}
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, img := range pending {
		key := fmt.Sprintf("rooms/%d/%s", room.ID, img.Filename)
		url, err := s.images.Upload(ctx, key, img.ContentType, img.Content)
		if err != nil {
			log.Printf("[Room] image upload for room %d failed: %v", room.ID, err)
			continue
		}
		urls = append(urls, url)
	}
	if len(urls) == 0 {
		return nil, nil
	}
	if err := s.rooms.AppendImages(ctx, id, urls); err != nil {
		return nil, apperrors.NewExternalCall("room store: append images", err)
	}
	cache.InvalidateRoomCaches(ctx)
	return urls, nil
}

// Statistics serves occupancy counts, cached for a few minutes since
// the dashboard polls it.
func (s *RoomService) Statistics(ctx context.Context) (*models.RoomStatistics, error) {
	if data, ok := cache.GetCached(ctx, cache.RoomStatsKey); ok {
		stats := &models.RoomStatistics{}
		if err := json.Unmarshal(data, stats); err == nil {
			return stats, nil
		}
	}

	stats, err := s.rooms.Statistics(ctx)
	if err != nil {
		return nil, apperrors.NewExternalCall("room store: statistics", err)
	}
	if data, err := json.Marshal(stats); err == nil {
		cache.SetCached(ctx, cache.RoomStatsKey, data, cache.StatsTTL)
	}
	return stats, nil
}
