package services

import (
	"context"
	"fmt"
	"log"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
)

// RoomStateService keeps room status and contract status moving
// together for the expiring transitions. The room update and the
// per-contract updates are independent store calls with no rollback:
// on a partial failure the result reports how many contracts were
// updated versus expected so an operator can reconcile by hand.
type RoomStateService struct {
	rooms     RoomStore
	contracts ContractStore
}

func NewRoomStateService(rooms RoomStore, contracts ContractStore) *RoomStateService {
	return &RoomStateService{rooms: rooms, contracts: contracts}
}

// SyncResult reports a fan-out over the room's contracts.
type SyncResult struct {
	Room              *models.Room `json:"room"`
	ContractsExpected int          `json:"contracts_expected"`
	ContractsUpdated  int          `json:"contracts_updated"`
}

// MarkExpiring moves a rented room to expiring along with its active
// contracts. Calling it on an already-expiring room is a no-op; any
// other status is a state conflict.
func (s *RoomStateService) MarkExpiring(ctx context.Context, roomID int) (*SyncResult, error) {
	return s.transition(ctx, roomID, models.RoomRented, models.RoomExpiring, models.ContractActive, models.ContractExpiring)
}

// CancelExpiring moves an expiring room back to rented and its expiring
// contracts back to active. Calling it on a rented room is a no-op; any
// other status is a state conflict.
func (s *RoomStateService) CancelExpiring(ctx context.Context, roomID int) (*SyncResult, error) {
	return s.transition(ctx, roomID, models.RoomExpiring, models.RoomRented, models.ContractExpiring, models.ContractActive)
}

func (s *RoomStateService) transition(ctx context.Context, roomID int, roomFrom, roomTarget, contractFrom, contractTo string) (*SyncResult, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, apperrors.NewExternalCall("room store: get", err)
	}
	if room == nil {
		return nil, apperrors.NewNotFound("room", fmt.Sprint(roomID))
	}

	switch room.Status {
	case roomTarget:
		// Already transitioned; still reconcile the contracts below.
	case roomFrom:
		if err := s.rooms.UpdateStatus(ctx, roomID, roomTarget, room.LeaseStart, room.LeaseEnd); err != nil {
			return nil, apperrors.NewExternalCall("room store: update status", err)
		}
		room.Status = roomTarget
	default:
		// The expiring edges are only defined from rented and back.
		return nil, &apperrors.StateConflictError{Resource: "room", From: room.Status, To: roomTarget}
	}

	contracts, err := s.contracts.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, apperrors.NewExternalCall("contract store: list by room", err)
	}

	result := &SyncResult{Room: room}
	for _, c := range contracts {
		if c.Status == contractTo {
			// Already in the target status; idempotent skip.
			continue
		}
		if c.Status != contractFrom {
			continue
		}
		result.ContractsExpected++
		if err := s.contracts.UpdateStatus(ctx, c.ID, contractTo); err != nil {
			// Best effort: earlier contract updates stay applied.
			log.Printf("[RoomState] contract %d -> %s failed: %v", c.ID, contractTo, err)
			continue
		}
		result.ContractsUpdated++
	}

	if result.ContractsUpdated < result.ContractsExpected {
		log.Printf("[RoomState] room %d: %d of %d contract(s) updated to %s",
			roomID, result.ContractsUpdated, result.ContractsExpected, contractTo)
	}
	return result, nil
}
