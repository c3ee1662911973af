package services

import (
	"context"
	"fmt"
	"log"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/cache"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/timeutil"
)

// DepositContractService handles room reservations. Creating a deposit
// contract moves the room available → reserved; cancelling it releases
// the room. Fulfilment happens inside the rental agreement commit.
type DepositContractService struct {
	deposits *repositories.DepositContractRepository
	rooms    *repositories.RoomRepository
}

func NewDepositContractService(deposits *repositories.DepositContractRepository, rooms *repositories.RoomRepository) *DepositContractService {
	return &DepositContractService{deposits: deposits, rooms: rooms}
}

func (s *DepositContractService) Create(ctx context.Context, req *models.CreateDepositContractRequest) (*models.DepositContract, error) {
	if req.TenantName == "" {
		return nil, apperrors.NewValidation("tenant_name", "tenant name is required")
	}
	if !phonePattern.MatchString(req.TenantPhone) {
		return nil, apperrors.NewValidation("tenant_phone", "phone must be 10 digits")
	}
	if req.DepositAmount <= 0 {
		return nil, apperrors.NewValidation("deposit_amount", "deposit amount must be positive")
	}
	depositDate, err := timeutil.ParseDate(req.DepositDate)
	if err != nil {
		return nil, apperrors.NewValidation("deposit_date", "invalid date, expected YYYY-MM-DD")
	}
	moveInDate, err := timeutil.ParseDate(req.ExpectedMoveInDate)
	if err != nil {
		return nil, apperrors.NewValidation("expected_move_in_date", "invalid date, expected YYYY-MM-DD")
	}

	room, err := s.rooms.Get(ctx, req.RoomID)
	if err != nil {
		return nil, apperrors.NewExternalCall("room store: get", err)
	}
	if room == nil {
		return nil, apperrors.NewNotFound("room", fmt.Sprint(req.RoomID))
	}
	if room.Status != models.RoomAvailable {
		return nil, &apperrors.StateConflictError{Resource: "room", From: room.Status, To: models.RoomReserved}
	}

	deposit := &models.DepositContract{
		RoomID:             req.RoomID,
		TenantName:         req.TenantName,
		TenantPhone:        req.TenantPhone,
		TenantEmail:        req.TenantEmail,
		DepositAmount:      req.DepositAmount,
		DepositDate:        depositDate,
		ExpectedMoveInDate: moveInDate,
		Status:             models.DepositActive,
		Notes:              req.Notes,
	}
	if err := s.deposits.Create(ctx, deposit); err != nil {
		return nil, apperrors.NewExternalCall("deposit store: create", err)
	}

	if err := s.rooms.UpdateStatus(ctx, req.RoomID, models.RoomReserved, nil, nil); err != nil {
		// Keep the stores consistent: a reservation that cannot hold
		// the room is withdrawn.
		if cErr := s.deposits.SetStatus(ctx, deposit.ID, models.DepositCancelled); cErr != nil {
			log.Printf("[Deposit] withdraw of deposit %d failed: %v", deposit.ID, cErr)
		}
		return nil, apperrors.NewExternalCall("room store: update status", err)
	}

	cache.InvalidateRoomCaches(ctx)
	log.Printf("[Deposit] room %d reserved for %s", req.RoomID, req.TenantName)
	return deposit, nil
}

func (s *DepositContractService) Get(ctx context.Context, id int) (*models.DepositContract, error) {
	deposit, err := s.deposits.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewExternalCall("deposit store: get", err)
	}
	if deposit == nil {
		return nil, apperrors.NewNotFound("deposit contract", fmt.Sprint(id))
	}
	return deposit, nil
}

func (s *DepositContractService) List(ctx context.Context, status string) ([]*models.DepositContract, error) {
	deposits, err := s.deposits.List(ctx, status)
	if err != nil {
		return nil, apperrors.NewExternalCall("deposit store: list", err)
	}
	return deposits, nil
}

// Cancel withdraws an active reservation and releases the room when no
// other active deposit holds it.
func (s *DepositContractService) Cancel(ctx context.Context, id int) (*models.DepositContract, error) {
	deposit, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if deposit.Status == models.DepositCancelled {
		return deposit, nil
	}
	if deposit.Status != models.DepositActive {
		return nil, &apperrors.StateConflictError{Resource: "deposit contract", From: deposit.Status, To: models.DepositCancelled}
	}

	if err := s.deposits.SetStatus(ctx, id, models.DepositCancelled); err != nil {
		return nil, apperrors.NewExternalCall("deposit store: set status", err)
	}
	deposit.Status = models.DepositCancelled

	s.releaseRoomIfUnreserved(ctx, deposit.RoomID)
	cache.InvalidateRoomCaches(ctx)
	return deposit, nil
}

func (s *DepositContractService) releaseRoomIfUnreserved(ctx context.Context, roomID int) {
	remaining, err := s.deposits.FindActiveByRoom(ctx, roomID)
	if err != nil || remaining != nil {
		return
	}
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil || room == nil || room.Status != models.RoomReserved {
		return
	}
	if err := s.rooms.UpdateStatus(ctx, roomID, models.RoomAvailable, nil, nil); err != nil {
		log.Printf("[Deposit] room %d release failed: %v", roomID, err)
	}
}
