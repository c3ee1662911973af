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

// ContractService serves contract reads and the terminate operation.
// Creating and amending contracts goes through the rental agreement
// commit instead, so the room and tenants move together.
type ContractService struct {
	contracts *repositories.ContractRepository
	tenants   *repositories.TenantRepository
	rooms     *repositories.RoomRepository
}

func NewContractService(contracts *repositories.ContractRepository, tenants *repositories.TenantRepository, rooms *repositories.RoomRepository) *ContractService {
	return &ContractService{contracts: contracts, tenants: tenants, rooms: rooms}
}

func (s *ContractService) Get(ctx context.Context, id int) (*models.Contract, error) {
	contract, err := s.contracts.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewExternalCall("contract store: get", err)
	}
	if contract == nil {
		return nil, apperrors.NewNotFound("contract", fmt.Sprint(id))
	}
	return contract, nil
}

func (s *ContractService) List(ctx context.Context, filter *models.ContractFilter) ([]*models.Contract, int, error) {
	contracts, total, err := s.contracts.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.NewExternalCall("contract store: list", err)
	}
	return contracts, total, nil
}

// Terminate ends the lease: the contract moves to terminated, its
// tenants get their lease ended and the room opens up again. Calling it
// on an already-terminated contract is a no-op.
func (s *ContractService) Terminate(ctx context.Context, id int) (*models.Contract, error) {
	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status == models.ContractTerminated {
		return contract, nil
	}

	if err := s.contracts.UpdateStatus(ctx, id, models.ContractTerminated); err != nil {
		return nil, apperrors.NewExternalCall("contract store: update status", err)
	}
	contract.Status = models.ContractTerminated

	// Lease ends and the room release are best effort past this point:
	// the contract is already terminated and repeating the call cleans
	// up whatever failed.
	now := timeutil.Now()
	for _, tenantID := range contract.TenantIDs {
		tenant, err := s.tenants.Get(ctx, tenantID)
		if err != nil || tenant == nil || tenant.Status == models.TenantEnded {
			continue
		}
		if err := s.tenants.EndLease(ctx, tenantID, now); err != nil {
			log.Printf("[Contract] lease end for tenant %d failed: %v", tenantID, err)
		}
	}
	if err := s.rooms.UpdateStatus(ctx, contract.RoomID, models.RoomAvailable, nil, nil); err != nil {
		log.Printf("[Contract] room %d release failed: %v", contract.RoomID, err)
	}

	cache.InvalidateContractCaches(ctx)
	cache.InvalidateRoomCaches(ctx)
	log.Printf("[Contract] contract %d terminated, room %d released", id, contract.RoomID)
	return contract, nil
}
