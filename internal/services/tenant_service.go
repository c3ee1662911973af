package services

import (
	"context"
	"fmt"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

type TenantService struct {
	tenants *repositories.TenantRepository
}

func NewTenantService(tenants *repositories.TenantRepository) *TenantService {
	return &TenantService{tenants: tenants}
}

func (s *TenantService) Get(ctx context.Context, id int) (*models.Tenant, error) {
	tenant, err := s.tenants.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewExternalCall("tenant store: get", err)
	}
	if tenant == nil {
		return nil, apperrors.NewNotFound("tenant", fmt.Sprint(id))
	}
	return tenant, nil
}

func (s *TenantService) List(ctx context.Context, filter *models.TenantFilter) ([]*models.Tenant, int, error) {
	tenants, total, err := s.tenants.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.NewExternalCall("tenant store: list", err)
	}
	return tenants, total, nil
}

func (s *TenantService) Update(ctx context.Context, id int, patch *models.TenantPatch) (*models.Tenant, error) {
	if patch.Phone != nil && !phonePattern.MatchString(*patch.Phone) {
		return nil, apperrors.NewValidation("phone", "phone must be 10 digits")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	tenant, err := s.tenants.Update(ctx, id, patch)
	if err != nil {
		return nil, apperrors.NewExternalCall("tenant store: update", err)
	}
	return tenant, nil
}

// Archive soft-deletes a tenant. A tenant still on an active contract
// cannot be archived; remove them through a lease amendment first.
func (s *TenantService) Archive(ctx context.Context, id int) error {
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if tenant.ContractID != nil && tenant.Status == models.TenantActive {
		return &apperrors.StateConflictError{Resource: "tenant", From: tenant.Status, To: "archived"}
	}
	if err := s.tenants.Archive(ctx, id); err != nil {
		return apperrors.NewExternalCall("tenant store: archive", err)
	}
	return nil
}
