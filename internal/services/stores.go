package services

import (
	"context"
	"time"

	"rental-backend/internal/models"
)

// The orchestrator and the room state service talk to their
// collaborator stores through these interfaces so the pgx repositories
// can be swapped for fakes in tests.

type TenantStore interface {
	Create(ctx context.Context, t *models.Tenant) error
	Update(ctx context.Context, id int, patch *models.TenantPatch) (*models.Tenant, error)
	Get(ctx context.Context, id int) (*models.Tenant, error)
	EndLease(ctx context.Context, id int, endDate time.Time) error
	Archive(ctx context.Context, id int) error
	SetContract(ctx context.Context, tenantID int, contractID *int) error
	AttachImages(ctx context.Context, tenantID int, urls []string) error
}

type RoomStore interface {
	Get(ctx context.Context, id int) (*models.Room, error)
	UpdateStatus(ctx context.Context, id int, status string, leaseStart, leaseEnd *time.Time) error
}

type DepositContractStore interface {
	// FindActiveByRoom returns nil with no error when the room has no
	// active deposit contract.
	FindActiveByRoom(ctx context.Context, roomID int) (*models.DepositContract, error)
	SetStatus(ctx context.Context, id int, status string) error
}

type ContractStore interface {
	Create(ctx context.Context, c *models.Contract) error
	Update(ctx context.Context, c *models.Contract) error
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*models.Contract, error)
	ListByRoom(ctx context.Context, roomID int) ([]*models.Contract, error)
	UpdateStatus(ctx context.Context, id int, status string) error
}

// ImageStore uploads an attachment and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
