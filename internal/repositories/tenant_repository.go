package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/models"
)

type TenantRepository struct {
	DB *pgxpool.Pool
}

func NewTenantRepository(db *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{DB: db}
}

const tenantColumns = `id, full_name, phone, COALESCE(email, ''), id_number, COALESCE(address, ''),
       room_id, contract_id, lease_start, lease_end, rent_price, deposit, status, is_archived,
       COALESCE(images, '{}'), created_at, updated_at`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	t := &models.Tenant{}
	err := row.Scan(
		&t.ID, &t.FullName, &t.Phone, &t.Email, &t.IDNumber, &t.Address,
		&t.RoomID, &t.ContractID, &t.LeaseStart, &t.LeaseEnd, &t.RentPrice,
		&t.Deposit, &t.Status, &t.IsArchived, &t.Images, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts the tenant and its vehicles in one transaction.
func (r *TenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	if t.Status == "" {
		t.Status = models.TenantActive
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO tenants (full_name, phone, email, id_number, address, room_id,
                    lease_start, lease_end, rent_price, deposit, status, images)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
         RETURNING id, created_at, updated_at`,
		t.FullName, t.Phone, t.Email, t.IDNumber, t.Address, t.RoomID,
		t.LeaseStart, t.LeaseEnd, t.RentPrice, t.Deposit, t.Status, t.Images,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}

	if err := replaceVehicles(ctx, tx, t.ID, t.Vehicles); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replaceVehicles(ctx context.Context, tx pgx.Tx, tenantID int, vehicles []models.Vehicle) error {
	if _, err := tx.Exec(ctx, `DELETE FROM tenant_vehicles WHERE tenant_id=$1`, tenantID); err != nil {
		return err
	}
	for _, v := range vehicles {
		_, err := tx.Exec(ctx,
			`INSERT INTO tenant_vehicles (tenant_id, license_plate, vehicle_type) VALUES ($1, $2, $3)`,
			tenantID, v.LicensePlate, v.VehicleType)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *TenantRepository) loadVehicles(ctx context.Context, tenantID int) ([]models.Vehicle, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT license_plate, vehicle_type FROM tenant_vehicles WHERE tenant_id=$1 ORDER BY id`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.LicensePlate, &v.VehicleType); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Get returns nil with no error when the tenant does not exist.
func (r *TenantRepository) Get(ctx context.Context, id int) (*models.Tenant, error) {
	t, err := scanTenant(r.DB.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if t.Vehicles, err = r.loadVehicles(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TenantRepository) List(ctx context.Context, filter *models.TenantFilter) ([]*models.Tenant, int, error) {
	where := []string{fmt.Sprintf("is_archived=%t", filter.Archived)}
	args := []interface{}{}
	arg := 0

	if filter.Status != "" {
		arg++
		where = append(where, fmt.Sprintf("status=$%d", arg))
		args = append(args, filter.Status)
	}
	if filter.RoomID != nil {
		arg++
		where = append(where, fmt.Sprintf("room_id=$%d", arg))
		args = append(args, *filter.RoomID)
	}
	if filter.Search != "" {
		arg++
		where = append(where, fmt.Sprintf("(full_name ILIKE $%d OR phone ILIKE $%d OR id_number ILIKE $%d)", arg, arg, arg))
		args = append(args, "%"+filter.Search+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRow(ctx, "SELECT COUNT(*) FROM tenants WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE ` + cond + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, t := range tenants {
		if t.Vehicles, err = r.loadVehicles(ctx, t.ID); err != nil {
			return nil, 0, err
		}
	}
	return tenants, total, nil
}

// Update applies the non-nil patch fields; a non-nil vehicle list
// replaces the tenant's vehicles wholesale.
func (r *TenantRepository) Update(ctx context.Context, id int, patch *models.TenantPatch) (*models.Tenant, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	set := []string{"updated_at=CURRENT_TIMESTAMP"}
	args := []interface{}{}
	arg := 0

	add := func(column string, value interface{}) {
		arg++
		set = append(set, fmt.Sprintf("%s=$%d", column, arg))
		args = append(args, value)
	}
	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.IDNumber != nil {
		add("id_number", *patch.IDNumber)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.LeaseStart != nil {
		add("lease_start", *patch.LeaseStart)
	}
	if patch.LeaseEnd != nil {
		add("lease_end", *patch.LeaseEnd)
	}
	if patch.RentPrice != nil {
		add("rent_price", *patch.RentPrice)
	}
	if patch.Deposit != nil {
		add("deposit", *patch.Deposit)
	}

	arg++
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tenants SET %s WHERE id=$%d RETURNING `+tenantColumns,
		strings.Join(set, ", "), arg)

	t, err := scanTenant(tx.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenant %d not found", id)
	}
	if err != nil {
		return nil, err
	}

	if patch.Vehicles != nil {
		if err := replaceVehicles(ctx, tx, id, patch.Vehicles); err != nil {
			return nil, err
		}
		t.Vehicles = patch.Vehicles
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	if patch.Vehicles == nil {
		if t.Vehicles, err = r.loadVehicles(ctx, id); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// EndLease marks the tenant's lease as over without archiving the row.
func (r *TenantRepository) EndLease(ctx context.Context, id int, endDate time.Time) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE tenants SET status=$1, lease_end=$2, updated_at=CURRENT_TIMESTAMP WHERE id=$3`,
		models.TenantEnded, endDate, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenant %d not found", id)
	}
	return nil
}

// Archive soft-deletes the tenant. Contracts keep referencing the row.
func (r *TenantRepository) Archive(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE tenants SET status=$1, is_archived=true, contract_id=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		models.TenantEnded, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenant %d not found", id)
	}
	return nil
}

func (r *TenantRepository) SetContract(ctx context.Context, tenantID int, contractID *int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE tenants SET contract_id=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		contractID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenant %d not found", tenantID)
	}
	return nil
}

// AttachImages appends image URLs, capped at MaxTenantImages per tenant.
func (r *TenantRepository) AttachImages(ctx context.Context, tenantID int, urls []string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE tenants
         SET images = (COALESCE(images, '{}') || $1)[1:$2], updated_at=CURRENT_TIMESTAMP
         WHERE id=$3`,
		urls, models.MaxTenantImages, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenant %d not found", tenantID)
	}
	return nil
}
