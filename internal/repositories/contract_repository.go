package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/models"
)

type ContractRepository struct {
	DB *pgxpool.Pool
}

func NewContractRepository(db *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{DB: db}
}

const contractColumns = `id, room_id, tenant_id, start_date, end_date, monthly_rent, deposit,
       electric_price, water_price, water_price_per_person, water_charge_type, service_price,
       current_electric_index, current_water_index, payment_cycle, status, COALESCE(notes, ''),
       created_at, updated_at`

func scanContract(row pgx.Row) (*models.Contract, error) {
	c := &models.Contract{}
	err := row.Scan(
		&c.ID, &c.RoomID, &c.TenantID, &c.StartDate, &c.EndDate, &c.MonthlyRent, &c.Deposit,
		&c.ElectricPrice, &c.WaterPrice, &c.WaterPricePerPerson, &c.WaterChargeType, &c.ServicePrice,
		&c.CurrentElectricIndex, &c.CurrentWaterIndex, &c.PaymentCycle, &c.Status, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts the contract and its tenant and vehicle join rows in
// one transaction.
func (r *ContractRepository) Create(ctx context.Context, c *models.Contract) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO contracts (room_id, tenant_id, start_date, end_date, monthly_rent, deposit,
                    electric_price, water_price, water_price_per_person, water_charge_type, service_price,
                    current_electric_index, current_water_index, payment_cycle, status, notes)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
         RETURNING id, created_at, updated_at`,
		c.RoomID, c.TenantID, c.StartDate, c.EndDate, c.MonthlyRent, c.Deposit,
		c.ElectricPrice, c.WaterPrice, c.WaterPricePerPerson, c.WaterChargeType, c.ServicePrice,
		c.CurrentElectricIndex, c.CurrentWaterIndex, c.PaymentCycle, c.Status, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return err
	}

	if err := replaceContractJoins(ctx, tx, c); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update rewrites the contract row and its join rows in one transaction.
func (r *ContractRepository) Update(ctx context.Context, c *models.Contract) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE contracts SET room_id=$1, tenant_id=$2, start_date=$3, end_date=$4, monthly_rent=$5,
                deposit=$6, electric_price=$7, water_price=$8, water_price_per_person=$9,
                water_charge_type=$10, service_price=$11, current_electric_index=$12,
                current_water_index=$13, payment_cycle=$14, status=$15, notes=$16,
                updated_at=CURRENT_TIMESTAMP
         WHERE id=$17`,
		c.RoomID, c.TenantID, c.StartDate, c.EndDate, c.MonthlyRent,
		c.Deposit, c.ElectricPrice, c.WaterPrice, c.WaterPricePerPerson,
		c.WaterChargeType, c.ServicePrice, c.CurrentElectricIndex,
		c.CurrentWaterIndex, c.PaymentCycle, c.Status, c.Notes, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contract %d not found", c.ID)
	}

	if err := replaceContractJoins(ctx, tx, c); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replaceContractJoins(ctx context.Context, tx pgx.Tx, c *models.Contract) error {
	if _, err := tx.Exec(ctx, `DELETE FROM contract_tenants WHERE contract_id=$1`, c.ID); err != nil {
		return err
	}
	for _, tenantID := range c.TenantIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO contract_tenants (contract_id, tenant_id) VALUES ($1, $2)`,
			c.ID, tenantID)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM contract_vehicles WHERE contract_id=$1`, c.ID); err != nil {
		return err
	}
	for _, v := range c.Vehicles {
		_, err := tx.Exec(ctx,
			`INSERT INTO contract_vehicles (contract_id, owner_tenant_id, license_plate, vehicle_type)
             VALUES ($1, $2, $3, $4)`,
			c.ID, v.OwnerTenantID, v.LicensePlate, v.VehicleType)
		if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the contract; the join rows go with it via ON DELETE
// CASCADE.
func (r *ContractRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM contracts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contract %d not found", id)
	}
	return nil
}

func (r *ContractRepository) loadJoins(ctx context.Context, c *models.Contract) error {
	rows, err := r.DB.Query(ctx,
		`SELECT tenant_id FROM contract_tenants WHERE contract_id=$1 ORDER BY id`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return err
		}
		c.TenantIDs = append(c.TenantIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	vrows, err := r.DB.Query(ctx,
		`SELECT owner_tenant_id, license_plate, vehicle_type
         FROM contract_vehicles WHERE contract_id=$1 ORDER BY id`, c.ID)
	if err != nil {
		return err
	}
	defer vrows.Close()
	for vrows.Next() {
		var v models.ContractVehicle
		if err := vrows.Scan(&v.OwnerTenantID, &v.LicensePlate, &v.VehicleType); err != nil {
			return err
		}
		c.Vehicles = append(c.Vehicles, v)
	}
	return vrows.Err()
}

// Get returns nil with no error when the contract does not exist.
func (r *ContractRepository) Get(ctx context.Context, id int) (*models.Contract, error) {
	c, err := scanContract(r.DB.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadJoins(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ContractRepository) List(ctx context.Context, filter *models.ContractFilter) ([]*models.Contract, int, error) {
	where := []string{"1=1"}
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
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRow(ctx, "SELECT COUNT(*) FROM contracts WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + contractColumns + ` FROM contracts WHERE ` + cond + ` ORDER BY created_at DESC`
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

	var contracts []*models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, c := range contracts {
		if err := r.loadJoins(ctx, c); err != nil {
			return nil, 0, err
		}
	}
	return contracts, total, nil
}

func (r *ContractRepository) ListByRoom(ctx context.Context, roomID int) ([]*models.Contract, error) {
	contracts, _, err := r.List(ctx, &models.ContractFilter{RoomID: &roomID})
	return contracts, err
}

func (r *ContractRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE contracts SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contract %d not found", id)
	}
	return nil
}
