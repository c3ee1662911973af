package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/models"
)

type DepositContractRepository struct {
	DB *pgxpool.Pool
}

func NewDepositContractRepository(db *pgxpool.Pool) *DepositContractRepository {
	return &DepositContractRepository{DB: db}
}

const depositColumns = `id, room_id, tenant_name, tenant_phone, COALESCE(tenant_email, ''),
       deposit_amount, deposit_date, expected_move_in_date, status, COALESCE(notes, ''),
       created_at, updated_at`

func scanDeposit(row pgx.Row) (*models.DepositContract, error) {
	d := &models.DepositContract{}
	err := row.Scan(
		&d.ID, &d.RoomID, &d.TenantName, &d.TenantPhone, &d.TenantEmail,
		&d.DepositAmount, &d.DepositDate, &d.ExpectedMoveInDate, &d.Status, &d.Notes,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DepositContractRepository) Create(ctx context.Context, d *models.DepositContract) error {
	if d.Status == "" {
		d.Status = models.DepositActive
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO deposit_contracts (room_id, tenant_name, tenant_phone, tenant_email,
                    deposit_amount, deposit_date, expected_move_in_date, status, notes)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING id, created_at, updated_at`,
		d.RoomID, d.TenantName, d.TenantPhone, d.TenantEmail,
		d.DepositAmount, d.DepositDate, d.ExpectedMoveInDate, d.Status, d.Notes,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// Get returns nil with no error when the deposit contract does not exist.
func (r *DepositContractRepository) Get(ctx context.Context, id int) (*models.DepositContract, error) {
	d, err := scanDeposit(r.DB.QueryRow(ctx,
		`SELECT `+depositColumns+` FROM deposit_contracts WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (r *DepositContractRepository) List(ctx context.Context, status string) ([]*models.DepositContract, error) {
	query := `SELECT ` + depositColumns + ` FROM deposit_contracts`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY deposit_date DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []*models.DepositContract
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

// FindActiveByRoom returns the room's active deposit contract, or nil
// with no error when there is none. At most one is active per room; the
// newest wins if data drifted.
func (r *DepositContractRepository) FindActiveByRoom(ctx context.Context, roomID int) (*models.DepositContract, error) {
	d, err := scanDeposit(r.DB.QueryRow(ctx,
		`SELECT `+depositColumns+` FROM deposit_contracts
         WHERE room_id=$1 AND status=$2
         ORDER BY deposit_date DESC LIMIT 1`,
		roomID, models.DepositActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (r *DepositContractRepository) SetStatus(ctx context.Context, id int, status string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE deposit_contracts SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deposit contract %d not found", id)
	}
	return nil
}

func (r *DepositContractRepository) Update(ctx context.Context, d *models.DepositContract) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE deposit_contracts SET tenant_name=$1, tenant_phone=$2, tenant_email=$3,
                deposit_amount=$4, deposit_date=$5, expected_move_in_date=$6, notes=$7,
                updated_at=CURRENT_TIMESTAMP
         WHERE id=$8`,
		d.TenantName, d.TenantPhone, d.TenantEmail,
		d.DepositAmount, d.DepositDate, d.ExpectedMoveInDate, d.Notes, d.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deposit contract %d not found", d.ID)
	}
	return nil
}

func (r *DepositContractRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM deposit_contracts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deposit contract %d not found", id)
	}
	return nil
}
