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

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

const invoiceColumns = `id, invoice_number, contract_id, room_id, issue_date, due_date,
       period_start, period_end, electric_old_reading, electric_new_reading,
       water_old_reading, water_new_reading, electric_rate, water_rate, water_charge_type,
       tenant_count, subtotal, discount, total_amount, status, COALESCE(notes, ''),
       created_at, updated_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ContractID, &inv.RoomID, &inv.IssueDate, &inv.DueDate,
		&inv.PeriodStart, &inv.PeriodEnd, &inv.ElectricOldReading, &inv.ElectricNewReading,
		&inv.WaterOldReading, &inv.WaterNewReading, &inv.ElectricRate, &inv.WaterRate, &inv.WaterChargeType,
		&inv.TenantCount, &inv.Subtotal, &inv.Discount, &inv.TotalAmount, &inv.Status, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// NextInvoiceNumber pulls the next number from a database sequence so
// concurrent issuers never collide.
func (r *InvoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	var next int
	if err := r.DB.QueryRow(ctx, "SELECT nextval('invoice_number_sequence')").Scan(&next); err != nil {
		return "", fmt.Errorf("failed to get next invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%06d", next), nil
}

// Create inserts the invoice and its ordered charge lines in one
// transaction. The invoice number is assigned here.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	number, err := r.NextInvoiceNumber(ctx)
	if err != nil {
		return err
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO invoices (invoice_number, contract_id, room_id, issue_date, due_date,
                    period_start, period_end, electric_old_reading, electric_new_reading,
                    water_old_reading, water_new_reading, electric_rate, water_rate,
                    water_charge_type, tenant_count, subtotal, discount, total_amount, status, notes)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
         RETURNING id, created_at, updated_at`,
		number, inv.ContractID, inv.RoomID, inv.IssueDate, inv.DueDate,
		inv.PeriodStart, inv.PeriodEnd, inv.ElectricOldReading, inv.ElectricNewReading,
		inv.WaterOldReading, inv.WaterNewReading, inv.ElectricRate, inv.WaterRate,
		inv.WaterChargeType, inv.TenantCount, inv.Subtotal, inv.Discount, inv.TotalAmount,
		inv.Status, inv.Notes,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return err
	}

	for pos, charge := range inv.Charges {
		err := tx.QueryRow(ctx,
			`INSERT INTO invoice_charges (invoice_id, position, charge_type, description, quantity, unit_price, amount)
             VALUES ($1, $2, $3, $4, $5, $6, $7)
             RETURNING id`,
			inv.ID, pos, charge.Type, charge.Description, charge.Quantity, charge.UnitPrice, charge.Amount,
		).Scan(&inv.Charges[pos].ID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	inv.InvoiceNumber = number
	return nil
}

func (r *InvoiceRepository) loadCharges(ctx context.Context, inv *models.Invoice) error {
	rows, err := r.DB.Query(ctx,
		`SELECT id, charge_type, description, quantity, unit_price, amount
         FROM invoice_charges WHERE invoice_id=$1 ORDER BY position`, inv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Charge
		if err := rows.Scan(&c.ID, &c.Type, &c.Description, &c.Quantity, &c.UnitPrice, &c.Amount); err != nil {
			return err
		}
		inv.Charges = append(inv.Charges, c)
	}
	return rows.Err()
}

// Get returns nil with no error when the invoice does not exist.
func (r *InvoiceRepository) Get(ctx context.Context, id int) (*models.Invoice, error) {
	inv, err := scanInvoice(r.DB.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadCharges(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepository) List(ctx context.Context, status string, contractID *int) ([]*models.Invoice, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	arg := 0

	if status != "" {
		arg++
		where = append(where, fmt.Sprintf("status=$%d", arg))
		args = append(args, status)
	}
	if contractID != nil {
		arg++
		where = append(where, fmt.Sprintf("contract_id=$%d", arg))
		args = append(args, *contractID)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE `+strings.Join(where, " AND ")+
			` ORDER BY issue_date DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, inv := range invoices {
		if err := r.loadCharges(ctx, inv); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

// LatestByContract returns the contract's most recent non-cancelled
// invoice, or nil with no error when there is none.
func (r *InvoiceRepository) LatestByContract(ctx context.Context, contractID int) (*models.Invoice, error) {
	inv, err := scanInvoice(r.DB.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
         WHERE contract_id=$1 AND status <> $2
         ORDER BY period_end DESC, id DESC LIMIT 1`,
		contractID, models.InvoiceCancelled))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadCharges(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetByNumber returns nil with no error when no invoice carries the
// number.
func (r *InvoiceRepository) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	inv, err := scanInvoice(r.DB.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number=$1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadCharges(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE invoices SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %d not found", id)
	}
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM invoices WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %d not found", id)
	}
	return nil
}

// MonthlyRevenue sums paid invoices per month for the dashboard,
// limited to the trailing twelve months.
func (r *InvoiceRepository) MonthlyRevenue(ctx context.Context) (map[string]float64, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT to_char(date_trunc('month', issue_date), 'YYYY-MM'), SUM(total_amount)
         FROM invoices
         WHERE status=$1 AND issue_date > NOW() - INTERVAL '12 months'
         GROUP BY 1 ORDER BY 1 DESC`, models.InvoicePaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revenue := make(map[string]float64)
	for rows.Next() {
		var month string
		var total float64
		if err := rows.Scan(&month, &total); err != nil {
			return nil, err
		}
		revenue[month] = total
	}
	return revenue, rows.Err()
}
