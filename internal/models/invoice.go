package models

import "time"

// Invoice statuses.
const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoicePaid      = "paid"
	InvoiceOverdue   = "overdue"
	InvoiceCancelled = "cancelled"
)

// Charge types.
const (
	ChargeRent        = "rent"
	ChargeElectricity = "electricity"
	ChargeWater       = "water"
	ChargeInternet    = "internet"
	ChargeParking     = "parking"
	ChargeCleaning    = "cleaning"
	ChargeMaintenance = "maintenance"
	ChargeService     = "service"
	ChargeOther       = "other"
)

// Invoice represents a billing-period invoice for a rental contract.
type Invoice struct {
	ID                 int       `json:"id"`
	InvoiceNumber      string    `json:"invoice_number"`
	ContractID         int       `json:"contract_id"`
	RoomID             int       `json:"room_id"`
	IssueDate          time.Time `json:"issue_date"`
	DueDate            time.Time `json:"due_date"`
	PeriodStart        time.Time `json:"period_start"`
	PeriodEnd          time.Time `json:"period_end"`
	ElectricOldReading float64   `json:"electric_old_reading"`
	ElectricNewReading float64   `json:"electric_new_reading"`
	WaterOldReading    float64   `json:"water_old_reading"`
	WaterNewReading    float64   `json:"water_new_reading"`
	ElectricRate       float64   `json:"electric_rate"`
	WaterRate          float64   `json:"water_rate"`
	WaterChargeType    string    `json:"water_charge_type"`
	TenantCount        int       `json:"tenant_count"`
	Charges            []Charge  `json:"charges"`
	Subtotal           float64   `json:"subtotal"`
	Discount           float64   `json:"discount"`
	TotalAmount        float64   `json:"total_amount"`
	Status             string    `json:"status"`
	Notes              string    `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Charge is one ordered invoice line item.
type Charge struct {
	ID          int     `json:"id,omitempty"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// CreateInvoiceRequest is the request body for issuing an invoice.
// Meter-derived charges are recomputed server-side; extra charges are
// caller-supplied line items.
type CreateInvoiceRequest struct {
	ContractID         int      `json:"contract_id"`
	PeriodStart        string   `json:"period_start"`
	PeriodEnd          string   `json:"period_end"`
	ElectricNewReading float64  `json:"electric_new_reading"`
	WaterNewReading    float64  `json:"water_new_reading"`
	ExtraCharges       []Charge `json:"extra_charges"`
	Discount           float64  `json:"discount"`
	Notes              string   `json:"notes"`
}

// InvoicePreparation is what the prepare endpoint returns: the resolved
// pricing context plus suggested period and computed charges, before
// anything is persisted.
type InvoicePreparation struct {
	ContractID         int       `json:"contract_id"`
	RoomID             int       `json:"room_id"`
	SuggestedStart     time.Time `json:"suggested_period_start"`
	SuggestedEnd       time.Time `json:"suggested_period_end"`
	SuggestedDueDate   time.Time `json:"suggested_due_date"`
	ElectricOldReading float64   `json:"electric_old_reading"`
	WaterOldReading    float64   `json:"water_old_reading"`
	ElectricRate       float64   `json:"electric_rate"`
	WaterRate          float64   `json:"water_rate"`
	WaterChargeType    string    `json:"water_charge_type"`
	TenantCount        int       `json:"tenant_count"`
	MonthlyRent        float64   `json:"monthly_rent"`
	ServicePrice       float64   `json:"service_price"`
}
