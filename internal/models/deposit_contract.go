package models

import "time"

// Deposit contract statuses. A deposit contract reserves a room before
// the full lease exists; it is fulfilled when a rental agreement is
// committed for the room, or cancelled explicitly.
const (
	DepositActive    = "active"
	DepositFulfilled = "fulfilled"
	DepositCancelled = "cancelled"
)

type DepositContract struct {
	ID                 int       `json:"id"`
	RoomID             int       `json:"room_id"`
	TenantName         string    `json:"tenant_name"`
	TenantPhone        string    `json:"tenant_phone"`
	TenantEmail        string    `json:"tenant_email"`
	DepositAmount      float64   `json:"deposit_amount"`
	DepositDate        time.Time `json:"deposit_date"`
	ExpectedMoveInDate time.Time `json:"expected_move_in_date"`
	Status             string    `json:"status"`
	Notes              string    `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CreateDepositContractRequest is the request body for reserving a room.
type CreateDepositContractRequest struct {
	RoomID             int     `json:"room_id"`
	TenantName         string  `json:"tenant_name"`
	TenantPhone        string  `json:"tenant_phone"`
	TenantEmail        string  `json:"tenant_email"`
	DepositAmount      float64 `json:"deposit_amount"`
	DepositDate        string  `json:"deposit_date"`
	ExpectedMoveInDate string  `json:"expected_move_in_date"`
	Notes              string  `json:"notes"`
}
