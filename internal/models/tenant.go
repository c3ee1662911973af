package models

import "time"

// Tenant statuses. A tenant is never hard-deleted while a contract
// references it; ending a lease sets status=ended plus lease_end.
const (
	TenantActive = "active"
	TenantEnded  = "ended"
)

// MaxTenantImages caps the image attachments stored per tenant.
const MaxTenantImages = 5

type Tenant struct {
	ID         int        `json:"id"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	IDNumber   string     `json:"id_number"`
	Address    string     `json:"address"`
	RoomID     *int       `json:"room_id"`
	ContractID *int       `json:"contract_id"`
	LeaseStart *time.Time `json:"lease_start"`
	LeaseEnd   *time.Time `json:"lease_end"`
	RentPrice  float64    `json:"rent_price"`
	Deposit    float64    `json:"deposit"`
	Status     string     `json:"status"`
	IsArchived bool       `json:"is_archived"`
	Images     []string   `json:"images"`
	Vehicles   []Vehicle  `json:"vehicles"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Vehicle is embedded under its owning tenant and denormalized under
// the contract for display.
type Vehicle struct {
	LicensePlate string `json:"license_plate"`
	VehicleType  string `json:"vehicle_type"`
}

// TenantPatch carries the mutable fields of a tenant update.
type TenantPatch struct {
	FullName   *string    `json:"full_name"`
	Phone      *string    `json:"phone"`
	Email      *string    `json:"email"`
	IDNumber   *string    `json:"id_number"`
	Address    *string    `json:"address"`
	LeaseStart *time.Time `json:"lease_start"`
	LeaseEnd   *time.Time `json:"lease_end"`
	RentPrice  *float64   `json:"rent_price"`
	Deposit    *float64   `json:"deposit"`
	Vehicles   []Vehicle  `json:"vehicles"`
}

// TenantFilter narrows tenant listings.
type TenantFilter struct {
	Status   string
	RoomID   *int
	Search   string
	Archived bool
	Page     int
	Limit    int
}
