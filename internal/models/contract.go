package models

import "time"

// Contract statuses.
const (
	ContractActive     = "active"
	ContractExpiring   = "expiring"
	ContractTerminated = "terminated"
)

// Water billing policies.
const (
	WaterChargeFixed     = "fixed"
	WaterChargePerPerson = "per_person"
)

// Payment cycles.
const (
	CycleMonthly   = "monthly"
	CycleQuarterly = "quarterly"
	CycleYearly    = "yearly"
)

type Contract struct {
	ID                   int               `json:"id"`
	RoomID               int               `json:"room_id"`
	TenantID             int               `json:"tenant_id"`
	TenantIDs            []int             `json:"tenant_ids"`
	StartDate            time.Time         `json:"start_date"`
	EndDate              time.Time         `json:"end_date"`
	MonthlyRent          float64           `json:"monthly_rent"`
	Deposit              float64           `json:"deposit"`
	ElectricPrice        float64           `json:"electric_price"`
	WaterPrice           float64           `json:"water_price"`
	WaterPricePerPerson  float64           `json:"water_price_per_person"`
	WaterChargeType      string            `json:"water_charge_type"`
	ServicePrice         float64           `json:"service_price"`
	CurrentElectricIndex float64           `json:"current_electric_index"`
	CurrentWaterIndex    float64           `json:"current_water_index"`
	PaymentCycle         string            `json:"payment_cycle"`
	Status               string            `json:"status"`
	Vehicles             []ContractVehicle `json:"vehicles"`
	Notes                string            `json:"notes"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// ContractVehicle is the denormalized vehicle row kept under the
// contract for display, tied back to its owning tenant.
type ContractVehicle struct {
	OwnerTenantID int    `json:"owner_tenant_id"`
	LicensePlate  string `json:"license_plate"`
	VehicleType   string `json:"vehicle_type"`
}

// ContractFilter narrows contract listings.
type ContractFilter struct {
	Status string
	RoomID *int
	Page   int
	Limit  int
}
