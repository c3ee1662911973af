package models

import "time"

// Agreement modes. New mode creates the lease and transitions the room;
// edit mode amends an existing lease and never touches the room or any
// deposit contract.
const (
	AgreementModeNew  = "new"
	AgreementModeEdit = "edit"
)

// TenantInput is one occupant in a rental agreement request. A non-nil
// ID means the tenant already exists and is updated in place.
type TenantInput struct {
	ID            *int           `json:"id"`
	FullName      string         `json:"full_name"`
	Phone         string         `json:"phone"`
	Email         string         `json:"email"`
	IDNumber      string         `json:"id_number"`
	Address       string         `json:"address"`
	PendingImages []PendingImage `json:"-"`
}

// PendingImage is a not-yet-uploaded image attachment selected for a
// tenant; uploads happen during the agreement's image phase.
type PendingImage struct {
	Filename    string
	ContentType string
	Content     []byte
}

// VehicleInput references its owning tenant by index into the request's
// tenant list.
type VehicleInput struct {
	OwnerIndex   int    `json:"owner_index"`
	LicensePlate string `json:"license_plate"`
	VehicleType  string `json:"vehicle_type"`
}

// LeaseTerms carries the dates and pricing policy of an agreement.
type LeaseTerms struct {
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	MonthlyRent          float64   `json:"monthly_rent"`
	Deposit              float64   `json:"deposit"`
	ElectricPrice        float64   `json:"electric_price"`
	WaterPrice           float64   `json:"water_price"`
	WaterPricePerPerson  float64   `json:"water_price_per_person"`
	WaterChargeType      string    `json:"water_charge_type"`
	ServicePrice         float64   `json:"service_price"`
	CurrentElectricIndex *float64  `json:"current_electric_index"`
	CurrentWaterIndex    *float64  `json:"current_water_index"`
	PaymentCycle         string    `json:"payment_cycle"`
	Notes                string    `json:"notes"`
}

// RentalAgreementRequest is the validated boundary input for committing
// a rental agreement.
type RentalAgreementRequest struct {
	Mode       string         `json:"mode"`
	RoomID     int            `json:"room_id"`
	ContractID *int           `json:"contract_id"`
	Tenants    []TenantInput  `json:"tenants"`
	Vehicles   []VehicleInput `json:"vehicles"`
	Terms      LeaseTerms     `json:"terms"`
}

// AgreementResult is returned on a successful commit.
type AgreementResult struct {
	Contract *Contract `json:"contract"`
	Tenants  []*Tenant `json:"tenants"`
}
