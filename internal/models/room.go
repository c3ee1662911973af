package models

import "time"

// Room statuses. Transitions go through the room state service, not
// ad hoc updates: available → reserved → rented → expiring → rented.
const (
	RoomAvailable = "available"
	RoomReserved  = "reserved"
	RoomRented    = "rented"
	RoomExpiring  = "expiring"
)

type Room struct {
	ID              int        `json:"id"`
	Number          string     `json:"number"`
	Floor           int        `json:"floor"`
	Area            float64    `json:"area"`
	Status          string     `json:"status"`
	Price           float64    `json:"price"`
	Deposit         float64    `json:"deposit"`
	Capacity        int        `json:"capacity"`
	VehicleCapacity int        `json:"vehicle_capacity"`
	ElectricPrice   float64    `json:"electric_price"`
	WaterPrice      float64    `json:"water_price"`
	ServicePrice    float64    `json:"service_price"`
	Description     string     `json:"description"`
	Images          []string   `json:"images"`
	AmenityIDs      []int      `json:"amenity_ids"`
	LeaseStart      *time.Time `json:"lease_start"`
	LeaseEnd        *time.Time `json:"lease_end"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RoomPatch carries the mutable fields of a room update. Nil pointers
// leave the column untouched.
type RoomPatch struct {
	Number          *string  `json:"number"`
	Floor           *int     `json:"floor"`
	Area            *float64 `json:"area"`
	Price           *float64 `json:"price"`
	Deposit         *float64 `json:"deposit"`
	Capacity        *int     `json:"capacity"`
	VehicleCapacity *int     `json:"vehicle_capacity"`
	ElectricPrice   *float64 `json:"electric_price"`
	WaterPrice      *float64 `json:"water_price"`
	ServicePrice    *float64 `json:"service_price"`
	Description     *string  `json:"description"`
	AmenityIDs      []int    `json:"amenity_ids"`
}

// RoomFilter narrows room listings.
type RoomFilter struct {
	Status   string
	Floor    *int
	MinPrice *float64
	MaxPrice *float64
	Search   string
	Page     int
	Limit    int
}

// RoomStatistics summarizes occupancy for the dashboard.
type RoomStatistics struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	Rented    int `json:"rented"`
	Expiring  int `json:"expiring"`
}
