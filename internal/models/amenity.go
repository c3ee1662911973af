package models

import "time"

type Amenity struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AmenityRequest is the request body for creating or updating an amenity.
type AmenityRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}
