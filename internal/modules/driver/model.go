// README: Driver profile. A driver's id is the id of the actor who applied.
package driver

import (
	"time"

	"vtc/internal/types"
)

type Driver struct {
	ID            types.ID   `json:"id"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	LicenseNumber string     `json:"license_number"`
	VehicleMake   string     `json:"vehicle_make"`
	VehicleModel  string     `json:"vehicle_model"`
	VehicleYear   int        `json:"vehicle_year"`
	Plate         string     `json:"plate"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ActivatedAt   *time.Time `json:"activated_at,omitempty"`
}

const (
	minVehicleYear = 1990
	maxPlateLen    = 16
)
