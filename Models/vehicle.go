package Models

import (
	"gorm.io/gorm"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PendingVerification"
	VerificationVerified VerificationStatus = "Verified"
	VerificationRejected VerificationStatus = "Rejected"
)

type Vehicle struct {
	gorm.Model
	PlateNumber        string             `json:"plate_number" gorm:"size:50;not null;uniqueIndex"`
	Make               string             `json:"make" gorm:"size:100;not null"`
	VehicleModel       string             `json:"vehicle_model" gorm:"size:100;not null"`
	Year               int                `json:"year"`
	BatteryCapacityKWh float64            `json:"battery_capacity_kwh"`
	ImageURL           string             `json:"image_url" gorm:"size:500"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"size:30;not null;default:'PendingVerification'"`
	VerificationNotes  string             `json:"verification_notes" gorm:"type:text"`

	// Relationships
	CoOwnerships []CoOwnership `json:"co_ownerships,omitempty" gorm:"foreignKey:VehicleID"`
	Fund         *VehicleFund  `json:"fund,omitempty" gorm:"foreignKey:VehicleID"`
}

// CoOwnership links a user to a vehicle with their ownership share.
// One row per (vehicle, user); shares across a vehicle must not exceed 100%.
type CoOwnership struct {
	gorm.Model
	VehicleID           uint    `json:"vehicle_id" gorm:"not null;uniqueIndex:idx_vehicle_owner"`
	UserID              uint    `json:"user_id" gorm:"not null;uniqueIndex:idx_vehicle_owner"`
	OwnershipPercentage float64 `json:"ownership_percentage" gorm:"not null"`

	Vehicle Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type CreateVehicleRequest struct {
	PlateNumber         string  `json:"plate_number" validate:"required"`
	Make                string  `json:"make" validate:"required"`
	VehicleModel        string  `json:"vehicle_model" validate:"required"`
	Year                int     `json:"year"`
	BatteryCapacityKWh  float64 `json:"battery_capacity_kwh"`
	ImageURL            string  `json:"image_url"`
	OwnershipPercentage float64 `json:"ownership_percentage" validate:"required,gt=0,lte=100"`
}

type AddCoOwnerRequest struct {
	UserID              uint    `json:"user_id" validate:"required"`
	OwnershipPercentage float64 `json:"ownership_percentage" validate:"required,gt=0,lte=100"`
}
