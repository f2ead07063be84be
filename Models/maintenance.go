package Models

import (
	"time"

	"gorm.io/gorm"
)

type MaintenanceType string

const (
	MaintenanceRoutine    MaintenanceType = "Routine"
	MaintenanceRepair     MaintenanceType = "Repair"
	MaintenanceInspection MaintenanceType = "Inspection"
	MaintenanceTires      MaintenanceType = "Tires"
	MaintenanceBattery    MaintenanceType = "Battery"
)

type MaintenanceRecord struct {
	gorm.Model
	VehicleID       uint            `json:"vehicle_id" gorm:"not null;index"`
	CreatedByID     uint            `json:"created_by_id" gorm:"not null;index"`
	MaintenanceType MaintenanceType `json:"maintenance_type" gorm:"size:30;not null"`
	Description     string          `json:"description" gorm:"type:text;not null"`
	Cost            float64         `json:"cost" gorm:"not null"`
	ServiceDate     time.Time       `json:"service_date" gorm:"not null"`
	OdometerKm      int64           `json:"odometer_km"`
	InvoiceImageURL string          `json:"invoice_image_url" gorm:"size:500"`
	PaidFromFund    bool            `json:"paid_from_fund" gorm:"not null;default:false"`

	Vehicle   Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	CreatedBy User    `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

type CreateMaintenanceRequest struct {
	VehicleID       uint    `json:"vehicle_id" validate:"required"`
	MaintenanceType string  `json:"maintenance_type" validate:"required"`
	Description     string  `json:"description" validate:"required"`
	Cost            float64 `json:"cost" validate:"gte=0"`
	ServiceDate     string  `json:"service_date" validate:"required"`
	OdometerKm      int64   `json:"odometer_km"`
	InvoiceImageURL string  `json:"invoice_image_url"`
	PaidFromFund    bool    `json:"paid_from_fund"`
}
