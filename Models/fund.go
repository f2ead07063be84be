package Models

import (
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionContribution       TransactionType = "Contribution"
	TransactionUpgradeExpense     TransactionType = "UpgradeExpense"
	TransactionMaintenanceExpense TransactionType = "MaintenanceExpense"
)

// VehicleFund is the shared balance co-owners pay into. One row per vehicle.
// The balance is only ever mutated through guarded UPDATEs inside a transaction
// so concurrent debits cannot overdraw it.
type VehicleFund struct {
	gorm.Model
	VehicleID uint    `json:"vehicle_id" gorm:"not null;uniqueIndex"`
	Balance   float64 `json:"balance" gorm:"not null;default:0"`

	Vehicle Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
}

type FundTransaction struct {
	gorm.Model
	FundID    uint            `json:"fund_id" gorm:"not null;index"`
	VehicleID uint            `json:"vehicle_id" gorm:"not null;index"`
	UserID    uint            `json:"user_id" gorm:"not null;index"`
	Amount    float64         `json:"amount" gorm:"not null"`
	Type      TransactionType `json:"type" gorm:"size:30;not null;index"`
	Reference string          `json:"reference" gorm:"size:100"`
	Note      string          `json:"note" gorm:"size:500"`

	Fund VehicleFund `json:"fund,omitempty" gorm:"foreignKey:FundID"`
	User User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type ContributeRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Note   string  `json:"note"`
}
