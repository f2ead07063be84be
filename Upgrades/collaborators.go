package Upgrades

import (
	"errors"
	"fmt"
	"time"

	"EVShare/Models"

	"gorm.io/gorm"
)

// CoOwner is one entry of a vehicle's ownership set.
type CoOwner struct {
	UserID              uint    `json:"user_id"`
	OwnershipPercentage float64 `json:"ownership_percentage"`
}

// CoOwnershipDirectory answers who owns a vehicle. All methods run against the
// caller's transaction handle so membership reads stay consistent with the
// vote being evaluated.
type CoOwnershipDirectory interface {
	VehicleExists(tx *gorm.DB, vehicleID uint) (bool, error)
	GetCoOwners(tx *gorm.DB, vehicleID uint) ([]CoOwner, error)
	IsCoOwner(tx *gorm.DB, vehicleID, userID uint) (bool, error)
}

// FundLedger exposes the shared vehicle fund. Debit must run in the caller's
// transaction and must fail rather than overdraw the balance.
type FundLedger interface {
	Balance(tx *gorm.DB, vehicleID uint) (float64, error)
	Debit(tx *gorm.DB, vehicleID uint, amount float64, userID uint, txType Models.TransactionType, reference, note string) error
}

// ErrFundNotFound is returned by FundLedger when the vehicle has no fund row.
var ErrFundNotFound = errors.New("vehicle fund not found")

// ErrInsufficientBalance is returned by Debit when the guarded update would
// take the balance below zero.
var ErrInsufficientBalance = errors.New("insufficient fund balance")

type RoleChecker interface {
	IsAdmin(tx *gorm.DB, userID uint) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// --- gorm-backed production implementations ---

type gormDirectory struct{}

func (gormDirectory) VehicleExists(tx *gorm.DB, vehicleID uint) (bool, error) {
	var count int64
	if err := tx.Model(&Models.Vehicle{}).Where("id = ?", vehicleID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (gormDirectory) GetCoOwners(tx *gorm.DB, vehicleID uint) ([]CoOwner, error) {
	var ownerships []Models.CoOwnership
	if err := tx.Where("vehicle_id = ?", vehicleID).Find(&ownerships).Error; err != nil {
		return nil, err
	}
	owners := make([]CoOwner, 0, len(ownerships))
	for _, o := range ownerships {
		owners = append(owners, CoOwner{UserID: o.UserID, OwnershipPercentage: o.OwnershipPercentage})
	}
	return owners, nil
}

func (gormDirectory) IsCoOwner(tx *gorm.DB, vehicleID, userID uint) (bool, error) {
	var count int64
	err := tx.Model(&Models.CoOwnership{}).
		Where("vehicle_id = ? AND user_id = ?", vehicleID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type gormLedger struct{}

func (gormLedger) Balance(tx *gorm.DB, vehicleID uint) (float64, error) {
	var fund Models.VehicleFund
	if err := tx.Where("vehicle_id = ?", vehicleID).First(&fund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrFundNotFound
		}
		return 0, err
	}
	return fund.Balance, nil
}

// Debit decrements the fund balance with an overdraft guard in the WHERE
// clause: a concurrent debit that already drained the fund makes RowsAffected
// zero and the whole surrounding transaction rolls back.
func (gormLedger) Debit(tx *gorm.DB, vehicleID uint, amount float64, userID uint, txType Models.TransactionType, reference, note string) error {
	var fund Models.VehicleFund
	if err := tx.Where("vehicle_id = ?", vehicleID).First(&fund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFundNotFound
		}
		return err
	}

	res := tx.Model(&Models.VehicleFund{}).
		Where("vehicle_id = ? AND balance >= ?", vehicleID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}

	entry := Models.FundTransaction{
		FundID:    fund.ID,
		VehicleID: vehicleID,
		UserID:    userID,
		Amount:    -amount,
		Type:      txType,
		Reference: reference,
		Note:      note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record fund transaction: %w", err)
	}
	return nil
}

type gormRoles struct{}

func (gormRoles) IsAdmin(tx *gorm.DB, userID uint) (bool, error) {
	var user Models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin(), nil
}
