package Controllers

import (
	"fmt"
	"strconv"

	"EVShare/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FundController handles the shared vehicle fund: contributions, balance and
// transaction history. Debits only happen through the upgrade engine and
// maintenance payments.
type FundController struct {
	DB *gorm.DB
}

func NewFundController(db *gorm.DB) *FundController {
	return &FundController{DB: db}
}

func (c *FundController) requireCoOwner(ctx *fiber.Ctx, vehicleID uint) error {
	user := ctx.Locals("user").(Models.User)
	if user.IsAdmin() {
		return nil
	}
	var count int64
	c.DB.Model(&Models.CoOwnership{}).
		Where("vehicle_id = ? AND user_id = ?", vehicleID, user.ID).
		Count(&count)
	if count == 0 {
		return fiber.NewError(fiber.StatusForbidden, "Only co-owners can access the vehicle fund")
	}
	return nil
}

// GetBalance returns the fund balance for a vehicle.
func (c *FundController) GetBalance(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}
	if err := c.requireCoOwner(ctx, uint(id)); err != nil {
		fe := err.(*fiber.Error)
		return ctx.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	var fund Models.VehicleFund
	if err := c.DB.Where("vehicle_id = ?", id).First(&fund).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle fund not found"})
	}
	return ctx.JSON(fund)
}

// Contribute credits the fund and records a ledger entry atomically.
func (c *FundController) Contribute(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	var req Models.ContributeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var count int64
	c.DB.Model(&Models.CoOwnership{}).
		Where("vehicle_id = ? AND user_id = ?", id, user.ID).
		Count(&count)
	if count == 0 {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only co-owners can contribute to the fund"})
	}

	var fund Models.VehicleFund
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vehicle_id = ?", id).First(&fund).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle fund not found")
		}

		res := tx.Model(&Models.VehicleFund{}).
			Where("vehicle_id = ?", id).
			Update("balance", gorm.Expr("balance + ?", req.Amount))
		if res.Error != nil {
			return res.Error
		}

		entry := Models.FundTransaction{
			FundID:    fund.ID,
			VehicleID: uint(id),
			UserID:    user.ID,
			Amount:    req.Amount,
			Type:      Models.TransactionContribution,
			Note:      req.Note,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return ctx.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record contribution"})
	}

	fund.Balance += req.Amount
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Contributed %.2f to the vehicle fund", req.Amount),
		"fund":    fund,
	})
}

// GetTransactions lists the fund's ledger entries, newest first.
func (c *FundController) GetTransactions(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}
	if err := c.requireCoOwner(ctx, uint(id)); err != nil {
		fe := err.(*fiber.Error)
		return ctx.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	var transactions []Models.FundTransaction
	err = c.DB.Preload("User").
		Where("vehicle_id = ?", id).
		Order("created_at DESC").
		Find(&transactions).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}
	return ctx.JSON(transactions)
}
