package Controllers

import (
	"strconv"
	"time"

	"EVShare/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MaintenanceController tracks service history for shared vehicles.
type MaintenanceController struct {
	DB *gorm.DB
}

func NewMaintenanceController(db *gorm.DB) *MaintenanceController {
	return &MaintenanceController{DB: db}
}

var validMaintenanceTypes = map[Models.MaintenanceType]bool{
	Models.MaintenanceRoutine:    true,
	Models.MaintenanceRepair:     true,
	Models.MaintenanceInspection: true,
	Models.MaintenanceTires:      true,
	Models.MaintenanceBattery:    true,
}

// CreateRecord adds a maintenance record. With paid_from_fund set, the cost
// is debited from the vehicle fund in the same transaction; an insufficient
// balance fails the whole request and writes nothing.
func (c *MaintenanceController) CreateRecord(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	var req Models.CreateMaintenanceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !validMaintenanceTypes[Models.MaintenanceType(req.MaintenanceType)] {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown maintenance type"})
	}

	serviceDate, err := time.Parse("2006-01-02", req.ServiceDate)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid service_date, expected YYYY-MM-DD"})
	}

	var count int64
	c.DB.Model(&Models.CoOwnership{}).
		Where("vehicle_id = ? AND user_id = ?", req.VehicleID, user.ID).
		Count(&count)
	if count == 0 {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only co-owners can record maintenance"})
	}

	record := Models.MaintenanceRecord{
		VehicleID:       req.VehicleID,
		CreatedByID:     user.ID,
		MaintenanceType: Models.MaintenanceType(req.MaintenanceType),
		Description:     req.Description,
		Cost:            req.Cost,
		ServiceDate:     serviceDate,
		OdometerKm:      req.OdometerKm,
		InvoiceImageURL: req.InvoiceImageURL,
		PaidFromFund:    req.PaidFromFund,
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if !req.PaidFromFund || req.Cost == 0 {
			return nil
		}

		var fund Models.VehicleFund
		if err := tx.Where("vehicle_id = ?", req.VehicleID).First(&fund).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle fund not found")
		}
		res := tx.Model(&Models.VehicleFund{}).
			Where("vehicle_id = ? AND balance >= ?", req.VehicleID, req.Cost).
			Update("balance", gorm.Expr("balance - ?", req.Cost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Fund balance is insufficient for this maintenance cost")
		}

		entry := Models.FundTransaction{
			FundID:    fund.ID,
			VehicleID: req.VehicleID,
			UserID:    user.ID,
			Amount:    -req.Cost,
			Type:      Models.TransactionMaintenanceExpense,
			Reference: "maintenance:" + strconv.Itoa(int(record.ID)),
			Note:      req.Description,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return ctx.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create maintenance record"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(record)
}

// GetVehicleRecords lists a vehicle's maintenance history.
func (c *MaintenanceController) GetVehicleRecords(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	var count int64
	c.DB.Model(&Models.CoOwnership{}).
		Where("vehicle_id = ? AND user_id = ?", id, user.ID).
		Count(&count)
	if count == 0 && !user.IsAdmin() {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only co-owners can view maintenance records"})
	}

	var records []Models.MaintenanceRecord
	err = c.DB.Preload("CreatedBy").
		Where("vehicle_id = ?", id).
		Order("service_date DESC").
		Find(&records).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve maintenance records"})
	}
	return ctx.JSON(records)
}

// GetRecord returns a single maintenance record.
func (c *MaintenanceController) GetRecord(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid record ID"})
	}

	var record Models.MaintenanceRecord
	if err := c.DB.Preload("CreatedBy").First(&record, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Maintenance record not found"})
	}
	return ctx.JSON(record)
}

// DeleteRecord removes a record (admin only; wired in routes). Fund debits
// are not reversed, matching the no-refund rule for executed expenses.
func (c *MaintenanceController) DeleteRecord(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid record ID"})
	}

	var record Models.MaintenanceRecord
	if err := c.DB.First(&record, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Maintenance record not found"})
	}

	c.DB.Delete(&record)
	return ctx.JSON(fiber.Map{"message": "Maintenance record deleted successfully"})
}
