package Controllers

import (
	"strconv"
	"strings"

	"EVShare/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// VehicleController handles vehicle registration, verification and
// co-ownership management.
type VehicleController struct {
	DB *gorm.DB
}

func NewVehicleController(db *gorm.DB) *VehicleController {
	return &VehicleController{DB: db}
}

// CreateVehicle registers a vehicle, makes the caller its first co-owner and
// opens an empty shared fund, all in one transaction.
func (c *VehicleController) CreateVehicle(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	var req Models.CreateVehicleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	vehicle := Models.Vehicle{
		PlateNumber:        strings.TrimSpace(req.PlateNumber),
		Make:               req.Make,
		VehicleModel:       req.VehicleModel,
		Year:               req.Year,
		BatteryCapacityKWh: req.BatteryCapacityKWh,
		ImageURL:           req.ImageURL,
		VerificationStatus: Models.VerificationPending,
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vehicle).Error; err != nil {
			return err
		}
		ownership := Models.CoOwnership{
			VehicleID:           vehicle.ID,
			UserID:              user.ID,
			OwnershipPercentage: req.OwnershipPercentage,
		}
		if err := tx.Create(&ownership).Error; err != nil {
			return err
		}
		fund := Models.VehicleFund{VehicleID: vehicle.ID, Balance: 0}
		return tx.Create(&fund).Error
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") ||
			strings.Contains(err.Error(), "Duplicate entry") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A vehicle with this plate number already exists",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create vehicle"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(vehicle)
}

// GetVehicles lists all vehicles (admin view).
func (c *VehicleController) GetVehicles(ctx *fiber.Ctx) error {
	var vehicles []Models.Vehicle
	if err := c.DB.Preload("CoOwnerships").Find(&vehicles).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve vehicles"})
	}
	return ctx.JSON(vehicles)
}

// GetMyVehicles lists the vehicles the caller co-owns.
func (c *VehicleController) GetMyVehicles(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	var vehicles []Models.Vehicle
	err := c.DB.
		Joins("JOIN co_ownerships ON co_ownerships.vehicle_id = vehicles.id").
		Where("co_ownerships.user_id = ? AND co_ownerships.deleted_at IS NULL", user.ID).
		Preload("Fund").
		Find(&vehicles).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve vehicles"})
	}
	return ctx.JSON(vehicles)
}

func (c *VehicleController) GetVehicle(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	var vehicle Models.Vehicle
	result := c.DB.Preload("CoOwnerships.User").Preload("Fund").First(&vehicle, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
	}
	return ctx.JSON(vehicle)
}

type VerifyVehicleRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// VerifyVehicle lets an admin approve or reject a vehicle's paperwork.
func (c *VehicleController) VerifyVehicle(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	var vehicle Models.Vehicle
	if err := c.DB.First(&vehicle, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
	}

	var req VerifyVehicleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	status := Models.VerificationRejected
	if req.Approve {
		status = Models.VerificationVerified
	}
	updates := Models.Vehicle{VerificationStatus: status, VerificationNotes: req.Notes}
	if err := c.DB.Model(&vehicle).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update vehicle"})
	}
	return ctx.JSON(vehicle)
}

// GetCoOwners lists a vehicle's ownership records.
func (c *VehicleController) GetCoOwners(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	if !c.isCoOwnerOrAdmin(ctx, uint(id)) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only co-owners can view ownership records"})
	}

	var ownerships []Models.CoOwnership
	if err := c.DB.Preload("User").Where("vehicle_id = ?", id).Find(&ownerships).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve co-owners"})
	}
	return ctx.JSON(ownerships)
}

// AddCoOwner registers a new co-owner. Total ownership across the vehicle
// must not exceed 100%.
func (c *VehicleController) AddCoOwner(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	if !c.isCoOwnerOrAdmin(ctx, uint(id)) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only co-owners can add co-owners"})
	}

	var req Models.AddCoOwnerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var vehicle Models.Vehicle
	if err := c.DB.First(&vehicle, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
	}
	var user Models.User
	if err := c.DB.First(&user, req.UserID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var ownership Models.CoOwnership
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		var total float64
		err := tx.Model(&Models.CoOwnership{}).
			Where("vehicle_id = ?", id).
			Select("COALESCE(SUM(ownership_percentage), 0)").
			Scan(&total).Error
		if err != nil {
			return err
		}
		if total+req.OwnershipPercentage > 100 {
			return fiber.NewError(fiber.StatusBadRequest, "Total ownership cannot exceed 100%")
		}

		ownership = Models.CoOwnership{
			VehicleID:           uint(id),
			UserID:              req.UserID,
			OwnershipPercentage: req.OwnershipPercentage,
		}
		return tx.Create(&ownership).Error
	})
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return ctx.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		if strings.Contains(err.Error(), "UNIQUE constraint") ||
			strings.Contains(err.Error(), "Duplicate entry") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "This user is already a co-owner of the vehicle",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add co-owner"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(ownership)
}

// RemoveCoOwner deletes an ownership record (admin only; wired in routes).
func (c *VehicleController) RemoveCoOwner(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}
	userID, err := strconv.Atoi(ctx.Params("user_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var ownership Models.CoOwnership
	result := c.DB.Where("vehicle_id = ? AND user_id = ?", id, userID).First(&ownership)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Co-ownership record not found"})
	}

	c.DB.Delete(&ownership)
	return ctx.JSON(fiber.Map{"message": "Co-owner removed successfully"})
}

func (c *VehicleController) isCoOwnerOrAdmin(ctx *fiber.Ctx, vehicleID uint) bool {
	user := ctx.Locals("user").(Models.User)
	if user.IsAdmin() {
		return true
	}
	var count int64
	c.DB.Model(&Models.CoOwnership{}).
		Where("vehicle_id = ? AND user_id = ?", vehicleID, user.ID).
		Count(&count)
	return count > 0
}
