package Controllers

import (
	"strconv"
	"time"

	"EVShare/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BookingController handles scheduling of shared vehicles.
type BookingController struct {
	DB *gorm.DB
}

func NewBookingController(db *gorm.DB) *BookingController {
	return &BookingController{DB: db}
}

var bookingTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseBookingTime(value string) (time.Time, error) {
	var t time.Time
	var err error
	for _, layout := range bookingTimeLayouts {
		t, err = time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}
	return t, err
}

// CreateBooking schedules a vehicle for the caller. The caller must co-own
// the vehicle and the slot must not overlap another active booking.
func (c *BookingController) CreateBooking(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	var req Models.CreateBookingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	start, err := parseBookingTime(req.StartTime)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_time"})
	}
	end, err := parseBookingTime(req.EndTime)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_time"})
	}
	if !end.After(start) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be after start_time"})
	}

	var count int64
	c.DB.Model(&Models.CoOwnership{}).
		Where("vehicle_id = ? AND user_id = ?", req.VehicleID, user.ID).
		Count(&count)
	if count == 0 {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only co-owners can book this vehicle"})
	}

	var booking Models.Booking
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		err := tx.Model(&Models.Booking{}).
			Where("vehicle_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
				req.VehicleID,
				[]Models.BookingStatus{Models.BookingScheduled, Models.BookingActive},
				end, start).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return fiber.NewError(fiber.StatusConflict, "The vehicle is already booked for this time slot")
		}

		booking = Models.Booking{
			VehicleID: req.VehicleID,
			UserID:    user.ID,
			StartTime: start,
			EndTime:   end,
			Purpose:   req.Purpose,
			Status:    Models.BookingScheduled,
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return ctx.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create booking"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(booking)
}

// GetMyBookings lists the caller's bookings, newest first.
func (c *BookingController) GetMyBookings(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)

	var bookings []Models.Booking
	err := c.DB.Preload("Vehicle").
		Where("user_id = ?", user.ID).
		Order("start_time DESC").
		Find(&bookings).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve bookings"})
	}
	return ctx.JSON(bookings)
}

// GetVehicleBookings lists a vehicle's schedule for its co-owners.
func (c *BookingController) GetVehicleBookings(ctx *fiber.Ctx) error {
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
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only co-owners can view the schedule"})
	}

	var bookings []Models.Booking
	err = c.DB.Preload("User").
		Where("vehicle_id = ?", id).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve bookings"})
	}
	return ctx.JSON(bookings)
}

// CancelBooking cancels a scheduled booking (booker or admin).
func (c *BookingController) CancelBooking(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var booking Models.Booking
	if err := c.DB.First(&booking, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.UserID != user.ID && !user.IsAdmin() {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the booker or an admin can cancel"})
	}
	if booking.Status != Models.BookingScheduled {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only scheduled bookings can be cancelled"})
	}

	if err := c.DB.Model(&booking).Update("status", Models.BookingCancelled).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel booking"})
	}
	return ctx.JSON(booking)
}

// CompleteBooking marks a booking finished.
func (c *BookingController) CompleteBooking(ctx *fiber.Ctx) error {
	user := ctx.Locals("user").(Models.User)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var booking Models.Booking
	if err := c.DB.First(&booking, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.UserID != user.ID && !user.IsAdmin() {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the booker or an admin can complete"})
	}
	if booking.Status != Models.BookingScheduled && booking.Status != Models.BookingActive {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Booking is not in progress"})
	}

	if err := c.DB.Model(&booking).Update("status", Models.BookingCompleted).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete booking"})
	}
	return ctx.JSON(booking)
}
