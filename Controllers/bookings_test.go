package Controllers_test

import (
	"net/http"
	"testing"

	"EVShare/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingRequest(vehicleID uint, start, end string) Models.CreateBookingRequest {
	return Models.CreateBookingRequest{
		VehicleID: vehicleID,
		StartTime: start,
		EndTime:   end,
		Purpose:   "Commute",
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	app, _ := setupTestApp(t)

	cookie := registerAndLogin(t, app, "Sarah", "sarah@example.com")
	vehicleID := createVehicle(t, app, cookie, "EV-1001")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/bookings/",
		bookingRequest(vehicleID, "2026-09-01 09:00", "2026-09-01 12:00"), cookie))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Overlaps the middle of the existing slot.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/bookings/",
		bookingRequest(vehicleID, "2026-09-01 11:00", "2026-09-01 14:00"), cookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Back-to-back is allowed: a slot may start exactly when another ends.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/bookings/",
		bookingRequest(vehicleID, "2026-09-01 12:00", "2026-09-01 15:00"), cookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestCreateBookingRequiresCoOwnership(t *testing.T) {
	app, _ := setupTestApp(t)

	ownerCookie := registerAndLogin(t, app, "Sarah", "sarah@example.com")
	vehicleID := createVehicle(t, app, ownerCookie, "EV-1002")

	strangerCookie := registerAndLogin(t, app, "Omar", "omar@example.com")
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/bookings/",
		bookingRequest(vehicleID, "2026-09-01 09:00", "2026-09-01 12:00"), strangerCookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCreateBookingValidatesTimes(t *testing.T) {
	app, _ := setupTestApp(t)

	cookie := registerAndLogin(t, app, "Sarah", "sarah@example.com")
	vehicleID := createVehicle(t, app, cookie, "EV-1003")

	// End before start.
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/bookings/",
		bookingRequest(vehicleID, "2026-09-01 12:00", "2026-09-01 09:00"), cookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Unparseable timestamp.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/bookings/",
		bookingRequest(vehicleID, "next tuesday", "2026-09-01 12:00"), cookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCancelBooking(t *testing.T) {
	app, db := setupTestApp(t)

	cookie := registerAndLogin(t, app, "Sarah", "sarah@example.com")
	vehicleID := createVehicle(t, app, cookie, "EV-1004")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/bookings/",
		bookingRequest(vehicleID, "2026-09-01 09:00", "2026-09-01 12:00"), cookie))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var booking Models.Booking
	decodeBody(t, resp, &booking)

	// Another co-owner cannot cancel someone else's booking.
	otherCookie := registerAndLogin(t, app, "Omar", "omar@example.com")
	var other Models.User
	require.NoError(t, db.Where("email = ?", "omar@example.com").First(&other).Error)
	require.NoError(t, db.Create(&Models.CoOwnership{
		VehicleID:           vehicleID,
		UserID:              other.ID,
		OwnershipPercentage: 50,
	}).Error)

	resp, err = app.Test(jsonRequest(http.MethodPut,
		"/api/bookings/"+itoa(booking.ID)+"/cancel", nil, otherCookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The booker can.
	resp, err = app.Test(jsonRequest(http.MethodPut,
		"/api/bookings/"+itoa(booking.ID)+"/cancel", nil, cookie))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Cancelled slots no longer block the calendar.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/bookings/",
		bookingRequest(vehicleID, "2026-09-01 10:00", "2026-09-01 11:00"), otherCookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
