package Controllers_test

import (
	"net/http"
	"testing"

	"EVShare/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateVehicleOpensFundAndOwnership(t *testing.T) {
	app, db := setupTestApp(t)

	cookie := registerAndLogin(t, app, "Sarah", "sarah@example.com")
	vehicleID := createVehicle(t, app, cookie, "EV-2001")

	var fund Models.VehicleFund
	require.NoError(t, db.Where("vehicle_id = ?", vehicleID).First(&fund).Error)
	assert.Equal(t, float64(0), fund.Balance)

	var ownerships []Models.CoOwnership
	require.NoError(t, db.Where("vehicle_id = ?", vehicleID).Find(&ownerships).Error)
	require.Len(t, ownerships, 1)
	assert.Equal(t, float64(50), ownerships[0].OwnershipPercentage)
}

func TestAddCoOwnerEnforcesShareCap(t *testing.T) {
	app, db := setupTestApp(t)

	ownerCookie := registerAndLogin(t, app, "Sarah", "sarah@example.com")
	vehicleID := createVehicle(t, app, ownerCookie, "EV-2002")

	registerAndLogin(t, app, "Omar", "omar@example.com")
	var omar Models.User
	require.NoError(t, db.Where("email = ?", "omar@example.com").First(&omar).Error)

	// 50% already taken; 60% more would exceed 100%.
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/vehicles/"+itoa(vehicleID)+"/co-owners",
		Models.AddCoOwnerRequest{UserID: omar.ID, OwnershipPercentage: 60}, ownerCookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	db.Model(&Models.CoOwnership{}).Where("vehicle_id = ?", vehicleID).Count(&count)
	assert.Equal(t, int64(1), count)

	// Exactly filling the remainder is fine.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/vehicles/"+itoa(vehicleID)+"/co-owners",
		Models.AddCoOwnerRequest{UserID: omar.ID, OwnershipPercentage: 50}, ownerCookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// The same user cannot be added twice.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/vehicles/"+itoa(vehicleID)+"/co-owners",
		Models.AddCoOwnerRequest{UserID: omar.ID, OwnershipPercentage: 10}, ownerCookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCoOwnerListIsPrivate(t *testing.T) {
	app, _ := setupTestApp(t)

	ownerCookie := registerAndLogin(t, app, "Sarah", "sarah@example.com")
	vehicleID := createVehicle(t, app, ownerCookie, "EV-2003")

	strangerCookie := registerAndLogin(t, app, "Omar", "omar@example.com")
	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/vehicles/"+itoa(vehicleID)+"/co-owners", nil, strangerCookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/vehicles/"+itoa(vehicleID)+"/co-owners", nil, ownerCookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
