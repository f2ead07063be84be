package Controllers_test

import (
	"net/http"
	"testing"

	"EVShare/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginRoundTrip(t *testing.T) {
	app, _ := setupTestApp(t)

	cookie := registerAndLogin(t, app, "Sarah", "sarah@example.com")

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/user", nil, cookie))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user Models.User
	decodeBody(t, resp, &user)
	assert.Equal(t, "Sarah", user.Name)
	assert.Equal(t, "sarah@example.com", user.Email)
	assert.Equal(t, Models.PermissionUser, user.Permission)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _ := setupTestApp(t)

	registerAndLogin(t, app, "Sarah", "sarah@example.com")

	// Same address again, differing only in case.
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/register", Models.RegisterRequest{
		Name:     "Impostor",
		Email:    "Sarah@Example.com",
		Password: "secret123",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := setupTestApp(t)

	registerAndLogin(t, app, "Sarah", "sarah@example.com")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/login", Models.LoginRequest{
		Email:    "sarah@example.com",
		Password: "wrong-password",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/login", Models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/user", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/user", nil, "not-a-token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app, db := setupTestApp(t)

	cookie := registerAndLogin(t, app, "Sarah", "sarah@example.com")

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/vehicles/", nil, cookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Promote and retry.
	require.NoError(t, db.Model(&Models.User{}).
		Where("email = ?", "sarah@example.com").
		Update("permission", Models.PermissionAdmin).Error)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/vehicles/", nil, cookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
