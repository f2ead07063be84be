package Controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"EVShare/FiberConfig"
	"EVShare/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestApp wires the full route table against a throwaway sqlite
// database. Models.DB is swapped too because the auth middleware reads it.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	Models.DB = db

	app := fiber.New()
	FiberConfig.SetupRoutes(app, db)
	return app, db
}

func jsonRequest(method, target string, body interface{}, jwtCookie string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if jwtCookie != "" {
		req.AddCookie(&http.Cookie{Name: "jwt", Value: jwtCookie})
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
}

// registerAndLogin creates an account through the API and returns the
// session cookie from a successful login.
func registerAndLogin(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/register", Models.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "secret123",
	}, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/login", Models.LoginRequest{
		Email:    email,
		Password: "secret123",
	}, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == "jwt" && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("login response did not set a jwt cookie")
	return ""
}

// createVehicle registers a vehicle for the cookie's user and returns its ID.
func createVehicle(t *testing.T, app *fiber.App, cookie, plate string) uint {
	t.Helper()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/vehicles", Models.CreateVehicleRequest{
		PlateNumber:         plate,
		Make:                "Tesla",
		VehicleModel:        "Model 3",
		Year:                2023,
		BatteryCapacityKWh:  60,
		OwnershipPercentage: 50,
	}, cookie))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var vehicle Models.Vehicle
	decodeBody(t, resp, &vehicle)
	require.NotZero(t, vehicle.ID)
	return vehicle.ID
}

func itoa(id uint) string {
	return strconv.Itoa(int(id))
}
