package FiberConfig

import (
	"fmt"
	"log"
	"os"

	"EVShare/Controllers"
	"EVShare/Models"
	"EVShare/Notifications"
	"EVShare/Upgrades"
	"EVShare/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize the upgrade engine with best-effort push delivery
	engine := Upgrades.NewEngine(db)
	engine.Notify = Notifications.NotifyUsers

	// Initialize handlers
	authController := Controllers.NewAuthController(db)
	vehicleController := Controllers.NewVehicleController(db)
	bookingController := Controllers.NewBookingController(db)
	fundController := Controllers.NewFundController(db)
	maintenanceController := Controllers.NewMaintenanceController(db)
	upgradeController := Controllers.NewUpgradeController(engine)
	analyticsController := Controllers.NewAnalyticsController(db, engine)
	notificationController := Controllers.NewNotificationController(db)

	// Public auth routes
	app.Post("/api/register", authController.Register)
	app.Post("/api/login", authController.Login)
	app.Post("/api/logout", authController.Logout)

	// API group - everything below requires a logged-in co-owner
	api := app.Group("/api", middleware.Verify(1))
	api.Get("/user", authController.CurrentUser)
	api.Post("/UpdateToken", Models.UpdateToken)

	// Vehicle routes
	vehicles := api.Group("/vehicles")
	vehicles.Get("/", middleware.Verify(3), vehicleController.GetVehicles)
	vehicles.Post("/", vehicleController.CreateVehicle)
	vehicles.Get("/mine", vehicleController.GetMyVehicles)
	vehicles.Get("/:id", vehicleController.GetVehicle)
	vehicles.Put("/:id/verify", middleware.Verify(3), vehicleController.VerifyVehicle)
	vehicles.Get("/:id/co-owners", vehicleController.GetCoOwners)
	vehicles.Post("/:id/co-owners", vehicleController.AddCoOwner)
	vehicles.Delete("/:id/co-owners/:user_id", middleware.Verify(3), vehicleController.RemoveCoOwner)

	// Booking routes
	vehicles.Get("/:id/bookings", bookingController.GetVehicleBookings)
	bookings := api.Group("/bookings")
	bookings.Get("/", bookingController.GetMyBookings)
	bookings.Post("/", bookingController.CreateBooking)
	bookings.Put("/:id/cancel", bookingController.CancelBooking)
	bookings.Put("/:id/complete", bookingController.CompleteBooking)

	// Fund routes
	vehicles.Get("/:id/fund", fundController.GetBalance)
	vehicles.Post("/:id/fund/contributions", fundController.Contribute)
	vehicles.Get("/:id/fund/transactions", fundController.GetTransactions)

	// Maintenance routes
	vehicles.Get("/:id/maintenance", maintenanceController.GetVehicleRecords)
	maintenance := api.Group("/maintenance")
	maintenance.Post("/", maintenanceController.CreateRecord)
	maintenance.Get("/:id", maintenanceController.GetRecord)
	maintenance.Delete("/:id", middleware.Verify(3), maintenanceController.DeleteRecord)

	// Upgrade proposal routes
	vehicles.Get("/:id/upgrades", upgradeController.GetPendingForVehicle)
	vehicles.Get("/:id/upgrades/statistics", upgradeController.GetVehicleStatistics)
	upgrades := api.Group("/upgrades")
	upgrades.Post("/", upgradeController.Propose)
	upgrades.Get("/votes/mine", upgradeController.GetMyVotingHistory)
	upgrades.Get("/:id", upgradeController.GetProposal)
	upgrades.Post("/:id/votes", upgradeController.Vote)
	upgrades.Post("/:id/execute", upgradeController.Execute)
	upgrades.Put("/:id/cancel", upgradeController.Cancel)

	// Analytics routes
	vehicles.Get("/:id/statistics", analyticsController.GetVehicleStatistics)
	vehicles.Get("/:id/statistics/export", analyticsController.ExportVehicleStatistics)

	// Notification routes
	notifications := api.Group("/notifications")
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Put("/read-all", notificationController.MarkAllRead)
	notifications.Put("/:id/read", notificationController.MarkRead)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.Logger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	SetupRoutes(app, Models.DB)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	log.Fatal(app.Listen(":" + port))
}
