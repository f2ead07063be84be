package Models

import (
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "database.db"
	}

	connection, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = connection

	if err := Migrate(DB); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
}

// Migrate runs AutoMigrate in dependency order so foreign keys resolve.
func Migrate(db *gorm.DB) error {
	// 1. Base tables with no dependencies
	if err := db.AutoMigrate(
		&User{},
		&Vehicle{},
		&FCMToken{},
	); err != nil {
		return err
	}

	// 2. Tables with simple foreign keys
	if err := db.AutoMigrate(
		&CoOwnership{},
		&VehicleFund{},
		&Booking{},
		&MaintenanceRecord{},
		&Notification{},
	); err != nil {
		return err
	}

	// 3. Tables depending on multiple other models
	return db.AutoMigrate(
		&FundTransaction{},
		&UpgradeProposal{},
		&UpgradeVote{},
	)
}
