package main

import (
	"log"
	"os"
	"time"

	"EVShare/CronJobs"
	"EVShare/FiberConfig"
	"EVShare/Models"
	"EVShare/Notifications"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present (do not overwrite already-set environment variables)
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	setupLogging()

	Models.Connect()

	if err := Notifications.InitFirebase(); err != nil {
		log.Printf("Failed to initialize Firebase: %v", err)
	}

	reminder := CronJobs.NewBookingReminder(time.Hour, false)
	if err := reminder.Start(); err != nil {
		log.Printf("Failed to start booking reminder: %v", err)
	}
	defer reminder.Stop()

	FiberConfig.FiberConfig()
}

func setupLogging() {
	if os.Getenv("LOG_TO_FILE") != "true" {
		return
	}

	// Create logs directory if it doesn't exist
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
		return
	}

	logFile, err := os.OpenFile("logs/application.log",
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime)
}
