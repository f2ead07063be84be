package CronJobs

import (
	"fmt"
	"log"
	"time"

	"EVShare/Models"
	"EVShare/Notifications"

	"github.com/robfig/cron/v3"
)

// BookingReminder periodically notifies bookers of slots starting soon.
type BookingReminder struct {
	cronScheduler  *cron.Cron
	lookahead      time.Duration
	runImmediately bool
	jobID          cron.EntryID
}

// NewBookingReminder creates a reminder service that looks ahead the given
// duration for upcoming bookings.
func NewBookingReminder(lookahead time.Duration, runImmediately bool) *BookingReminder {
	return &BookingReminder{
		cronScheduler:  cron.New(),
		lookahead:      lookahead,
		runImmediately: runImmediately,
	}
}

// Start schedules the reminder sweep every 15 minutes.
func (r *BookingReminder) Start() error {
	var err error
	r.jobID, err = r.cronScheduler.AddFunc("*/15 * * * *", func() {
		r.runSweep()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	r.cronScheduler.Start()
	log.Println("Booking reminder scheduler started - sweeping every 15 minutes")

	if r.runImmediately {
		r.runSweep()
	}
	return nil
}

// Stop terminates the reminder scheduler.
func (r *BookingReminder) Stop() {
	if r.cronScheduler != nil {
		r.cronScheduler.Stop()
		log.Println("Booking reminder scheduler stopped")
	}
}

func (r *BookingReminder) runSweep() {
	now := time.Now()
	cutoff := now.Add(r.lookahead)

	var bookings []Models.Booking
	err := Models.DB.Preload("Vehicle").
		Where("status = ? AND reminder_sent = ? AND start_time > ? AND start_time <= ?",
			Models.BookingScheduled, false, now, cutoff).
		Find(&bookings).Error
	if err != nil {
		log.Printf("Booking reminder sweep failed: %v", err)
		return
	}

	for _, booking := range bookings {
		Notifications.NotifyUsers(
			[]uint{booking.UserID},
			Models.NotificationBooking,
			"Upcoming booking",
			fmt.Sprintf("Your booking of %s starts at %s",
				booking.Vehicle.PlateNumber,
				booking.StartTime.Format("15:04 on Jan 2")),
			fmt.Sprintf("booking:%d", booking.ID),
		)
		if err := Models.DB.Model(&booking).Update("reminder_sent", true).Error; err != nil {
			log.Printf("Failed to mark reminder sent for booking %d: %v", booking.ID, err)
		}
	}

	if len(bookings) > 0 {
		log.Printf("Sent %d booking reminders", len(bookings))
	}
}
