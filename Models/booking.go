package Models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingScheduled BookingStatus = "Scheduled"
	BookingActive    BookingStatus = "Active"
	BookingCompleted BookingStatus = "Completed"
	BookingCancelled BookingStatus = "Cancelled"
)

type Booking struct {
	gorm.Model
	VehicleID    uint          `json:"vehicle_id" gorm:"not null;index"`
	UserID       uint          `json:"user_id" gorm:"not null;index"`
	StartTime    time.Time     `json:"start_time" gorm:"not null;index"`
	EndTime      time.Time     `json:"end_time" gorm:"not null"`
	Purpose      string        `json:"purpose" gorm:"size:500"`
	Status       BookingStatus `json:"status" gorm:"size:20;not null;index;default:'Scheduled'"`
	ReminderSent bool          `json:"reminder_sent" gorm:"not null;default:false"`

	Vehicle Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type CreateBookingRequest struct {
	VehicleID uint   `json:"vehicle_id" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Purpose   string `json:"purpose"`
}
