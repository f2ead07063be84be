package Models

import (
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotificationBooking  NotificationKind = "Booking"
	NotificationProposal NotificationKind = "Proposal"
	NotificationFund     NotificationKind = "Fund"
	NotificationSystem   NotificationKind = "System"
)

type Notification struct {
	gorm.Model
	UserID    uint             `json:"user_id" gorm:"not null;index"`
	Kind      NotificationKind `json:"kind" gorm:"size:20;not null"`
	Title     string           `json:"title" gorm:"size:255;not null"`
	Body      string           `json:"body" gorm:"size:1000"`
	Reference string           `json:"reference" gorm:"size:100"`
	Read      bool             `json:"read" gorm:"not null;default:false;index"`
}
