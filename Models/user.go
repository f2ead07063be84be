package Models

import (
	"gorm.io/gorm"
)

// Permission levels: 1 = regular co-owner, 3 = platform admin.
const (
	PermissionUser  = 1
	PermissionAdmin = 3
)

type User struct {
	gorm.Model
	Name       string `json:"name" gorm:"size:255;not null"`
	Email      string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Phone      string `json:"phone" gorm:"size:50"`
	Password   []byte `json:"-" gorm:"not null"`
	Permission int    `json:"permission" gorm:"not null;default:1"`
}

func (u *User) IsAdmin() bool {
	return u.Permission >= PermissionAdmin
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
