package model

import "gorm.io/gorm"

// User represents an account of any role (patient, doctor, admin).
// Doctor-specific profile data lives in Doctor, linked by UserID.
type User struct {
	gorm.Model
	Name           string `json:"name" gorm:"column:name;type:varchar(191);not null"`
	Email          string `json:"email" gorm:"column:email;type:varchar(191);uniqueIndex;not null"`
	Password       string `json:"-" gorm:"column:password;type:varchar(255);not null"`
	PasswordSalt   string `json:"-" gorm:"column:password_salt;type:varchar(64)"`
	PhoneNumber    string `json:"phone_number" gorm:"column:phone_number;type:varchar(32)"`
	RoleID         uint32 `json:"role_id" gorm:"column:role_id;not null;default:1"`
	IsActive       bool   `json:"is_active" gorm:"column:is_active;default:true"`
	FailedAttempts int    `json:"-" gorm:"column:failed_attempts;default:0"`
	LockedUntil    *int64 `json:"-" gorm:"column:locked_until"`
}
