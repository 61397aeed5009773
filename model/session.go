package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is the server-side record of an issued login token. Redis keeps a
// fast-path copy keyed by token; this row is the source of truth.
type Session struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"column:user_id;index;not null"`
	SessionToken string    `json:"session_token" gorm:"column:session_token;type:varchar(512);index"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"column:expires_at"`
	ClientIP     string    `json:"client_ip" gorm:"column:client_ip;type:varchar(45)"`
	Browser      string    `json:"browser" gorm:"column:browser;type:varchar(512)"`
}
