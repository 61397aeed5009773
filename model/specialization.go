package model

import "gorm.io/gorm"

// Specialization is an admin-managed catalog entry doctors are grouped by.
type Specialization struct {
	gorm.Model
	Name        string `json:"name" gorm:"column:name;type:varchar(191);not null" example:"Cardiology"`
	Slug        string `json:"slug" gorm:"column:slug;type:varchar(191);uniqueIndex" example:"cardiology"`
	Description string `json:"description" gorm:"column:description;type:text" example:"Heart and blood vessel disorders"`
}
