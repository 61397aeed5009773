package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Role IDs are stable and seeded in order; signup defaults to RolePatient.
const (
	RolePatient uint32 = 1
	RoleDoctor  uint32 = 2
	RoleAdmin   uint32 = 3
)

type Role struct {
	gorm.Model
	ID   uint32 `gorm:"primary_key;auto_increment" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

func SeedRoles(db *gorm.DB) error {
	// Define the roles you want to seed.
	roles := []Role{
		{ID: RolePatient, Name: "Patient"},
		{ID: RoleDoctor, Name: "Doctor"},
		{ID: RoleAdmin, Name: "Admin"},
	}

	for _, role := range roles {
		var existingRole Role
		// Check if the role already exists.
		err := db.Where("name = ?", role.Name).First(&existingRole).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		// Create the role if not found.
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}
	return nil
}
