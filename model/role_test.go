package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedRoles_CreatesAllRolesOnce(t *testing.T) {
	db := setupTestDB(t, "role", &Role{})

	assert.NoError(t, SeedRoles(db))

	var count int64
	db.Model(&Role{}).Count(&count)
	assert.Equal(t, int64(3), count)

	// Seeding again must be a no-op.
	assert.NoError(t, SeedRoles(db))
	db.Model(&Role{}).Count(&count)
	assert.Equal(t, int64(3), count)

	var admin Role
	assert.NoError(t, db.Where("name = ?", "Admin").First(&admin).Error)
	assert.Equal(t, RoleAdmin, admin.ID)
}
