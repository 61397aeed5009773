package endpoint

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rakibhasan/carebook/model"
)

func specializationRouter(r *gin.Engine, adminID uint) {
	r.GET("/specialization", ListSpecializations)
	admin := r.Group("/", asUser(adminID, model.RoleAdmin))
	admin.POST("/specialization", CreateSpecialization)
	admin.PATCH("/specialization/:id", UpdateSpecialization)
	admin.DELETE("/specialization/:id", DeleteSpecialization)
}

func TestCreateSpecialization(t *testing.T) {
	r, db := setupEndpointTest(t)
	admin := createTestUser(t, db, "Admin", "admin@example.com", "password123", model.RoleAdmin)
	specializationRouter(r, admin.ID)

	w := performJSON(r, http.MethodPost, "/specialization", gin.H{
		"name": "Cardiology",
		"slug": "Cardiology",
	})
	assertStatus(t, w, http.StatusOK)

	var s model.Specialization
	assert.NoError(t, db.Where("slug = ?", "cardiology").First(&s).Error)
	assert.Equal(t, "Cardiology", s.Name)
}

func TestCreateSpecialization_Duplicate(t *testing.T) {
	r, db := setupEndpointTest(t)
	admin := createTestUser(t, db, "Admin", "admin@example.com", "password123", model.RoleAdmin)
	assert.NoError(t, db.Create(&model.Specialization{Name: "Cardiology", Slug: "cardiology"}).Error)
	specializationRouter(r, admin.ID)

	w := performJSON(r, http.MethodPost, "/specialization", gin.H{
		"name": "cardiology",
		"slug": "cardiology-2",
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestCreateSpecialization_MissingName(t *testing.T) {
	r, db := setupEndpointTest(t)
	admin := createTestUser(t, db, "Admin", "admin@example.com", "password123", model.RoleAdmin)
	specializationRouter(r, admin.ID)

	w := performJSON(r, http.MethodPost, "/specialization", gin.H{"slug": "x"})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestListSpecializations(t *testing.T) {
	r, db := setupEndpointTest(t)
	admin := createTestUser(t, db, "Admin", "admin@example.com", "password123", model.RoleAdmin)
	assert.NoError(t, db.Create(&model.Specialization{Name: "Cardiology", Slug: "cardiology"}).Error)
	assert.NoError(t, db.Create(&model.Specialization{Name: "Neurology", Slug: "neurology"}).Error)
	specializationRouter(r, admin.ID)

	w := performJSON(r, http.MethodGet, "/specialization", nil)
	assertStatus(t, w, http.StatusOK)

	resp := decodeResponse(t, w)
	items := resp["data"].([]interface{})
	assert.Len(t, items, 2)
}

func TestUpdateAndDeleteSpecialization(t *testing.T) {
	r, db := setupEndpointTest(t)
	admin := createTestUser(t, db, "Admin", "admin@example.com", "password123", model.RoleAdmin)
	s := model.Specialization{Name: "Cardiology", Slug: "cardiology"}
	assert.NoError(t, db.Create(&s).Error)
	specializationRouter(r, admin.ID)

	w := performJSON(r, http.MethodPatch, fmt.Sprintf("/specialization/%d", s.ID), gin.H{
		"description": "Heart disorders",
	})
	assertStatus(t, w, http.StatusOK)

	var updated model.Specialization
	assert.NoError(t, db.First(&updated, s.ID).Error)
	assert.Equal(t, "Heart disorders", updated.Description)

	w2 := performJSON(r, http.MethodDelete, fmt.Sprintf("/specialization/%d", s.ID), nil)
	assertStatus(t, w2, http.StatusOK)

	var count int64
	db.Model(&model.Specialization{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
