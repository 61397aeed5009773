package endpoint

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rakibhasan/carebook/model"
)

func reportRouter(r *gin.Engine, adminID uint) {
	admin := r.Group("/", asUser(adminID, model.RoleAdmin))
	admin.GET("/report/monthly", MonthlyReports)
}

func TestMonthlyReports_ReturnsRequestedMonth(t *testing.T) {
	r, db := setupEndpointTest(t)
	_, doctor := createTestDoctor(t, db, "doc@example.com", "10:00-11:00")
	admin := createTestUser(t, db, "Admin", "admin@example.com", "password123", model.RoleAdmin)

	appt := model.Appointment{
		Reference: "ref-report", PatientID: 10, DoctorID: doctor.ID,
		AppointmentDate: "2026-07-05", TimeSlot: "10:00-11:00", Status: model.StatusCompleted,
	}
	assert.NoError(t, db.Create(&appt).Error)

	reportRouter(r, admin.ID)
	w := performJSON(r, http.MethodGet, "/report/monthly?month=2026-07", nil)
	assertStatus(t, w, http.StatusOK)

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "2026-07", data["month"])

	reports := data["reports"].([]interface{})
	assert.Len(t, reports, 1)
	report := reports[0].(map[string]interface{})
	assert.Equal(t, float64(doctor.ID), report["doctor_id"])
	assert.Equal(t, float64(1), report["completed"])
}

func TestMonthlyReports_InvalidMonthRejected(t *testing.T) {
	r, db := setupEndpointTest(t)
	admin := createTestUser(t, db, "Admin", "admin@example.com", "password123", model.RoleAdmin)

	reportRouter(r, admin.ID)
	w := performJSON(r, http.MethodGet, "/report/monthly?month=July", nil)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestMonthlyReports_EmptyMonthReturnsNoReports(t *testing.T) {
	r, db := setupEndpointTest(t)
	admin := createTestUser(t, db, "Admin", "admin@example.com", "password123", model.RoleAdmin)

	reportRouter(r, admin.ID)
	w := performJSON(r, http.MethodGet, "/report/monthly?month=2026-01", nil)
	assertStatus(t, w, http.StatusOK)

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	reports := data["reports"].([]interface{})
	assert.Empty(t, reports)
}
