package endpoint

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rakibhasan/carebook/model"
)

func TestValidateToken_ValidSession(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createTestUser(t, db, "Pat", "pat@example.com", "password123", model.RolePatient)
	session := model.Session{
		UserID:       user.ID,
		SessionToken: "tok-valid",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	assert.NoError(t, db.Create(&session).Error)
	r.GET("/token/validate", ValidateToken)

	w := performRequest(r, newRequestWithToken(http.MethodGet, "/token/validate", "tok-valid"))
	assertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "Patient")
}

func TestValidateToken_ExpiredSession(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createTestUser(t, db, "Pat", "pat@example.com", "password123", model.RolePatient)
	session := model.Session{
		UserID:       user.ID,
		SessionToken: "tok-expired",
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	assert.NoError(t, db.Create(&session).Error)
	r.GET("/token/validate", ValidateToken)

	w := performRequest(r, newRequestWithToken(http.MethodGet, "/token/validate", "tok-expired"))
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestValidateToken_MissingToken(t *testing.T) {
	r, _ := setupEndpointTest(t)
	r.GET("/token/validate", ValidateToken)

	w := performRequest(r, newRequestWithToken(http.MethodGet, "/token/validate", ""))
	assertStatus(t, w, http.StatusUnauthorized)
}
