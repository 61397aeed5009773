package endpoint

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rakibhasan/carebook/model"
)

func TestSignup_CreatesPatient(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.POST("/signup", Signup)

	w := performJSON(r, http.MethodPost, "/signup", gin.H{
		"name":     "Rakib Hasan",
		"email":    "rakib@example.com",
		"password": "password123",
	})
	assertStatus(t, w, http.StatusOK)

	var user model.User
	assert.NoError(t, db.Where("email = ?", "rakib@example.com").First(&user).Error)
	assert.Equal(t, model.RolePatient, user.RoleID)
	assert.Contains(t, user.Password, "argon2id$")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	r, db := setupEndpointTest(t)
	createTestUser(t, db, "Existing", "dup@example.com", "password123", model.RolePatient)
	r.POST("/signup", Signup)

	w := performJSON(r, http.MethodPost, "/signup", gin.H{
		"name":     "Dup",
		"email":    "dup@example.com",
		"password": "password123",
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestSignup_ShortPasswordRejected(t *testing.T) {
	r, _ := setupEndpointTest(t)
	r.POST("/signup", Signup)

	w := performJSON(r, http.MethodPost, "/signup", gin.H{
		"name":     "Short",
		"email":    "short@example.com",
		"password": "short",
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestLogin_Success(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createTestUser(t, db, "Pat", "pat@example.com", "password123", model.RolePatient)
	r.POST("/login", Login)

	w := performJSON(r, http.MethodPost, "/login", gin.H{
		"email":    "pat@example.com",
		"password": "password123",
	})
	assertStatus(t, w, http.StatusOK)

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "Patient", data["role"])

	var session model.Session
	assert.NoError(t, db.Where("user_id = ?", user.ID).First(&session).Error)
	assert.Equal(t, data["token"], session.SessionToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createTestUser(t, db, "Pat", "pat@example.com", "password123", model.RolePatient)
	r.POST("/login", Login)

	w := performJSON(r, http.MethodPost, "/login", gin.H{
		"email":    "pat@example.com",
		"password": "wrongpassword",
	})
	assertStatus(t, w, http.StatusBadRequest)

	var updated model.User
	assert.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, 1, updated.FailedAttempts)
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createTestUser(t, db, "Pat", "pat@example.com", "password123", model.RolePatient)
	r.POST("/login", Login)

	for i := 0; i < 5; i++ {
		performJSON(r, http.MethodPost, "/login", gin.H{
			"email":    "pat@example.com",
			"password": "wrongpassword",
		})
	}

	var locked model.User
	assert.NoError(t, db.First(&locked, user.ID).Error)
	assert.NotNil(t, locked.LockedUntil)

	// Even the correct password is rejected while locked.
	w := performJSON(r, http.MethodPost, "/login", gin.H{
		"email":    "pat@example.com",
		"password": "password123",
	})
	assertStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "locked")
}

func TestLogin_UpgradesLegacyHash(t *testing.T) {
	r, db := setupEndpointTest(t)
	// Seed a user with the legacy HMAC hash format.
	user := model.User{
		Name:     "Legacy",
		Email:    "legacy@example.com",
		Password: legacyHash("password123"),
		RoleID:   model.RolePatient,
	}
	assert.NoError(t, db.Create(&user).Error)
	r.POST("/login", Login)

	w := performJSON(r, http.MethodPost, "/login", gin.H{
		"email":    "legacy@example.com",
		"password": "password123",
	})
	assertStatus(t, w, http.StatusOK)

	var upgraded model.User
	assert.NoError(t, db.First(&upgraded, user.ID).Error)
	assert.Contains(t, upgraded.Password, "argon2id$")
	assert.NotEmpty(t, upgraded.PasswordSalt)
}

func TestLogout_DeletesSession(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createTestUser(t, db, "Pat", "pat@example.com", "password123", model.RolePatient)
	session := model.Session{
		UserID:       user.ID,
		SessionToken: "tok-logout",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	assert.NoError(t, db.Create(&session).Error)
	r.DELETE("/logout", Logout)

	req := newRequestWithToken(http.MethodDelete, "/logout", "tok-logout")
	w := performRequest(r, req)
	assertStatus(t, w, http.StatusOK)

	var count int64
	db.Model(&model.Session{}).Where("session_token = ?", "tok-logout").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLogout_UnknownSession(t *testing.T) {
	r, _ := setupEndpointTest(t)
	r.DELETE("/logout", Logout)

	req := newRequestWithToken(http.MethodDelete, "/logout", "nope")
	w := performRequest(r, req)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestVerifyPassword(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createTestUser(t, db, "Pat", "pat@example.com", "password123", model.RolePatient)
	r.POST("/verify-password", asUser(user.ID, model.RolePatient), VerifyPassword)

	w := performJSON(r, http.MethodPost, "/verify-password", gin.H{"password": "password123"})
	assertStatus(t, w, http.StatusOK)

	w2 := performJSON(r, http.MethodPost, "/verify-password", gin.H{"password": "nope1234"})
	assertStatus(t, w2, http.StatusUnauthorized)
}
