package util

import (
	"bytes"
	"log"
	"testing"

	"github.com/rakibhasan/carebook/model"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSecurityLoggerTest(t *testing.T) (*gorm.DB, *bytes.Buffer) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&model.SecurityLog{}))

	var buf bytes.Buffer
	orig := GetSecurityLoggerForTest()
	SetSecurityLoggerForTest(log.New(&buf, "[AUDIT] ", 0))
	SetSecurityLoggerDB(db)
	t.Cleanup(func() {
		SetSecurityLoggerForTest(orig)
		SetSecurityLoggerDB(nil)
	})
	return db, &buf
}

func TestLogSecurityEvent_PersistsToDB(t *testing.T) {
	db, buf := setupSecurityLoggerTest(t)

	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    "12",
		Email:     "user@example.com",
		IP:        "203.0.113.9",
		UserAgent: "go-test",
		Message:   "User logged in successfully",
	})

	assert.Contains(t, buf.String(), "Event=LOGIN_SUCCESS")

	var entry model.SecurityLog
	assert.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "LOGIN_SUCCESS", entry.EventType)
	assert.Equal(t, "user@example.com", entry.Email)
}

func TestLogSecurityEvent_SanitizesInjection(t *testing.T) {
	db, buf := setupSecurityLoggerTest(t)

	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Email:     "bad@example.com\nEvent=LOGIN_SUCCESS",
		IP:        "203.0.113.9",
		Message:   "Login failed: injected",
	})

	assert.NotContains(t, buf.String(), "\nEvent=LOGIN_SUCCESS")

	var entry model.SecurityLog
	assert.NoError(t, db.First(&entry).Error)
	assert.NotContains(t, entry.Email, "\n")
}

func TestLogAppointmentEvent_StoresReferenceDetail(t *testing.T) {
	db, _ := setupSecurityLoggerTest(t)

	LogAppointmentEvent(EventAppointmentBooked, 7, "203.0.113.9", "ref-abc", "Appointment booked")

	var entry model.SecurityLog
	assert.NoError(t, db.Where("event_type = ?", string(EventAppointmentBooked)).First(&entry).Error)
	assert.Equal(t, "7", entry.UserID)
	assert.Contains(t, string(entry.Details), "ref-abc")
}

func TestLogSecurityEvent_NoDBIsBestEffort(t *testing.T) {
	var buf bytes.Buffer
	orig := GetSecurityLoggerForTest()
	SetSecurityLoggerForTest(log.New(&buf, "", 0))
	SetSecurityLoggerDB(nil)
	t.Cleanup(func() { SetSecurityLoggerForTest(orig) })

	LogRateLimitExceeded("user@example.com", "203.0.113.9", "/login")
	assert.Contains(t, buf.String(), "RATE_LIMIT_EXCEEDED")
}
