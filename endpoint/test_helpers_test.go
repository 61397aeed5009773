package endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rakibhasan/carebook/middleware"
	"github.com/rakibhasan/carebook/model"
	"github.com/rakibhasan/carebook/util"
)

// endpointTestModels is the standard set of models migrated for endpoint tests.
var endpointTestModels = []interface{}{
	&model.User{},
	&model.Session{},
	&model.Role{},
	&model.Doctor{},
	&model.Appointment{},
	&model.Specialization{},
	&model.SecurityLog{},
}

// setupEndpointTest returns a Gin engine and a fresh in-memory database with
// all models migrated and roles seeded.
func setupEndpointTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:endpointtest_%d?mode=memory&cache=shared&_busy_timeout=5000", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}
	if err := db.AutoMigrate(endpointTestModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if err := model.SeedRoles(db); err != nil {
		t.Fatalf("seed roles failed: %v", err)
	}

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	return r, db
}

// asUser returns a middleware that stamps the request as authenticated,
// bypassing the session lookup. Handlers only read the context keys.
func asUser(userID uint, roleID uint32) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleIDKey, roleID)
		c.Next()
	}
}

// createTestUser inserts a user with an argon2 password hash.
func createTestUser(t *testing.T, db *gorm.DB, name, email, password string, roleID uint32) model.User {
	t.Helper()
	salt, err := util.GenerateSalt()
	assert.NoError(t, err)
	hashed, err := util.HashPasswordArgon2(password, salt)
	assert.NoError(t, err)

	user := model.User{
		Name:         name,
		Email:        email,
		Password:     hashed,
		PasswordSalt: salt,
		RoleID:       roleID,
	}
	assert.NoError(t, db.Create(&user).Error)
	return user
}

// allWeekAvailability advertises the given slots on every weekday, so tests
// can book any future date without weekday math.
func allWeekAvailability(t *testing.T, slots ...string) datatypes.JSON {
	t.Helper()
	weekly := map[string][]string{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		weekly[day] = slots
	}
	raw, err := json.Marshal(weekly)
	assert.NoError(t, err)
	return datatypes.JSON(raw)
}

// createTestDoctor inserts a doctor user plus an approved profile advertising
// the given slots all week.
func createTestDoctor(t *testing.T, db *gorm.DB, email string, slots ...string) (model.User, model.Doctor) {
	t.Helper()
	user := createTestUser(t, db, "Dr. Test", email, "password123", model.RoleDoctor)
	doctor := model.Doctor{
		UserID:             user.ID,
		Specialization:     "Cardiology",
		LicenseNumber:      fmt.Sprintf("BMDC-%d", user.ID),
		ConsultationFee:    500,
		IsApproved:         true,
		AvailableTimeslots: allWeekAvailability(t, slots...),
	}
	assert.NoError(t, db.Create(&doctor).Error)
	return user, doctor
}

// futureDate returns a date n days from now in wire format.
func futureDate(n int) string {
	return time.Now().AddDate(0, 0, n).Format(model.DateLayout)
}

// performJSON issues a request with an optional JSON body and returns the recorder.
func performJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// newRequestWithToken builds a request carrying a session-token header.
func newRequestWithToken(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("session-token", token)
	return req
}

// performRequest runs a prepared request through the engine.
func performRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// legacyHash produces the pre-argon2 HMAC hash format for upgrade tests.
func legacyHash(plain string) string {
	return util.HashPassword(plain)
}

// decodeResponse unmarshals the standard API envelope.
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, w.Code, "body: %s", w.Body.String())
}
