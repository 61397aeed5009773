package endpoint

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rakibhasan/carebook/middleware"
	"github.com/rakibhasan/carebook/model"
	"github.com/rakibhasan/carebook/util"
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

// parseIDParam parses the "id" path parameter into a uint and returns an error if invalid.
func parseIDParam(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("ID must be a valid integer")
	}
	if id <= 0 {
		return 0, fmt.Errorf("ID must be a positive integer")
	}
	return uint(id), nil
}

// resolveActor builds the workflow actor from the authenticated context.
// Doctors get their doctor profile ID attached; a doctor-role user without
// a profile acts with DoctorID zero and owns nothing.
func resolveActor(c *gin.Context, db *gorm.DB) (model.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("user id not found in context"),
		})
		return model.Actor{}, false
	}
	roleID, _ := middleware.GetRoleID(c)

	actor := model.Actor{UserID: userID, RoleID: roleID}
	if roleID == model.RoleDoctor {
		var doctor model.Doctor
		if err := db.Where("user_id = ?", userID).First(&doctor).Error; err == nil {
			actor.DoctorID = doctor.ID
		}
	}
	return actor, true
}

// parsePositiveInt parses a positive integer from a query value returning a default
// when the value is missing or invalid. If max > 0 it caps the returned value.
func parsePositiveInt(q string, defaultVal, max int) int {
	if q == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(q)
	if err != nil || v <= 0 {
		return defaultVal
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// parseUintQuery parses an unsigned integer query parameter and returns 0 on error.
func parseUintQuery(c *gin.Context, name string) uint {
	s := c.Query(name)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 {
		return 0
	}
	return uint(v)
}

// parsePaginationParams extracts and validates limit, cursor, and offset query parameters.
func parsePaginationParams(c *gin.Context) (limit int, cursor uint, offset int) {
	limit = parsePositiveInt(c.Query("limit"), 10, 100)
	cursor = parseUintQuery(c, "cursor")
	offset = parsePositiveInt(c.Query("offset"), 0, 0)
	return limit, cursor, offset
}

// applyPaginationQuery applies cursor or offset-based pagination to a query.
func applyPaginationQuery(query *gorm.DB, cursor uint, offset int) *gorm.DB {
	if cursor > 0 {
		return query.Where("id > ?", cursor)
	}
	if offset > 0 {
		return query.Offset(offset)
	}
	return query
}
