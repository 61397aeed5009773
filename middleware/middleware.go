package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rakibhasan/carebook/config"
	"github.com/rakibhasan/carebook/model"
	"github.com/rakibhasan/carebook/util"
)

// Context keys set by DatabaseMiddleware and ValidateLoginToken.
const (
	DBKey     = "db"
	UserIDKey = "user_id"
	RoleIDKey = "role_id"
)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization, session-token")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Content-Type", "application/json")

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// DatabaseMiddleware injects the shared gorm DB into the request context.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DBKey, db)
		c.Next()
	}
}

// GetDB returns the gorm DB stored by DatabaseMiddleware, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(DBKey)
	if !ok {
		return nil
	}
	db, ok := v.(*gorm.DB)
	if !ok {
		return nil
	}
	return db
}

// GetUserID returns the authenticated user ID set by ValidateLoginToken.
func GetUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// GetRoleID returns the authenticated user's role ID set by ValidateLoginToken.
func GetRoleID(c *gin.Context) (uint32, bool) {
	v, ok := c.Get(RoleIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint32)
	return id, ok
}

// lookupSessionInRedis resolves "session:<token>" to (userID, roleID). The
// value format is "<userID>:<roleID>", written at login.
func lookupSessionInRedis(token string) (uint, uint32, bool) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return 0, 0, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	val, err := rdb.Get(ctx, fmt.Sprintf("session:%s", token)).Result()
	if err != nil {
		return 0, 0, false
	}
	parts := strings.SplitN(val, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	userID, err1 := strconv.ParseUint(parts[0], 10, 64)
	roleID, err2 := strconv.ParseUint(parts[1], 10, 32)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return uint(userID), uint32(roleID), true
}

// ValidateLoginToken authenticates the request via the session-token header.
// Redis is the fast path; the sessions table is authoritative when Redis has
// no entry. Expired sessions are rejected and deleted.
func ValidateLoginToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("session-token")
		if token == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session token not provided",
				Err: fmt.Errorf("session token not provided"),
			})
			c.Abort()
			return
		}

		if userID, roleID, ok := lookupSessionInRedis(token); ok {
			c.Set(UserIDKey, userID)
			c.Set(RoleIDKey, roleID)
			c.Next()
			return
		}

		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{
				Msg: "Database connection not available",
				Err: fmt.Errorf("db is nil"),
			})
			c.Abort()
			return
		}

		var session model.Session
		if err := db.Where("session_token = ?", token).First(&session).Error; err != nil {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Invalid session token",
				Err: fmt.Errorf("session not found"),
			})
			c.Abort()
			return
		}

		if time.Now().After(session.ExpiresAt) {
			_ = db.Delete(&session).Error
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session expired",
				Err: fmt.Errorf("session expired"),
			})
			c.Abort()
			return
		}

		var user model.User
		if err := db.First(&user, session.UserID).Error; err != nil {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Invalid session token",
				Err: fmt.Errorf("session user not found"),
			})
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(RoleIDKey, user.RoleID)
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose role is not in the
// allowed set. Must run after ValidateLoginToken.
func RequireRole(roles ...uint32) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, ok := GetRoleID(c)
		if !ok {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "User not authenticated",
				Err: fmt.Errorf("role not found in context"),
			})
			c.Abort()
			return
		}
		for _, allowed := range roles {
			if roleID == allowed {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), "", c.ClientIP(), c.Request.URL.Path, "insufficient role")
		util.CallForbiddenError(c, util.APIErrorParams{
			Msg: "Insufficient permissions",
			Err: fmt.Errorf("role %d is not allowed", roleID),
		})
		c.Abort()
	}
}
