package endpoint

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rakibhasan/carebook/middleware"
	"github.com/rakibhasan/carebook/model"
	"github.com/rakibhasan/carebook/util"
)

// Sentinel errors for user update operations
var (
	ErrUserEmailAlreadyExists = errors.New("email already exists")
)

type UpdateUserRequest struct {
	Name        string `json:"name" example:"Rakib Hasan"`
	Email       string `json:"email" example:"rakib@example.com"`
	PhoneNumber string `json:"phone_number" example:"+8801712345678"`
	Password    string `json:"password" example:"newpassword123"`
}

// validateUpdateRequest checks whether at least one field is provided for update.
func validateUpdateRequest(req *UpdateUserRequest) bool {
	return req.Name != "" || req.Email != "" || req.PhoneNumber != "" || req.Password != ""
}

// validateAndUpdateEmail checks email uniqueness and updates the user model if valid.
func validateAndUpdateEmail(db *gorm.DB, user *model.User, newEmail string) error {
	if newEmail == "" || newEmail == user.Email {
		return nil
	}
	exists, err := emailExists(db, newEmail, user.ID)
	if err != nil {
		return fmt.Errorf("failed to validate email uniqueness: %w", err)
	}
	if exists {
		return ErrUserEmailAlreadyExists
	}
	user.Email = newEmail
	return nil
}

// hashUserPassword generates a salt and hashes the provided password, updating the user model.
func hashUserPassword(user *model.User, plainPassword string) error {
	salt, err := util.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate password salt: %w", err)
	}

	hashedPassword, err := util.HashPasswordArgon2(plainPassword, salt)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = hashedPassword
	user.PasswordSalt = salt
	return nil
}

// updateUserFields applies the changes from an UpdateUserRequest to a user model,
// handling email uniqueness checks and password hashing.
func updateUserFields(db *gorm.DB, user *model.User, req *UpdateUserRequest) (passwordChanged bool, err error) {
	if err := validateAndUpdateEmail(db, user, req.Email); err != nil {
		return false, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}

	if req.Password != "" {
		if err := hashUserPassword(user, req.Password); err != nil {
			return false, err
		}
		passwordChanged = true
	}

	return passwordChanged, nil
}

// invalidateUserSessions removes session records from both DB and Redis for a given user.
func invalidateUserSessions(db *gorm.DB, userID uint) {
	_ = db.Where("user_id = ?", userID).Delete(&model.Session{}).Error
	_ = util.InvalidateUserSessions(userID)
}

// performUserUpdate updates a user, handling error cases and session invalidation
// after a password change.
func performUserUpdate(c *gin.Context, db *gorm.DB, user *model.User, req *UpdateUserRequest) bool {
	passwordChanged, err := updateUserFields(db, user, req)
	if err != nil {
		if errors.Is(err, ErrUserEmailAlreadyExists) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Email already exists", Err: err})
		} else {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update user fields", Err: err})
		}
		return false
	}

	if err := db.Save(user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update user", Err: err})
		return false
	}

	if passwordChanged {
		invalidateUserSessions(db, user.ID)
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventPasswordChanged,
			UserID:    fmt.Sprintf("%d", user.ID),
			Email:     user.Email,
			IP:        c.ClientIP(),
			Message:   "Password changed, all sessions invalidated",
		})
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User updated successfully", Data: user})
	return true
}

// UpdateUser godoc
// @Summary      Update current user profile
// @Description  Update authenticated user's name, email, phone, and/or password. A password change logs out all sessions.
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body UpdateUserRequest true "Update details"
// @Success      200 {object} util.APIResponse "Update successful"
// @Failure      400 {object} util.APIResponse "Invalid request or email already exists"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /user [patch]
func UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if !requireUpdateFields(c, req) {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return
	}

	user, ok := fetchUserByID(c, db, userID)
	if !ok {
		return
	}

	performUserUpdate(c, db, user, &req)
}

// GetProfile godoc
// @Summary      Get current user profile
// @Description  Retrieve the authenticated user's account, including the doctor profile when one exists.
// @Tags         User
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Profile retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /user [get]
func GetProfile(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return
	}

	user, ok := fetchUserByID(c, db, userID)
	if !ok {
		return
	}

	data := map[string]interface{}{"user": user}
	if user.RoleID == model.RoleDoctor {
		var doctor model.Doctor
		if err := db.Where("user_id = ?", user.ID).First(&doctor).Error; err == nil {
			data["doctor"] = doctor
		}
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile retrieved", Data: data})
}

// ListUsers godoc
// @Summary      List all users (admin only)
// @Description  Get a paginated list of users using cursor-based pagination.
// @Tags         User
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results (default 10, max 100)"
// @Param        cursor query int false "Cursor for pagination (User ID)"
// @Param        keyword query string false "Search keyword for name or email"
// @Success      200 {object} util.APIResponse{data=object} "Users retrieved with cursor pagination"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /user/list [get]
func ListUsers(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	limit, cursor, offset := parsePaginationParams(c)
	keyword := c.Query("keyword")

	query := db.Model(&model.User{})
	filterClause, filterArgs := buildKeywordFilter(keyword)
	if filterClause != "" {
		query = query.Where(filterClause, filterArgs...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count users", Err: err})
		return
	}

	// One extra row detects whether more pages exist.
	query = applyPaginationQuery(query, cursor, offset)
	var users []model.User
	if err := query.Order("id ASC").Limit(limit + 1).Find(&users).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve users", Err: err})
		return
	}

	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
	}

	var nextCursor *uint
	if hasMore {
		lastID := users[len(users)-1].ID
		nextCursor = &lastID
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Users retrieved",
		Data: map[string]interface{}{
			"users":         users,
			"total":         total,
			"total_fetched": len(users),
			"has_more":      hasMore,
			"next_cursor":   nextCursor,
		},
	})
}

// AdminUpdateUser godoc
// @Summary      Update other user's profile (admin only)
// @Description  Admins can update another user's name, email, phone, and password.
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "User ID"
// @Param        request body UpdateUserRequest true "Update details"
// @Success      200 {object} util.APIResponse "Update successful"
// @Failure      400 {object} util.APIResponse "Invalid request or email already exists"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /user/{id} [patch]
func AdminUpdateUser(c *gin.Context) {
	uid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	var req UpdateUserRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if !requireUpdateFields(c, req) {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	user, ok := fetchUserByID(c, db, uid)
	if !ok {
		return
	}

	performUserUpdate(c, db, user, &req)
}

// emailExists checks whether an email already exists in users table excluding a given user ID.
func emailExists(db *gorm.DB, email string, excludeID uint) (bool, error) {
	var count int64
	if err := db.Model(&model.User{}).Where("email = ? AND id != ?", email, excludeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// fetchUserByID retrieves a user by ID, responding for not found or DB errors.
func fetchUserByID(c *gin.Context, db *gorm.DB, userID uint) (*model.User, bool) {
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return nil, false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve user", Err: err})
		return nil, false
	}
	return &user, true
}

// buildKeywordFilter returns the keyword filter string for search queries.
func buildKeywordFilter(keyword string) (string, []interface{}) {
	if keyword != "" {
		kw := "%" + keyword + "%"
		return "name LIKE ? OR email LIKE ?", []interface{}{kw, kw}
	}
	return "", nil
}

// GetUserInfo godoc
// @Summary      Get user info (admin only)
// @Description  Retrieve a user's information by ID.
// @Tags         User
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "User ID"
// @Success      200 {object} util.APIResponse "User retrieved"
// @Failure      400 {object} util.APIResponse "Invalid user id"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /user/{id} [get]
func GetUserInfo(c *gin.Context) {
	uid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	user, ok := fetchUserByID(c, db, uid)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User retrieved", Data: user})
}

// deleteUserWithSessions deletes a user and all their sessions atomically.
func deleteUserWithSessions(db *gorm.DB, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		user := &model.User{}
		if err := tx.First(user, userID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}

// DeleteUser godoc
// @Summary      Delete user (admin only)
// @Description  Soft-delete a user by ID and drop all their sessions.
// @Tags         User
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "User ID"
// @Success      200 {object} util.APIResponse "User deleted"
// @Failure      400 {object} util.APIResponse "Invalid user id"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /user/{id} [delete]
func DeleteUser(c *gin.Context) {
	uid, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if err := deleteUserWithSessions(db, uid); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete user", Err: err})
		return
	}

	_ = util.InvalidateUserSessions(uid)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User deleted"})
}

func requireUpdateFields(c *gin.Context, req UpdateUserRequest) bool {
	if validateUpdateRequest(&req) {
		return true
	}
	util.CallUserError(c, util.APIErrorParams{
		Msg: "At least one field (name, email, phone_number, or password) must be provided",
		Err: fmt.Errorf("no fields to update"),
	})
	return false
}
