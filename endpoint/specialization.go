package endpoint

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rakibhasan/carebook/model"
	"github.com/rakibhasan/carebook/util"
)

type specializationRequest struct {
	Name        string `json:"name" example:"Cardiology"`
	Slug        string `json:"slug" example:"cardiology"`
	Description string `json:"description" example:"Heart and blood vessel disorders"`
}

func normalizeSpecializationInput(req specializationRequest) (name, slug, description string) {
	name = strings.TrimSpace(req.Name)
	slug = strings.ToLower(strings.TrimSpace(req.Slug))
	description = strings.TrimSpace(req.Description)
	return
}

// specializationExists checks whether an entry exists for a given WHERE clause.
func specializationExists(db *gorm.DB, where string, args ...interface{}) (bool, error) {
	var s model.Specialization
	err := db.Where(where, args...).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func fetchSpecializationByID(db *gorm.DB, id string) (model.Specialization, error) {
	var s model.Specialization
	if err := db.First(&s, id).Error; err != nil {
		return model.Specialization{}, err
	}
	return s, nil
}

// getSpecializationIDParam validates the id path parameter.
func getSpecializationIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Missing specialization ID",
			Err: fmt.Errorf("specialization ID is required"),
		})
		return "", false
	}
	return id, true
}

// ListSpecializations godoc
// @Summary      List specializations
// @Description  Get the specialization catalog. Public.
// @Tags         Specialization
// @Produce      json
// @Param        limit query int false "Limit number of results" default(100)
// @Param        offset query int false "Offset for pagination" default(0)
// @Success      200 {object} util.APIResponse{data=[]model.Specialization} "Specializations retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /specialization [get]
func ListSpecializations(c *gin.Context) {
	limit := parsePositiveInt(c.Query("limit"), 100, 0)
	offset := parsePositiveInt(c.Query("offset"), 0, 0)

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var specializations []model.Specialization
	if err := db.Limit(limit).Offset(offset).Find(&specializations).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve specializations",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Specializations retrieved",
		Data: specializations,
	})
}

// checkDuplicateSpecialization reports whether name or slug is already taken.
func checkDuplicateSpecialization(c *gin.Context, db *gorm.DB, name, slug string) bool {
	exists, err := specializationExists(db, "LOWER(name) = ?", strings.ToLower(name))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to check existing specializations", Err: err})
		return false
	}
	if exists {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Specialization with similar name already exists",
			Err: fmt.Errorf("specialization already exists"),
		})
		return false
	}

	exists, err = specializationExists(db, "slug = ?", slug)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to check existing slugs", Err: err})
		return false
	}
	if exists {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Specialization with this slug already exists",
			Err: fmt.Errorf("slug already exists"),
		})
		return false
	}

	return true
}

// CreateSpecialization godoc
// @Summary      Create a specialization (admin only)
// @Description  Add a new entry to the specialization catalog
// @Tags         Specialization
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body specializationRequest true "Specialization information"
// @Success      200 {object} util.APIResponse{data=model.Specialization} "Specialization created"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /specialization [post]
func CreateSpecialization(c *gin.Context) {
	var req specializationRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	name, slug, description := normalizeSpecializationInput(req)
	if name == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request body: name is required",
			Err: fmt.Errorf("name is required"),
		})
		return
	}
	if slug == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request body: slug is required",
			Err: fmt.Errorf("slug is required"),
		})
		return
	}

	if !checkDuplicateSpecialization(c, db, name, slug) {
		return
	}

	specialization := model.Specialization{Name: name, Slug: slug, Description: description}
	if err := db.Create(&specialization).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create specialization", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Specialization created",
		Data: specialization,
	})
}

// UpdateSpecialization godoc
// @Summary      Update a specialization (admin only)
// @Description  Update an existing catalog entry
// @Tags         Specialization
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Specialization ID"
// @Param        request body specializationRequest true "Updated specialization information"
// @Success      200 {object} util.APIResponse{data=model.Specialization} "Specialization updated"
// @Failure      400 {object} util.APIResponse "Invalid request or specialization not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /specialization/{id} [patch]
func UpdateSpecialization(c *gin.Context) {
	id, ok := getSpecializationIDParam(c)
	if !ok {
		return
	}

	var req specializationRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	existing, err := fetchSpecializationByID(db, id)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Specialization not found", Err: err})
		return
	}

	if req.Name != "" {
		existing.Name = strings.TrimSpace(req.Name)
	}
	if req.Slug != "" {
		existing.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	}
	if req.Description != "" {
		existing.Description = strings.TrimSpace(req.Description)
	}

	if err := db.Save(&existing).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update specialization", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Specialization updated",
		Data: existing,
	})
}

// DeleteSpecialization godoc
// @Summary      Delete a specialization (admin only)
// @Description  Soft delete a catalog entry by ID
// @Tags         Specialization
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Specialization ID"
// @Success      200 {object} util.APIResponse "Specialization deleted"
// @Failure      400 {object} util.APIResponse "Specialization not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /specialization/{id} [delete]
func DeleteSpecialization(c *gin.Context) {
	id, ok := getSpecializationIDParam(c)
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	existing, err := fetchSpecializationByID(db, id)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Specialization not found", Err: err})
		return
	}

	if err := db.Delete(&existing).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete specialization", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Specialization deleted",
	})
}
