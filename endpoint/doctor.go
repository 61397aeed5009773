package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rakibhasan/carebook/middleware"
	"github.com/rakibhasan/carebook/model"
	"github.com/rakibhasan/carebook/util"
)

type createDoctorRequest struct {
	Name               string              `json:"name" binding:"required" example:"Dr. Ayesha Rahman"`
	Email              string              `json:"email" binding:"required,email" example:"ayesha@example.com"`
	Password           string              `json:"password" binding:"required,min=8"`
	PhoneNumber        string              `json:"phone_number" example:"+8801912345678"`
	Specialization     string              `json:"specialization" binding:"required" example:"Cardiology"`
	LicenseNumber      string              `json:"license_number" binding:"required" example:"BMDC-12345"`
	ConsultationFee    int                 `json:"consultation_fee" example:"800"`
	Biography          string              `json:"biography"`
	AvailableTimeslots map[string][]string `json:"available_timeslots"`
}

type updateDoctorRequest struct {
	Specialization     string              `json:"specialization"`
	ConsultationFee    *int                `json:"consultation_fee"`
	Biography          string              `json:"biography"`
	AvailableTimeslots map[string][]string `json:"available_timeslots"`
}

// doctorView is the listing shape: profile plus the owning user's name.
type doctorView struct {
	model.Doctor
	Name string `json:"name"`
}

// encodeAvailability validates weekday keys and marshals the availability map.
func encodeAvailability(slots map[string][]string) (datatypes.JSON, error) {
	validDays := map[string]bool{
		"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
		"friday": true, "saturday": true, "sunday": true,
	}
	normalized := map[string][]string{}
	for day, daySlots := range slots {
		key := strings.ToLower(strings.TrimSpace(day))
		if !validDays[key] {
			return nil, fmt.Errorf("invalid weekday %q in availability", day)
		}
		normalized[key] = daySlots
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// createDoctorInDB creates the user account and doctor profile atomically.
// The profile starts unapproved and cannot take bookings until an admin
// approves it.
func createDoctorInDB(db *gorm.DB, req createDoctorRequest, availability datatypes.JSON, hashedPassword, salt string) (*model.Doctor, error) {
	var doctor *model.Doctor
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing model.User
		if err := tx.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			return fmt.Errorf("email already registered")
		}
		var existingDoctor model.Doctor
		if err := tx.Where("license_number = ?", req.LicenseNumber).First(&existingDoctor).Error; err == nil {
			return fmt.Errorf("license number already registered")
		}

		user := model.User{
			Name:         req.Name,
			Email:        req.Email,
			Password:     hashedPassword,
			PasswordSalt: salt,
			PhoneNumber:  req.PhoneNumber,
			RoleID:       model.RoleDoctor,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		doctor = &model.Doctor{
			UserID:             user.ID,
			Specialization:     strings.TrimSpace(req.Specialization),
			LicenseNumber:      strings.TrimSpace(req.LicenseNumber),
			ConsultationFee:    req.ConsultationFee,
			Biography:          req.Biography,
			IsApproved:         false,
			AvailableTimeslots: availability,
		}
		return tx.Create(doctor).Error
	})
	return doctor, err
}

// CreateDoctor godoc
// @Summary      Create a doctor (admin only)
// @Description  Provision a doctor account with profile and weekly availability. The profile starts unapproved.
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body createDoctorRequest true "Doctor details"
// @Success      200 {object} util.APIResponse{data=model.Doctor} "Doctor created"
// @Failure      400 {object} util.APIResponse "Invalid request or duplicate email/license"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor [post]
func CreateDoctor(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	availability, err := encodeAvailability(req.AvailableTimeslots)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	hashedPassword, salt, ok := hashPasswordForSignup(c, req.Password)
	if !ok {
		return
	}

	doctor, err := createDoctorInDB(db, req, availability, hashedPassword, salt)
	if err != nil {
		if strings.Contains(err.Error(), "already registered") {
			util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create doctor", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor created", Data: doctor})
}

// ListDoctors godoc
// @Summary      List doctors
// @Description  List approved doctors with optional specialization filter and keyword search. Public.
// @Tags         Doctor
// @Produce      json
// @Param        specialization query string false "Filter by specialization"
// @Param        keyword query string false "Search by doctor name"
// @Param        limit query int false "Limit number of results" default(10)
// @Param        offset query int false "Offset for pagination" default(0)
// @Success      200 {object} util.APIResponse{data=[]doctorView} "Doctors retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor [get]
func ListDoctors(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	limit := parsePositiveInt(c.Query("limit"), 10, 100)
	offset := parsePositiveInt(c.Query("offset"), 0, 0)

	query := db.Model(&model.Doctor{}).
		Select("doctors.*, users.name as name").
		Joins("JOIN users ON users.id = doctors.user_id").
		Where("doctors.is_approved = ?", true)

	if spec := strings.TrimSpace(c.Query("specialization")); spec != "" {
		query = query.Where("LOWER(doctors.specialization) = ?", strings.ToLower(spec))
	}
	if keyword := c.Query("keyword"); keyword != "" {
		query = query.Where("users.name LIKE ?", "%"+keyword+"%")
	}

	var doctors []doctorView
	if err := query.Order("doctors.id ASC").Limit(limit).Offset(offset).Find(&doctors).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctors", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctors retrieved", Data: doctors})
}

// fetchDoctorByID loads a doctor profile or responds 400/404.
func fetchDoctorByID(c *gin.Context, db *gorm.DB) (*model.Doctor, bool) {
	id, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return nil, false
	}
	var doctor model.Doctor
	if err := db.First(&doctor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: err})
			return nil, false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctor", Err: err})
		return nil, false
	}
	return &doctor, true
}

// GetDoctorInfo godoc
// @Summary      Get doctor details
// @Description  Retrieve a doctor profile by ID. Public.
// @Tags         Doctor
// @Produce      json
// @Param        id path int true "Doctor ID"
// @Success      200 {object} util.APIResponse{data=model.Doctor} "Doctor retrieved"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Router       /doctor/{id} [get]
func GetDoctorInfo(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	doctor, ok := fetchDoctorByID(c, db)
	if !ok {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor retrieved", Data: doctor})
}

// UpdateDoctor godoc
// @Summary      Update doctor profile
// @Description  Update specialization, fee, biography, or weekly availability. Doctors may update their own profile; admins any.
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Doctor ID"
// @Param        request body updateDoctorRequest true "Fields to update"
// @Success      200 {object} util.APIResponse{data=model.Doctor} "Doctor updated"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Router       /doctor/{id} [patch]
func UpdateDoctor(c *gin.Context) {
	var req updateDoctorRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	doctor, ok := fetchDoctorByID(c, db)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	roleID, _ := middleware.GetRoleID(c)
	if roleID != model.RoleAdmin && doctor.UserID != userID {
		util.CallForbiddenError(c, util.APIErrorParams{
			Msg: "You are not allowed to update this profile",
			Err: model.ErrForbidden,
		})
		return
	}

	if req.Specialization != "" {
		doctor.Specialization = strings.TrimSpace(req.Specialization)
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if req.Biography != "" {
		doctor.Biography = req.Biography
	}
	if req.AvailableTimeslots != nil {
		availability, err := encodeAvailability(req.AvailableTimeslots)
		if err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
			return
		}
		doctor.AvailableTimeslots = availability
	}

	if err := db.Save(doctor).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update doctor", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor updated", Data: doctor})
}

// ApproveDoctor godoc
// @Summary      Approve a doctor (admin only)
// @Description  Mark a doctor profile as approved so it becomes bookable and visible in listings.
// @Tags         Doctor
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Doctor ID"
// @Success      200 {object} util.APIResponse{data=model.Doctor} "Doctor approved"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Router       /doctor/{id}/approve [patch]
func ApproveDoctor(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	doctor, ok := fetchDoctorByID(c, db)
	if !ok {
		return
	}

	if !doctor.IsApproved {
		doctor.IsApproved = true
		if err := db.Save(doctor).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to approve doctor", Err: err})
			return
		}
		adminID, _ := middleware.GetUserID(c)
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventDoctorApproved,
			UserID:    fmt.Sprintf("%d", adminID),
			IP:        c.ClientIP(),
			Message:   fmt.Sprintf("Doctor %d approved", doctor.ID),
		})
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor approved", Data: doctor})
}

// DoctorSlots godoc
// @Summary      List a doctor's free slots for a date
// @Description  Returns the doctor's advertised slots for the date's weekday minus slots held by pending or confirmed appointments. Public.
// @Tags         Doctor
// @Produce      json
// @Param        id path int true "Doctor ID"
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Success      200 {object} util.APIResponse{data=[]string} "Slots retrieved"
// @Failure      400 {object} util.APIResponse "Missing or invalid date"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Router       /doctor/{id}/slots [get]
func DoctorSlots(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	doctor, ok := fetchDoctorByID(c, db)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Missing date query parameter",
			Err: fmt.Errorf("date is required"),
		})
		return
	}
	date, err := model.ParseAppointmentDate(dateStr)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid or past date", Err: err})
		return
	}

	slots, err := model.AvailableSlots(db, doctor, date)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to compute available slots", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Slots retrieved", Data: slots})
}
