package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rakibhasan/carebook/model"
	"github.com/rakibhasan/carebook/util"
)

type bookAppointmentRequest struct {
	DoctorID        uint   `json:"doctor_id" binding:"required" example:"1"`
	AppointmentDate string `json:"appointment_date" binding:"required" example:"2025-01-25"`
	TimeSlot        string `json:"time_slot" binding:"required" example:"10:00-11:00"`
	Symptoms        string `json:"symptoms" example:"Chest pain when climbing stairs"`
	Notes           string `json:"notes" example:"Prefers morning visits"`
}

type rescheduleRequest struct {
	AppointmentDate string `json:"appointment_date" binding:"required" example:"2025-02-01"`
	TimeSlot        string `json:"time_slot" binding:"required" example:"11:00-12:00"`
}

type statusUpdateRequest struct {
	Status       string `json:"status" binding:"required" example:"confirmed"`
	DoctorNotes  string `json:"doctor_notes"`
	Prescription string `json:"prescription"`
	Diagnosis    string `json:"diagnosis"`
}

// respondBookingError maps booking and workflow errors onto HTTP statuses.
// Conflicts are 409 so clients can distinguish "slot taken" from bad input.
func respondBookingError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, model.ErrSlotConflict):
		util.CallConflictError(c, util.APIErrorParams{Msg: "Time slot is already booked", Err: err})
	case errors.Is(err, model.ErrForbidden):
		util.CallForbiddenError(c, util.APIErrorParams{Msg: "You are not allowed to perform this action", Err: err})
	case errors.Is(err, model.ErrDoctorNotFound):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found or not approved", Err: err})
	case errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrSlotUnavailable),
		errors.Is(err, model.ErrInvalidTransition):
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
	default:
		util.CallServerError(c, util.APIErrorParams{Msg: msg, Err: err})
	}
}

// BookAppointment godoc
// @Summary      Book an appointment
// @Description  Book a time slot with an approved doctor. The slot must be in the doctor's advertised availability and not already held by a pending or confirmed appointment.
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body bookAppointmentRequest true "Booking details"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment booked"
// @Failure      400 {object} util.APIResponse "Invalid date or slot not offered"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      409 {object} util.APIResponse "Slot already booked"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment [post]
func BookAppointment(c *gin.Context) {
	var req bookAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	actor, ok := resolveActor(c, db)
	if !ok {
		return
	}

	appt, err := model.BookAppointment(db, model.BookingRequest{
		PatientID: actor.UserID,
		DoctorID:  req.DoctorID,
		Date:      req.AppointmentDate,
		TimeSlot:  req.TimeSlot,
		Symptoms:  req.Symptoms,
		Notes:     req.Notes,
	})
	if err != nil {
		if errors.Is(err, model.ErrSlotConflict) {
			util.LogAppointmentEvent(util.EventAppointmentConflict, actor.UserID, c.ClientIP(), "",
				fmt.Sprintf("Conflicting booking attempt: doctor %d %s %s", req.DoctorID, req.AppointmentDate, req.TimeSlot))
		}
		respondBookingError(c, "Failed to book appointment", err)
		return
	}

	util.LogAppointmentEvent(util.EventAppointmentBooked, actor.UserID, c.ClientIP(), appt.Reference,
		fmt.Sprintf("Appointment booked: doctor %d %s %s", appt.DoctorID, appt.AppointmentDate, appt.TimeSlot))
	notifyBookingReceived(db, appt)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment booked", Data: appt})
}

// notifyBookingReceived emails the patient about the pending booking.
// Mail failures are logged, never surfaced to the booking response.
func notifyBookingReceived(db *gorm.DB, appt *model.Appointment) {
	if !util.MailerEnabled() {
		return
	}
	var patient model.User
	if err := db.First(&patient, appt.PatientID).Error; err != nil {
		return
	}
	if err := util.SendBookingReceived(patient.Email, patient.Name, appt.AppointmentDate, appt.TimeSlot, appt.Reference); err != nil {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventSuspiciousActivity,
			UserID:    fmt.Sprintf("%d", appt.PatientID),
			Message:   fmt.Sprintf("Failed to send booking mail: %v", err),
		})
	}
}

func notifyStatusUpdate(db *gorm.DB, appt *model.Appointment) {
	if !util.MailerEnabled() {
		return
	}
	var patient model.User
	if err := db.First(&patient, appt.PatientID).Error; err != nil {
		return
	}
	_ = util.SendStatusUpdate(patient.Email, patient.Name, appt.AppointmentDate, appt.TimeSlot, string(appt.Status))
}

// fetchAppointmentByID loads an appointment or responds 400/404.
func fetchAppointmentByID(c *gin.Context, db *gorm.DB) (*model.Appointment, bool) {
	id, err := parseIDParam(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return nil, false
	}

	var appt model.Appointment
	if err := db.First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
			return nil, false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointment", Err: err})
		return nil, false
	}
	return &appt, true
}

// canViewAppointment reports whether the actor may read the appointment.
func canViewAppointment(appt *model.Appointment, actor model.Actor) bool {
	if actor.RoleID == model.RoleAdmin {
		return true
	}
	if actor.RoleID == model.RoleDoctor && actor.DoctorID != 0 && actor.DoctorID == appt.DoctorID {
		return true
	}
	return actor.UserID == appt.PatientID
}

// GetAppointment godoc
// @Summary      Get appointment details
// @Description  Retrieve a single appointment. Patients see their own, doctors see their own schedule, admins see everything.
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment retrieved"
// @Failure      403 {object} util.APIResponse "Not your appointment"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointment/{id} [get]
func GetAppointment(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	actor, ok := resolveActor(c, db)
	if !ok {
		return
	}
	appt, ok := fetchAppointmentByID(c, db)
	if !ok {
		return
	}

	if !canViewAppointment(appt, actor) {
		util.CallForbiddenError(c, util.APIErrorParams{
			Msg: "You are not allowed to view this appointment",
			Err: model.ErrForbidden,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment retrieved", Data: appt})
}

// scopeAppointmentsForActor narrows the listing query by role: patients to
// their own bookings, doctors to their own schedule.
func scopeAppointmentsForActor(query *gorm.DB, actor model.Actor) *gorm.DB {
	switch actor.RoleID {
	case model.RoleAdmin:
		return query
	case model.RoleDoctor:
		return query.Where("doctor_id = ?", actor.DoctorID)
	default:
		return query.Where("patient_id = ?", actor.UserID)
	}
}

// ListAppointments godoc
// @Summary      List appointments
// @Description  List appointments scoped to the caller's role with optional status, date, and doctor filters and cursor pagination.
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Param        status query string false "Filter by status (pending, confirmed, completed, cancelled)"
// @Param        date query string false "Filter by appointment date (YYYY-MM-DD)"
// @Param        doctor_id query int false "Filter by doctor (admin only)"
// @Param        limit query int false "Limit number of results (default 10, max 100)"
// @Param        cursor query int false "Cursor for pagination (appointment ID)"
// @Success      200 {object} util.APIResponse{data=object} "Appointments retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment [get]
func ListAppointments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	actor, ok := resolveActor(c, db)
	if !ok {
		return
	}

	limit, cursor, offset := parsePaginationParams(c)

	query := scopeAppointmentsForActor(db.Model(&model.Appointment{}), actor)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("appointment_date = ?", date)
	}
	if actor.RoleID == model.RoleAdmin {
		if doctorID := parseUintQuery(c, "doctor_id"); doctorID > 0 {
			query = query.Where("doctor_id = ?", doctorID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count appointments", Err: err})
		return
	}

	query = applyPaginationQuery(query, cursor, offset)
	var appts []model.Appointment
	if err := query.Order("id ASC").Limit(limit + 1).Find(&appts).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointments", Err: err})
		return
	}

	hasMore := len(appts) > limit
	if hasMore {
		appts = appts[:limit]
	}
	var nextCursor *uint
	if hasMore {
		lastID := appts[len(appts)-1].ID
		nextCursor = &lastID
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Appointments retrieved",
		Data: map[string]interface{}{
			"appointments":  appts,
			"total":         total,
			"total_fetched": len(appts),
			"has_more":      hasMore,
			"next_cursor":   nextCursor,
		},
	})
}

// RescheduleAppointment godoc
// @Summary      Reschedule a pending appointment
// @Description  Move a pending appointment to a new date and slot. The new slot is validated against availability and active bookings exactly like a fresh booking.
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Param        request body rescheduleRequest true "New date and slot"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment rescheduled"
// @Failure      400 {object} util.APIResponse "Invalid date, slot not offered, or appointment not pending"
// @Failure      403 {object} util.APIResponse "Not your appointment"
// @Failure      409 {object} util.APIResponse "Target slot already booked"
// @Router       /appointment/{id} [patch]
func RescheduleAppointment(c *gin.Context) {
	var req rescheduleRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	actor, ok := resolveActor(c, db)
	if !ok {
		return
	}
	appt, ok := fetchAppointmentByID(c, db)
	if !ok {
		return
	}

	// Only the owning patient or an admin may move a booking.
	if actor.RoleID != model.RoleAdmin && actor.UserID != appt.PatientID {
		util.CallForbiddenError(c, util.APIErrorParams{
			Msg: "You are not allowed to reschedule this appointment",
			Err: model.ErrForbidden,
		})
		return
	}

	if err := model.RescheduleAppointment(db, appt, req.AppointmentDate, req.TimeSlot); err != nil {
		respondBookingError(c, "Failed to reschedule appointment", err)
		return
	}

	util.LogAppointmentEvent(util.EventAppointmentRebooked, actor.UserID, c.ClientIP(), appt.Reference,
		fmt.Sprintf("Appointment rescheduled to %s %s", appt.AppointmentDate, appt.TimeSlot))
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment rescheduled", Data: appt})
}

// UpdateAppointmentStatus godoc
// @Summary      Update appointment status
// @Description  Drive the appointment workflow. Doctors confirm, complete, or cancel their own appointments; patients may cancel their own; admins may do anything legal. Illegal transitions are rejected regardless of role.
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Param        request body statusUpdateRequest true "Target status and optional clinical fields"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Status updated"
// @Failure      400 {object} util.APIResponse "Invalid transition"
// @Failure      403 {object} util.APIResponse "Actor not allowed"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointment/{id}/status [patch]
func UpdateAppointmentStatus(c *gin.Context) {
	var req statusUpdateRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	actor, ok := resolveActor(c, db)
	if !ok {
		return
	}
	appt, ok := fetchAppointmentByID(c, db)
	if !ok {
		return
	}

	update := model.StatusUpdate{
		Status:       model.AppointmentStatus(req.Status),
		DoctorNotes:  req.DoctorNotes,
		Prescription: req.Prescription,
		Diagnosis:    req.Diagnosis,
	}
	if err := model.TransitionStatus(db, appt, actor, update); err != nil {
		respondBookingError(c, "Failed to update appointment status", err)
		return
	}

	util.LogAppointmentEvent(util.EventAppointmentStatus, actor.UserID, c.ClientIP(), appt.Reference,
		fmt.Sprintf("Appointment status changed to %s", appt.Status))
	notifyStatusUpdate(db, appt)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment status updated", Data: appt})
}

// CancelAppointment godoc
// @Summary      Cancel an appointment
// @Description  Shortcut for a cancelled status transition. Frees the slot for rebooking.
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment cancelled"
// @Failure      400 {object} util.APIResponse "Appointment already completed or cancelled"
// @Failure      403 {object} util.APIResponse "Not your appointment"
// @Router       /appointment/{id} [delete]
func CancelAppointment(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	actor, ok := resolveActor(c, db)
	if !ok {
		return
	}
	appt, ok := fetchAppointmentByID(c, db)
	if !ok {
		return
	}

	if err := model.TransitionStatus(db, appt, actor, model.StatusUpdate{Status: model.StatusCancelled}); err != nil {
		respondBookingError(c, "Failed to cancel appointment", err)
		return
	}

	util.LogAppointmentEvent(util.EventAppointmentStatus, actor.UserID, c.ClientIP(), appt.Reference,
		"Appointment cancelled")
	notifyStatusUpdate(db, appt)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment cancelled", Data: appt})
}

// AppointmentStats godoc
// @Summary      Appointment statistics (admin only)
// @Description  Totals per status plus counts for today and the current month.
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=object} "Statistics retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment/stats [get]
func AppointmentStats(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	byStatus := map[string]int64{}
	for _, status := range []model.AppointmentStatus{
		model.StatusPending, model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled,
	} {
		var n int64
		if err := db.Model(&model.Appointment{}).Where("status = ?", status).Count(&n).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to compute statistics", Err: err})
			return
		}
		byStatus[string(status)] = n
	}

	now := time.Now()
	today := now.Format(model.DateLayout)
	monthPrefix := now.Format("2006-01") + "%"

	var total, todayCount, monthCount int64
	if err := db.Model(&model.Appointment{}).Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to compute statistics", Err: err})
		return
	}
	if err := db.Model(&model.Appointment{}).Where("appointment_date = ?", today).Count(&todayCount).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to compute statistics", Err: err})
		return
	}
	if err := db.Model(&model.Appointment{}).Where("appointment_date LIKE ?", monthPrefix).Count(&monthCount).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to compute statistics", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Statistics retrieved",
		Data: map[string]interface{}{
			"total":      total,
			"by_status":  byStatus,
			"today":      todayCount,
			"this_month": monthCount,
		},
	})
}
