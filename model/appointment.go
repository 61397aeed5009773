package model

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the wire and storage format of appointment dates.
const DateLayout = "2006-01-02"

// AppointmentStatus enumerates the appointment lifecycle states.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// slotClaimActive is the marker stored in SlotClaim while an appointment
// holds its slot. Completed and cancelled rows carry NULL instead, and NULLs
// never collide in the unique index, so uniqueness is scoped to active
// statuses only.
const slotClaimActive = "active"

// Booking and workflow errors. Endpoints map these onto HTTP statuses; none
// are recovered silently.
var (
	ErrInvalidDate       = errors.New("appointment date is in the past")
	ErrSlotUnavailable   = errors.New("time slot is not offered by the doctor")
	ErrSlotConflict      = errors.New("time slot is already booked")
	ErrInvalidTransition = errors.New("invalid appointment status transition")
	ErrForbidden         = errors.New("actor is not allowed to perform this status change")
	ErrDoctorNotFound    = errors.New("doctor not found or not approved")
)

// Appointment represents a booked visit
// @Description Appointment record with status workflow
type Appointment struct {
	gorm.Model
	Reference       string            `json:"reference" gorm:"column:reference;type:varchar(36);uniqueIndex" example:"8e5a87d4-30f1-4f7c-9e53-1f2a45f7a9b1"`
	PatientID       uint              `json:"patient_id" gorm:"column:patient_id;index;not null" example:"7"`
	DoctorID        uint              `json:"doctor_id" gorm:"column:doctor_id;uniqueIndex:uniq_active_slot;not null" example:"1"`
	AppointmentDate string            `json:"appointment_date" gorm:"column:appointment_date;type:varchar(10);uniqueIndex:uniq_active_slot;index;not null" example:"2025-01-25"`
	TimeSlot        string            `json:"time_slot" gorm:"column:time_slot;type:varchar(20);uniqueIndex:uniq_active_slot;not null" example:"10:00-11:00"`
	Status          AppointmentStatus `json:"status" gorm:"column:status;type:varchar(16);index;default:pending" example:"pending"`
	Symptoms        string            `json:"symptoms" gorm:"column:symptoms;type:text" example:"Chest pain when climbing stairs"`
	Notes           string            `json:"notes" gorm:"column:notes;type:text" example:"Prefers morning visits"`
	DoctorNotes     string            `json:"doctor_notes" gorm:"column:doctor_notes;type:text"`
	Prescription    string            `json:"prescription" gorm:"column:prescription;type:text"`
	Diagnosis       string            `json:"diagnosis" gorm:"column:diagnosis;type:text"`
	// SlotClaim is "active" for pending/confirmed rows and NULL otherwise.
	// It is the fourth column of the uniq_active_slot index and never set
	// by callers directly.
	SlotClaim *string `json:"-" gorm:"column:slot_claim;type:varchar(8);uniqueIndex:uniq_active_slot"`
}

// IsActive reports whether the appointment currently occupies its slot.
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// BookingRequest carries the patient's booking intent into BookAppointment.
type BookingRequest struct {
	PatientID uint
	DoctorID  uint
	Date      string
	TimeSlot  string
	Symptoms  string
	Notes     string
}

// Actor identifies who is attempting a workflow action. DoctorID is zero
// unless the actor holds the doctor role.
type Actor struct {
	UserID   uint
	RoleID   uint32
	DoctorID uint
}

// StatusUpdate carries optional clinical fields set alongside a transition.
type StatusUpdate struct {
	Status       AppointmentStatus
	DoctorNotes  string
	Prescription string
	Diagnosis    string
}

// transitions lists the legal status moves. Everything absent is rejected.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether moving from one status to another is legal,
// independent of who asks.
func CanTransition(from, to AppointmentStatus) bool {
	return slices.Contains(transitions[from], to)
}

// allowedActor reports whether the actor may drive the appointment to the
// target status. Confirm and complete are doctor-owner/admin actions;
// cancellation is additionally open to the owning patient.
func allowedActor(appt *Appointment, actor Actor, to AppointmentStatus) bool {
	if actor.RoleID == RoleAdmin {
		return true
	}
	if actor.RoleID == RoleDoctor && actor.DoctorID != 0 && actor.DoctorID == appt.DoctorID {
		return true
	}
	if to == StatusCancelled && actor.RoleID == RolePatient && actor.UserID == appt.PatientID {
		return true
	}
	return false
}

// ParseAppointmentDate validates the wire format and rejects dates before
// today. Same-day bookings are allowed.
func ParseAppointmentDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// BookAppointment validates a booking request against the doctor's
// advertised availability and inserts the appointment in pending state.
// The conflict check is not read-then-write: the insert itself is the
// check, backed by the uniq_active_slot index, so concurrent bookings of
// the same slot cannot both succeed.
func BookAppointment(db *gorm.DB, req BookingRequest) (*Appointment, error) {
	date, err := ParseAppointmentDate(req.Date)
	if err != nil {
		return nil, err
	}

	var doctor Doctor
	if err := db.Where("id = ? AND is_approved = ?", req.DoctorID, true).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	offered, err := doctor.SlotsForDate(date)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(offered, req.TimeSlot) {
		return nil, ErrSlotUnavailable
	}

	claim := slotClaimActive
	appt := Appointment{
		Reference:       uuid.NewString(),
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: date.Format(DateLayout),
		TimeSlot:        req.TimeSlot,
		Status:          StatusPending,
		Symptoms:        req.Symptoms,
		Notes:           req.Notes,
		SlotClaim:       &claim,
	}
	if err := db.Create(&appt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlotConflict
		}
		return nil, err
	}
	return &appt, nil
}

// RescheduleAppointment moves a pending appointment to a new date/slot after
// re-validating availability. The slot claim travels with the update, so a
// conflicting target slot fails on the unique index exactly like a booking.
func RescheduleAppointment(db *gorm.DB, appt *Appointment, newDate, newSlot string) error {
	if appt.Status != StatusPending {
		return ErrInvalidTransition
	}

	date, err := ParseAppointmentDate(newDate)
	if err != nil {
		return err
	}

	var doctor Doctor
	if err := db.First(&doctor, appt.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDoctorNotFound
		}
		return err
	}
	offered, err := doctor.SlotsForDate(date)
	if err != nil {
		return err
	}
	if !slices.Contains(offered, newSlot) {
		return ErrSlotUnavailable
	}

	appt.AppointmentDate = date.Format(DateLayout)
	appt.TimeSlot = newSlot
	if err := db.Save(appt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlotConflict
		}
		return err
	}
	return nil
}

// TransitionStatus applies a workflow move on behalf of an actor. Legality
// is checked before permission, so an impossible move reports
// ErrInvalidTransition even to an admin. Moves out of the active set clear
// the slot claim in the same write, freeing the slot atomically.
func TransitionStatus(db *gorm.DB, appt *Appointment, actor Actor, update StatusUpdate) error {
	if !CanTransition(appt.Status, update.Status) {
		return ErrInvalidTransition
	}
	if !allowedActor(appt, actor, update.Status) {
		return ErrForbidden
	}

	appt.Status = update.Status
	if !appt.IsActive() {
		appt.SlotClaim = nil
	}
	if update.DoctorNotes != "" {
		appt.DoctorNotes = update.DoctorNotes
	}
	if update.Prescription != "" {
		appt.Prescription = update.Prescription
	}
	if update.Diagnosis != "" {
		appt.Diagnosis = update.Diagnosis
	}

	// Save writes status and slot_claim in one UPDATE.
	return db.Save(appt).Error
}

// AvailableSlots returns the doctor's advertised slots for a date minus the
// ones held by active appointments.
func AvailableSlots(db *gorm.DB, doctor *Doctor, date time.Time) ([]string, error) {
	offered, err := doctor.SlotsForDate(date)
	if err != nil {
		return nil, err
	}
	if len(offered) == 0 {
		return []string{}, nil
	}

	var booked []string
	err = db.Model(&Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND status IN ?",
			doctor.ID, date.Format(DateLayout), []AppointmentStatus{StatusPending, StatusConfirmed}).
		Pluck("time_slot", &booked).Error
	if err != nil {
		return nil, err
	}

	free := make([]string, 0, len(offered))
	for _, slot := range offered {
		if !slices.Contains(booked, slot) {
			free = append(free, slot)
		}
	}
	return free, nil
}

// AppointmentsForReminder returns confirmed appointments on the given date.
// The reminder scheduler calls this with tomorrow's date.
func AppointmentsForReminder(db *gorm.DB, date string) ([]Appointment, error) {
	var appts []Appointment
	err := db.Where("appointment_date = ? AND status = ?", date, StatusConfirmed).
		Find(&appts).Error
	return appts, err
}
