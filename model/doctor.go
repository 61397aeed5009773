package model

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Doctor represents a doctor profile
// @Description Doctor profile and advertised weekly availability
type Doctor struct {
	gorm.Model
	UserID          uint           `json:"user_id" gorm:"column:user_id;uniqueIndex;not null" example:"4"`
	Specialization  string         `json:"specialization" gorm:"column:specialization;type:varchar(191)" example:"Cardiology"`
	LicenseNumber   string         `json:"license_number" gorm:"column:license_number;type:varchar(64);uniqueIndex" example:"BMDC-12345"`
	ConsultationFee int            `json:"consultation_fee" gorm:"column:consultation_fee;default:0" example:"800"`
	Biography       string         `json:"biography" gorm:"column:biography;type:text" example:"15 years in interventional cardiology"`
	IsApproved      bool           `json:"is_approved" gorm:"column:is_approved;default:false" example:"false"`
	// AvailableTimeslots maps lowercase weekday names to bookable slots,
	// e.g. {"monday": ["10:00-11:00", "11:00-12:00"]}.
	AvailableTimeslots datatypes.JSON `json:"available_timeslots" gorm:"column:available_timeslots;type:json"`
}

// WeeklyAvailability decodes the stored availability JSON. An empty column
// decodes to an empty map, meaning the doctor advertises no slots.
func (d *Doctor) WeeklyAvailability() (map[string][]string, error) {
	slots := map[string][]string{}
	if len(d.AvailableTimeslots) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(d.AvailableTimeslots, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// SlotsForDate returns the slots the doctor advertises on the weekday of
// the given date, regardless of existing bookings.
func (d *Doctor) SlotsForDate(date time.Time) ([]string, error) {
	weekly, err := d.WeeklyAvailability()
	if err != nil {
		return nil, err
	}
	return weekly[strings.ToLower(date.Weekday().String())], nil
}
