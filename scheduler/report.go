package scheduler

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rakibhasan/carebook/model"
)

// DoctorReport aggregates one doctor's appointment activity for a month.
type DoctorReport struct {
	DoctorID         uint   `json:"doctor_id"`
	Month            string `json:"month"`
	Total            int64  `json:"total"`
	Completed        int64  `json:"completed"`
	Cancelled        int64  `json:"cancelled"`
	DistinctPatients int64  `json:"distinct_patients"`
	// Earnings is completed visits times the doctor's current consultation fee.
	Earnings int64 `json:"earnings"`
}

// MonthlyReports aggregates per-doctor appointment counts for the month
// containing the given time. Doctors with no appointments that month are
// omitted.
func MonthlyReports(db *gorm.DB, month time.Time) ([]DoctorReport, error) {
	prefix := month.Format("2006-01")

	type row struct {
		DoctorID  uint
		Total     int64
		Completed int64
		Cancelled int64
		Patients  int64
	}
	var rows []row
	err := db.Model(&model.Appointment{}).
		Select(`doctor_id,
			COUNT(*) AS total,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS cancelled,
			COUNT(DISTINCT patient_id) AS patients`,
			model.StatusCompleted, model.StatusCancelled).
		Where("appointment_date LIKE ?", prefix+"%").
		Group("doctor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly reports: %w", err)
	}

	reports := make([]DoctorReport, 0, len(rows))
	for _, r := range rows {
		report := DoctorReport{
			DoctorID:         r.DoctorID,
			Month:            prefix,
			Total:            r.Total,
			Completed:        r.Completed,
			Cancelled:        r.Cancelled,
			DistinctPatients: r.Patients,
		}
		var doctor model.Doctor
		if err := db.First(&doctor, r.DoctorID).Error; err == nil {
			report.Earnings = r.Completed * int64(doctor.ConsultationFee)
		}
		reports = append(reports, report)
	}
	return reports, nil
}
