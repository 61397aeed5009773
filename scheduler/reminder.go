package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/rakibhasan/carebook/config"
	"github.com/rakibhasan/carebook/model"
	"github.com/rakibhasan/carebook/util"
)

// reminderDedupeTTL keeps the Redis dedupe marker alive long enough to cover
// every polling pass before the appointment day ends.
const reminderDedupeTTL = 48 * time.Hour

// Scheduler runs periodic background work: appointment reminders each tick
// and monthly doctor reports on the first pass of a new month.
type Scheduler struct {
	db       *gorm.DB
	interval time.Duration
	logger   *log.Logger

	// lastReportMonth is the month ("2006-01") whose rollover has already
	// triggered a report pass.
	lastReportMonth string

	mu sync.Mutex
	// reminded maps appointment ID to the date last reminded. Used as the
	// dedupe fallback when Redis is not configured.
	reminded map[uint]string
}

// New creates a scheduler polling at the given interval.
func New(db *gorm.DB, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		db:              db,
		interval:        interval,
		logger:          log.New(log.Writer(), "[SCHEDULER] ", log.LstdFlags),
		lastReportMonth: time.Now().Format("2006-01"),
		reminded:        map[uint]string{},
	}
}

// Run blocks until the context is cancelled, executing a reminder pass on
// every tick. Intended to be started in its own goroutine from main.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Printf("started, polling every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Printf("stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			if reports, err := s.runMonthlyReports(time.Now()); err != nil {
				s.logger.Printf("monthly report pass failed: %v", err)
			} else {
				for _, r := range reports {
					s.logger.Printf("report %s doctor=%d total=%d completed=%d cancelled=%d patients=%d earnings=%d",
						r.Month, r.DoctorID, r.Total, r.Completed, r.Cancelled, r.DistinctPatients, r.Earnings)
				}
			}
			if n, err := s.RunReminderPass(ctx); err != nil {
				s.logger.Printf("reminder pass failed: %v", err)
			} else if n > 0 {
				s.logger.Printf("sent %d reminders", n)
			}
		}
	}
}

// RunReminderPass finds confirmed appointments dated tomorrow and emails the
// patient for each one not already reminded. Returns the number of reminders
// sent.
func (s *Scheduler) RunReminderPass(ctx context.Context) (int, error) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(model.DateLayout)
	appts, err := model.AppointmentsForReminder(s.db, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("failed to load appointments for %s: %w", tomorrow, err)
	}

	sent := 0
	for _, appt := range appts {
		if !s.claimReminder(ctx, appt.ID, appt.AppointmentDate) {
			continue
		}
		if err := s.sendReminder(&appt); err != nil {
			s.logger.Printf("reminder for appointment %d failed: %v", appt.ID, err)
			continue
		}
		util.LogAppointmentEvent(util.EventReminderSent, appt.PatientID, "", appt.Reference,
			fmt.Sprintf("Reminder sent for %s %s", appt.AppointmentDate, appt.TimeSlot))
		sent++
	}
	return sent, nil
}

// claimReminder marks the appointment as reminded via Redis SETNX so repeated
// passes and multiple instances stay idempotent. Without Redis the claim
// falls back to an in-process map, which keeps a single instance to one send
// per appointment day.
func (s *Scheduler) claimReminder(ctx context.Context, appointmentID uint, date string) bool {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return s.claimLocally(appointmentID, date)
	}
	key := fmt.Sprintf("reminder:%d", appointmentID)
	ok, err := rdb.SetNX(ctx, key, "1", reminderDedupeTTL).Result()
	if err != nil {
		s.logger.Printf("reminder dedupe check failed for %d: %v", appointmentID, err)
		return false
	}
	return ok
}

func (s *Scheduler) claimLocally(appointmentID uint, date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reminded[appointmentID] == date {
		return false
	}
	// Entries for other dates are stale, drop them so the map stays small.
	for id, d := range s.reminded {
		if d != date {
			delete(s.reminded, id)
		}
	}
	s.reminded[appointmentID] = date
	return true
}

// runMonthlyReports aggregates the previous month's per-doctor reports once
// the wall clock rolls into a new month. Off-rollover ticks return nothing.
func (s *Scheduler) runMonthlyReports(now time.Time) ([]DoctorReport, error) {
	current := now.Format("2006-01")
	if s.lastReportMonth == current {
		return nil, nil
	}
	s.lastReportMonth = current
	previous := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	return MonthlyReports(s.db, previous)
}

func (s *Scheduler) sendReminder(appt *model.Appointment) error {
	var patient model.User
	if err := s.db.First(&patient, appt.PatientID).Error; err != nil {
		return fmt.Errorf("failed to load patient %d: %w", appt.PatientID, err)
	}
	return util.SendAppointmentReminder(patient.Email, patient.Name, appt.AppointmentDate, appt.TimeSlot)
}
