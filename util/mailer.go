package util

import (
	"fmt"

	gomail "github.com/go-gomail/gomail"

	"github.com/rakibhasan/carebook/config"
)

// MailSender is the slice of gomail.Dialer the mailer needs; tests swap in
// a recorder.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

var (
	mailSender MailSender
	mailFrom   string
)

// InitMailer configures the SMTP dialer from application config. Without
// SMTP settings the mailer stays disabled and send calls are no-ops, so
// reminder runs still complete in environments without mail access.
func InitMailer(cfg *config.Config) {
	if cfg == nil || cfg.SMTPHost == "" {
		return
	}
	mailSender = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	mailFrom = cfg.MailFrom
	if mailFrom == "" {
		mailFrom = cfg.SMTPUser
	}
}

// SetMailSenderForTest injects a mail sender for tests.
func SetMailSenderForTest(s MailSender, from string) {
	mailSender = s
	mailFrom = from
}

// MailerEnabled reports whether a sender is configured.
func MailerEnabled() bool {
	return mailSender != nil
}

func send(to, subject, body string) error {
	if mailSender == nil {
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", mailFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return mailSender.DialAndSend(m)
}

// SendBookingReceived notifies the patient that their booking request was
// recorded and awaits doctor confirmation.
func SendBookingReceived(to, patientName, date, timeSlot, reference string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour appointment request for %s at %s has been received and is pending confirmation.\nBooking reference: %s\n\nCareBook",
		patientName, date, timeSlot, reference,
	)
	return send(to, "Appointment request received", body)
}

// SendStatusUpdate notifies the patient of a confirmed/cancelled/completed
// appointment.
func SendStatusUpdate(to, patientName, date, timeSlot, status string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour appointment on %s at %s is now %s.\n\nCareBook",
		patientName, date, timeSlot, status,
	)
	return send(to, fmt.Sprintf("Appointment %s", status), body)
}

// SendAppointmentReminder is sent by the scheduler the day before a
// confirmed appointment.
func SendAppointmentReminder(to, patientName, date, timeSlot string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nThis is a reminder for your appointment tomorrow, %s at %s.\nPlease arrive 10 minutes early.\n\nCareBook",
		patientName, date, timeSlot,
	)
	return send(to, "Appointment reminder", body)
}
