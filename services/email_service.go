// File: /services/email_service.go
package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"eventdojo-api/config"
)

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// SendWelcomeEmail greets a newly registered user. Callers treat failures as
// non-fatal; registration must succeed even when SMTP is down.
func (es *EmailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(es.config.FromEmail, es.config.FromName))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to EventDojo")

	body := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your account is ready. Browse what's on tonight, RSVP to events
		you care about and keep your own list of favorites.</p>
		<p>See you out there!</p>
	`, name)
	m.SetBody("text/html", body)

	return es.dialer.DialAndSend(m)
}
