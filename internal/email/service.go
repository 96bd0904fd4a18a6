package email

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/clinicore/clinic-api/internal/config"
)

// Service sends transactional mail for clinic lifecycle decisions.
type Service interface {
	SendClinicApproved(to, clinicName string) error
	SendClinicRejected(to, clinicName, reason string) error
	SendClinicSuspended(to, clinicName, reason string) error
}

type service struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

func NewService(cfg *config.SMTPConfig, logger zerolog.Logger) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger.With().Str("service", "email").Logger(),
	}
}

func (s *service) SendClinicApproved(to, clinicName string) error {
	body := fmt.Sprintf("Your clinic %q has been approved. You can now sign in and start using your account.", clinicName)
	return s.send(to, "Clinic registration approved", body)
}

func (s *service) SendClinicRejected(to, clinicName, reason string) error {
	body := fmt.Sprintf("Your clinic %q registration was rejected.", clinicName)
	if reason != "" {
		body += fmt.Sprintf(" Reason: %s", reason)
	}
	return s.send(to, "Clinic registration rejected", body)
}

func (s *service) SendClinicSuspended(to, clinicName, reason string) error {
	body := fmt.Sprintf("Your clinic %q has been suspended.", clinicName)
	if reason != "" {
		body += fmt.Sprintf(" Reason: %s", reason)
	}
	return s.send(to, "Clinic suspended", body)
}

func (s *service) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
