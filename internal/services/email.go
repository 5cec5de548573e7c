package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventtiz/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and
// template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRegistrationConfirmation sends the attendee's passcode email using the
// "registration" template and the given data.
func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("registration", data)
	if err != nil {
		return fmt.Errorf("failed to render registration template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send registration email: %w", err)
	}
	s.logger.InfoContext(ctx, "registration email sent", "email", data.Email, "event", data.Title)
	return nil
}
