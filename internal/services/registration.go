package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"eventtiz/internal/domain"
	"eventtiz/internal/ident"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// placeholderFlierImage is the inline image embedded in every confirmation
// email, kept small so the message renders without fetching anything.
const placeholderFlierImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

type registrationService struct {
	eventRepo      domain.EventRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRegistrationService creates a RegistrationService backed by the given
// event repository. Confirmation emails are sent through emailService on a
// best-effort basis.
func NewRegistrationService(eventRepo domain.EventRepository, emailService domain.EmailService, logger *slog.Logger, timeout time.Duration) domain.RegistrationService {
	return &registrationService{
		eventRepo:      eventRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *registrationService) RegisterAttendee(ctx context.Context, eventID, name, email string) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	// An email already on the list reports the duplicate even when the gate
	// has since closed.
	if event.HasAttendee(email) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, email)
	}
	if event.DisableRegistration {
		return nil, fmt.Errorf("%w: event %s", domain.ErrRegistrationClosed, eventID)
	}

	passcode, err := ident.NewPasscode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate passcode: %w", err)
	}
	attendee := &domain.Attendee{
		Name:     name,
		Email:    email,
		Passcode: passcode,
	}
	if err := s.eventRepo.AppendAttendee(ctx, eventID, *attendee); err != nil {
		return nil, fmt.Errorf("failed to append attendee: %w", err)
	}

	// The attendee record is committed at this point, so an email failure
	// must not fail the registration.
	if err := s.sendConfirmation(ctx, event, attendee); err != nil {
		s.logger.ErrorContext(ctx, "failed to send confirmation email", "error", err, "email", email, "event_id", eventID)
	}

	return attendee, nil
}

func (s *registrationService) sendConfirmation(ctx context.Context, event *domain.Event, attendee *domain.Attendee) error {
	eventTime, err := ident.To12Hour(event.Time)
	if err != nil {
		eventTime = event.Time
	}
	flierURL := event.FlierURL
	if flierURL == "" {
		flierURL = "No flier for this event"
	}
	return s.emailService.SendRegistrationConfirmation(ctx, &domain.RegistrationEmailData{
		Name:        attendee.Name,
		Email:       attendee.Email,
		Title:       event.Title,
		Time:        eventTime,
		Date:        event.Date,
		Note:        event.Note,
		Description: event.Description,
		Passcode:    attendee.Passcode,
		FlierImage:  placeholderFlierImage,
		FlierURL:    flierURL,
	})
}
