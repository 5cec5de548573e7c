package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"eventtiz/internal/domain"
	"eventtiz/internal/ident"
)

type eventService struct {
	eventRepo      domain.EventRepository
	flierStore     domain.FlierStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates an EventService backed by the given event repository
// and flier store.
func NewEventService(eventRepo domain.EventRepository, flierStore domain.FlierStore, logger *slog.Logger, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		flierStore:     flierStore,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// CreateEvent validates the input, persists the event, and then uploads the
// flier if one was supplied. The flier upload runs after the document exists;
// if the upload or the flier_url patch fails the event is kept without a
// flier and the error is only logged.
func (s *eventService) CreateEvent(ctx context.Context, ownerID string, input domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if input.Date == "" {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if _, err := ident.To12Hour(input.Time); err != nil {
		return nil, fmt.Errorf("%w: time must be HH:MM", domain.ErrInvalidInput)
	}
	slug := ident.Slugify(title)
	if slug == "" {
		return nil, fmt.Errorf("%w: title yields an empty slug", domain.ErrInvalidInput)
	}

	event := domain.NewEvent(ownerID, title, input.Date, input.Time, input.Venue, input.Description, input.Note, slug)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if input.Flier != "" {
		url, err := s.flierStore.Upload(ctx, event.ID, input.Flier)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to upload flier", "error", err, "event_id", event.ID)
			return event, nil
		}
		if err := s.eventRepo.SetFlierURL(ctx, event.ID, url); err != nil {
			s.logger.ErrorContext(ctx, "failed to record flier url", "error", err, "event_id", event.ID)
			return event, nil
		}
		event.FlierURL = url
	}

	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	if event.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: event %s", domain.ErrForbidden, eventID)
	}
	return event, nil
}

// GetEventBySlug is the public lookup used by the registration page. It does
// not check ownership.
func (s *eventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get event by slug %q: %w", slug, err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// WatchEvents opens a live subscription over the owner's events. The caller
// must Close the subscription; the service context timeout does not apply.
func (s *eventService) WatchEvents(ctx context.Context, ownerID string) (domain.EventSubscription, error) {
	sub, err := s.eventRepo.Watch(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to watch events: %w", err)
	}
	return sub, nil
}

// DisableRegistration closes the event's registration and rewrites its slug
// to a fresh expired-<n> value so the old registration link stops resolving.
// Calling it on an already-disabled event succeeds and picks a new slug.
func (s *eventService) DisableRegistration(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	if event.OwnerID != ownerID {
		return fmt.Errorf("%w: event %s", domain.ErrForbidden, eventID)
	}

	expiredSlug := fmt.Sprintf("expired-%d", rand.Intn(1_000_000_000))
	if err := s.eventRepo.Disable(ctx, eventID, expiredSlug); err != nil {
		return fmt.Errorf("failed to disable registration: %w", err)
	}
	return nil
}

// DeleteEvent removes the event document and then its flier blob. The blob
// delete is best effort: a failure is logged and the delete still succeeds.
func (s *eventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	if event.OwnerID != ownerID {
		return fmt.Errorf("%w: event %s", domain.ErrForbidden, eventID)
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if err := s.flierStore.Delete(ctx, eventID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete flier", "error", err, "event_id", eventID)
	}
	return nil
}
