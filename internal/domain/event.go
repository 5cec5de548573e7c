package domain

import "context"

// Event is an organizer-owned event document with its embedded attendee list.
// Field names mirror the stored document.
// swagger:model Event
type Event struct {
	ID                  string     `json:"id" firestore:"-"`
	OwnerID             string     `json:"owner_id" firestore:"user_id"`
	Title               string     `json:"title" firestore:"title"`
	Date                string     `json:"date" firestore:"date"`
	Time                string     `json:"time" firestore:"time"`
	Venue               string     `json:"venue" firestore:"venue"`
	Description         string     `json:"description" firestore:"description"`
	Note                string     `json:"note" firestore:"note"`
	Slug                string     `json:"slug" firestore:"slug"`
	FlierURL            string     `json:"flier_url,omitempty" firestore:"flier_url,omitempty"`
	DisableRegistration bool       `json:"disable_registration" firestore:"disableRegistration"`
	Attendees           []Attendee `json:"attendees" firestore:"attendees"`
}

// NewEvent returns an Event ready for creation: empty attendee list, open
// registration, slug derived by the caller. ID is set by the repository.
func NewEvent(ownerID, title, date, timeOfDay, venue, description, note, slug string) *Event {
	return &Event{
		OwnerID:     ownerID,
		Title:       title,
		Date:        date,
		Time:        timeOfDay,
		Venue:       venue,
		Description: description,
		Note:        note,
		Slug:        slug,
		Attendees:   []Attendee{},
	}
}

// HasAttendee reports whether an attendee with the exact email (case-sensitive)
// is already on the list.
func (e *Event) HasAttendee(email string) bool {
	for _, a := range e.Attendees {
		if a.Email == email {
			return true
		}
	}
	return false
}

// EventSubscription is a live, owner-filtered view of events. The caller owns
// the subscription and must call Close to release the underlying listener.
type EventSubscription interface {
	// Events yields a full refreshed snapshot list on every change in the
	// store. The channel is closed after Close or on a terminal stream error.
	Events() <-chan []*Event
	// Err returns the terminal error, if any, once Events is closed.
	Err() error
	Close()
}

// EventRepository defines the document-store operations for events.
type EventRepository interface {
	// Create persists the event and sets its store-assigned ID.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	// SetFlierURL patches flier_url on an existing document.
	SetFlierURL(ctx context.Context, id, url string) error
	// Disable atomically sets disableRegistration=true and rewrites the slug.
	Disable(ctx context.Context, id, expiredSlug string) error
	// AppendAttendee appends via a set-union array update so concurrent
	// appends are never lost.
	AppendAttendee(ctx context.Context, id string, attendee Attendee) error
	Delete(ctx context.Context, id string) error
	// Watch opens a live query over the owner's events.
	Watch(ctx context.Context, ownerID string) (EventSubscription, error)
}

// FlierStore stores one flier image per event, addressed by event ID.
type FlierStore interface {
	// Upload stores inline data-URL encoded image data and returns a
	// fetchable URL.
	Upload(ctx context.Context, eventID, dataURL string) (string, error)
	// Delete removes the flier; a missing object is not an error.
	Delete(ctx context.Context, eventID string) error
}

// CreateEventInput carries the organizer-supplied fields for a new event.
type CreateEventInput struct {
	Title       string
	Date        string
	Time        string
	Venue       string
	Description string
	Note        string
	// Flier is an optional inline data URL (e.g. "data:image/png;base64,...").
	Flier string
}

// EventService defines the event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, ownerID string, input CreateEventInput) (*Event, error)
	GetEvent(ctx context.Context, eventID, ownerID string) (*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	ListEvents(ctx context.Context, ownerID string) ([]*Event, error)
	WatchEvents(ctx context.Context, ownerID string) (EventSubscription, error)
	DisableRegistration(ctx context.Context, eventID, ownerID string) error
	DeleteEvent(ctx context.Context, eventID, ownerID string) error
}
