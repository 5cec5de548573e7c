package domain

import "context"

// Attendee is one registrant embedded in an event document, keyed by email.
// The passcode doubles as the organizer view's search/sort key and the manual
// check-in key. IsAttended is mutated by the check-in flow, not by this core.
// swagger:model Attendee
type Attendee struct {
	Name       string `json:"name" firestore:"name"`
	Email      string `json:"email" firestore:"email"`
	Passcode   string `json:"passcode" firestore:"passcode"`
	IsAttended bool   `json:"is_attended" firestore:"isAttended"`
}

// RegistrationService orchestrates attendee self-registration.
type RegistrationService interface {
	// RegisterAttendee validates against the current event state, appends the
	// attendee, and dispatches the confirmation email. It returns the created
	// attendee (with passcode) on success, ErrNotFound for an unknown event,
	// ErrAlreadyRegistered for a duplicate email, and ErrRegistrationClosed
	// when the event's registration gate is set.
	RegisterAttendee(ctx context.Context, eventID, name, email string) (*Attendee, error)
}
