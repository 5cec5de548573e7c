package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData holds data for the registration-confirmation email.
// Time is already 12-hour formatted. FlierImage is the embedded image payload
// (a fixed placeholder, not the event's flier); FlierURL carries the event
// flier as link text.
type RegistrationEmailData struct {
	Name        string
	Email       string
	Title       string
	Time        string
	Date        string
	Note        string
	Description string
	Passcode    string
	FlierImage  string
	FlierURL    string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationEmailData) error
}
