package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventtiz/internal/delivery/http/controllers"
	"eventtiz/internal/delivery/http/middleware"
	"eventtiz/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Organizer routes require a Bearer token; the registration routes are public.
func NewRouter(
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Organizer event routes
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", requireAuth(eventController.ListEvents))
	mux.HandleFunc("GET /events/stream", requireAuth(eventController.StreamEvents))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(eventController.GetEvent))
	mux.HandleFunc("POST /events/{eventID}/disable-registration", requireAuth(eventController.DisableRegistration))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.DeleteEvent))

	// Public registration routes
	mux.HandleFunc("GET /register/{slug}", eventController.GetEventBySlug)
	mux.HandleFunc("POST /events/{eventID}/registrations", registrationController.RegisterAttendee)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
