package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "eventtiz/internal/delivery/http/helpers"
	"eventtiz/internal/domain"
)

// RegisterAttendeeRequest is the request body for POST /events/{eventID}/registrations.
type RegisterAttendeeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate implements Validator.
func (r RegisterAttendeeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(strings.TrimSpace(r.Email)) {
		errs = append(errs, "invalid email format")
	}
	return errs
}

// RegisterAttendeeSuccessResponse is the success response envelope for POST /events/{eventID}/registrations (201).
type RegisterAttendeeSuccessResponse struct {
	Data  *domain.Attendee `json:"data"`
	Error *h.APIError      `json:"error"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// RegisterAttendee godoc
// @Summary Register an attendee for an event
// @Description Public self-registration. Appends the attendee with a generated passcode and emails the passcode. A duplicate email or a closed registration gate is rejected.
// @Tags registration
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param body body RegisterAttendeeRequest true "Attendee name and email"
// @Success 201 {object} controllers.RegisterAttendeeSuccessResponse "data contains the attendee with passcode"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered) or registration_closed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) RegisterAttendee(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req RegisterAttendeeRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	attendee, err := c.Service.RegisterAttendee(r.Context(), eventID, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrAlreadyRegistered):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "email already registered for this event")
		case errors.Is(err, domain.ErrRegistrationClosed):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeRegistrationClosed, "registration is closed for this event")
		case errors.Is(err, domain.ErrInvalidInput):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		}
		return
	}

	h.WriteJSONSuccess(w, http.StatusCreated, attendee)
}
