package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "campuscoins/internal/delivery/http/helpers"
	"campuscoins/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date"`
	Location        string    `json:"location"`
	MaxParticipants int       `json:"max_participants"`
	CoinsAllocated  int       `json:"coins_allocated"`
	NumberOfWinners int       `json:"number_of_winners"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if c.MaxParticipants <= 0 {
		errs = append(errs, "max_participants must be positive")
	}
	if c.CoinsAllocated < 0 {
		errs = append(errs, "coins_allocated must not be negative")
	}
	if c.NumberOfWinners <= 0 {
		errs = append(errs, "number_of_winners must be positive")
	}
	return errs
}

// DeclareWinnersRequest is the request body for POST /events/{eventID}/winners.
type DeclareWinnersRequest struct {
	WinnerIDs []string `json:"winner_ids"`
}

// Validate implements Validator.
func (d DeclareWinnersRequest) Validate() []string {
	var errs []string
	if len(d.WinnerIDs) == 0 {
		errs = append(errs, "winner_ids is required")
	}
	return errs
}

type EventController struct {
	Logger       *slog.Logger
	Events       domain.EventService
	Registration domain.RegistrationService
}

func NewEventController(logger *slog.Logger, events domain.EventService, registration domain.RegistrationService) *EventController {
	return &EventController{
		Logger:       logger,
		Events:       events,
		Registration: registration,
	}
}

// Create godoc
// @Summary Create a new event
// @Description Create an event with a coin pool and a winner slot count. Admin only. Registered students are notified.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	event := &domain.Event{
		Name:            req.Name,
		Description:     req.Description,
		Date:            req.Date,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
		CoinsAllocated:  req.CoinsAllocated,
		NumberOfWinners: req.NumberOfWinners,
	}
	created, err := c.Events.Create(r.Context(), actor, event)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, created)
}

// List godoc
// @Summary List all events
// @Description Returns all events with live registration counts. For students, each event also reports whether the caller is registered.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	events, err := c.Events.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListUpcoming godoc
// @Summary List upcoming events
// @Description Returns upcoming events only (status upcoming, date in the future).
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/upcoming [get]
func (c *EventController) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	events, err := c.Events.ListUpcoming(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get an event by ID
// @Description Returns the event with its live registration count.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	event, err := c.Events.Get(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeclareWinners godoc
// @Summary Declare event winners
// @Description Completes the event and credits each winner an equal share of the coin pool. Admin only. An event can be completed once; winners must hold an active registration. Credits are applied per winner: data.failed lists winner ids whose credit did not apply.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body DeclareWinnersRequest true "Winner student ids"
// @Success 200 {object} helpers.APIResponse "data contains the winner declaration result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already completed, too many winners, or unregistered winner)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/winners [post]
func (c *EventController) DeclareWinners(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req DeclareWinnersRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	decl, err := c.Events.DeclareWinners(r.Context(), actor, eventID, req.WinnerIDs)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, decl)
}

// Register godoc
// @Summary Register for an event
// @Description Registers the authenticated student for the event. Capacity is enforced at commit time.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 201 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (registration closed)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (full or already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/register [post]
func (c *EventController) Register(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	reg, err := c.Registration.Register(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// CancelRegistration godoc
// @Summary Cancel own registration
// @Description Cancels the authenticated student's registration, freeing the slot.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not registered or event completed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/register [delete]
func (c *EventController) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	if err := c.Registration.Cancel(r.Context(), actor, eventID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "registration cancelled"})
}

// ListRegistrations godoc
// @Summary List event registrations
// @Description Returns active registrations with student details. Admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the registration list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [get]
func (c *EventController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	regs, err := c.Registration.ListByEvent(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, regs)
}

// RemoveRegistration godoc
// @Summary Remove a student from an event
// @Description Cancels the given student's registration. Admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param studentID path string true "Student ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations/{studentID} [delete]
func (c *EventController) RemoveRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	studentID := r.PathValue("studentID")
	if eventID == "" || studentID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID or studentID")
		return
	}
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	if err := c.Registration.RemoveStudent(r.Context(), actor, eventID, studentID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "registration removed"})
}
