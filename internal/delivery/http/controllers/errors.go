package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	h "campuscoins/internal/delivery/http/helpers"
	"campuscoins/internal/delivery/http/middleware"
	"campuscoins/internal/domain"
)

// writeServiceError maps service sentinel errors onto the response envelope.
// Unrecognized errors are logged and reported as internal_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAdjustmentKind),
		errors.Is(err, domain.ErrRegistrationClosed):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrStudentNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrEventCompleted),
		errors.Is(err, domain.ErrEventFull),
		errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrNotRegistered),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrTooManyWinners),
		errors.Is(err, domain.ErrUnregisteredWinner):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
	}
}

// requireActor fetches the authenticated actor from the context, writing a 401
// when the middleware did not set one.
func requireActor(w http.ResponseWriter, ctx context.Context) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
	}
	return actor, ok
}
