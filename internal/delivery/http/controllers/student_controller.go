package controllers

import (
	"log/slog"
	"net/http"

	h "campuscoins/internal/delivery/http/helpers"
	"campuscoins/internal/domain"
)

type StudentController struct {
	Logger  *slog.Logger
	Service domain.StudentService
}

func NewStudentController(logger *slog.Logger, svc domain.StudentService) *StudentController {
	return &StudentController{
		Logger:  logger,
		Service: svc,
	}
}

// Profile godoc
// @Summary Get own profile
// @Description Returns the authenticated student's account, registrations with event details, and recent coin history.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the profile"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /students/profile [get]
func (c *StudentController) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	profile, err := c.Service.Profile(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, profile)
}

// History godoc
// @Summary Get own coin history
// @Description Returns the authenticated student's profile with the full coin history rather than the recent slice.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the profile with full history"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /students/history [get]
func (c *StudentController) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	profile, err := c.Service.History(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, profile)
}
