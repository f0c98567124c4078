package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "campuscoins/internal/delivery/http/helpers"
	"campuscoins/internal/domain"
)

type AdminController struct {
	Logger  *slog.Logger
	Service domain.AdminService
}

func NewAdminController(logger *slog.Logger, svc domain.AdminService) *AdminController {
	return &AdminController{
		Logger:  logger,
		Service: svc,
	}
}

// Dashboard godoc
// @Summary Get dashboard statistics
// @Description Returns totals for students, events, upcoming events, coins distributed through wins, and coins currently held. Admin only.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the dashboard stats"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/dashboard [get]
func (c *AdminController) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	stats, err := c.Service.DashboardStats(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, stats)
}

// ListStudents godoc
// @Summary List all students
// @Description Returns all student accounts. Admin only.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the student list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/students [get]
func (c *AdminController) ListStudents(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	students, err := c.Service.ListStudents(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, students)
}

// SearchStudents godoc
// @Summary Search students
// @Description Searches students by name, email, or roll number, with optional coin and participation range filters. Each result includes registrations and recent coin history. Admin only.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param q query string false "Matches name, email, or roll number"
// @Param min_coins query int false "Minimum coin balance"
// @Param max_coins query int false "Maximum coin balance"
// @Param min_events query int false "Minimum events participated"
// @Param max_events query int false "Maximum events participated"
// @Success 200 {object} helpers.APIResponse "data contains matching students with details"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/students/search [get]
func (c *AdminController) SearchStudents(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	filter := domain.StudentFilter{
		Search:    strings.TrimSpace(r.URL.Query().Get("q")),
		MinCoins:  h.QueryInt(r, "min_coins"),
		MaxCoins:  h.QueryInt(r, "max_coins"),
		MinEvents: h.QueryInt(r, "min_events"),
		MaxEvents: h.QueryInt(r, "max_events"),
	}
	students, err := c.Service.SearchStudents(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, students)
}

// GetStudent godoc
// @Summary Get a student by ID
// @Description Returns the student with registrations and recent coin history. Admin only.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param studentID path string true "Student ID"
// @Success 200 {object} helpers.APIResponse "data contains the student details"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/students/{studentID} [get]
func (c *AdminController) GetStudent(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("studentID")
	if studentID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing studentID")
		return
	}
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	details, err := c.Service.GetStudent(r.Context(), actor, studentID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, details)
}
