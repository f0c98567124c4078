package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "campuscoins/internal/delivery/http/helpers"
	"campuscoins/internal/domain"
)

// AdjustCoinsRequest is the request body for POST /coins/manage.
// Amount is the positive magnitude; type selects add or subtract.
type AdjustCoinsRequest struct {
	StudentID string `json:"student_id"`
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
	Type      string `json:"type"` // "manual_add" or "manual_subtract"
}

// Validate implements Validator.
func (a AdjustCoinsRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.StudentID) == "" {
		errs = append(errs, "student_id is required")
	}
	if a.Amount <= 0 {
		errs = append(errs, "amount must be positive")
	}
	if strings.TrimSpace(a.Reason) == "" {
		errs = append(errs, "reason is required")
	}
	if a.Type != domain.CoinTypeManualAdd && a.Type != domain.CoinTypeManualSubtract {
		errs = append(errs, "type must be \"manual_add\" or \"manual_subtract\"")
	}
	return errs
}

type CoinController struct {
	Logger *slog.Logger
	Ledger domain.CoinLedgerService
}

func NewCoinController(logger *slog.Logger, ledger domain.CoinLedgerService) *CoinController {
	return &CoinController{
		Logger: logger,
		Ledger: ledger,
	}
}

// Adjust godoc
// @Summary Adjust a student's coin balance
// @Description Applies a manual add or subtract and appends the audit entry. Admin only. Subtracting below zero is rejected.
// @Tags coins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AdjustCoinsRequest true "Adjustment"
// @Success 200 {object} helpers.APIResponse "data contains the history entry with previous and new balance"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (insufficient balance)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /coins/manage [post]
func (c *CoinController) Adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustCoinsRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	entry, err := c.Ledger.ApplyAdjustment(r.Context(), actor, req.StudentID, req.Amount, req.Reason, req.Type)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, entry)
}

// History godoc
// @Summary Get a student's coin history
// @Description Returns the student's coin history, newest first. Admin only. Optional limit query parameter.
// @Tags coins
// @Produce json
// @Security BearerAuth
// @Param studentID path string true "Student ID"
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {object} helpers.APIResponse "data contains the history entries"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /coins/history/{studentID} [get]
func (c *CoinController) History(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("studentID")
	if studentID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing studentID")
		return
	}
	actor, ok := requireActor(w, r.Context())
	if !ok {
		return
	}
	limit := h.QueryIntDefault(r, "limit", 0)
	entries, err := c.Ledger.HistoryForStudent(r.Context(), actor, studentID, limit)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, entries)
}
