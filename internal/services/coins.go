package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"campuscoins/internal/domain"
	"campuscoins/internal/metrics"
)

const defaultHistoryLimit = 50

type coinLedgerService struct {
	ledgerRepo domain.CoinLedgerRepository
	notifier   domain.Notifier
	logger     *slog.Logger
}

// NewCoinLedgerService creates the CoinLedgerService. The ledger repository
// is the sole writer of student balances; this service validates input and
// role membership before delegating.
func NewCoinLedgerService(ledgerRepo domain.CoinLedgerRepository, notifier domain.Notifier, logger *slog.Logger) domain.CoinLedgerService {
	return &coinLedgerService{
		ledgerRepo: ledgerRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *coinLedgerService) ApplyAdjustment(ctx context.Context, actor domain.Actor, studentID string, amount int, reason, kind string) (*domain.CoinHistory, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}

	var signed int
	switch kind {
	case domain.CoinTypeManualAdd:
		signed = amount
	case domain.CoinTypeManualSubtract:
		signed = -amount
	default:
		return nil, domain.ErrInvalidAdjustmentKind
	}

	adj := &domain.CoinAdjustment{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Amount:    signed,
		Reason:    reason,
		Type:      kind,
		ChangedBy: actor.ID,
	}
	entry, err := s.ledgerRepo.ApplyAdjustment(ctx, adj)
	if err != nil {
		return nil, err
	}
	metrics.ManualAdjustments.WithLabelValues(kind).Inc()

	verb := "increased"
	if signed < 0 {
		verb = "decreased"
	}
	n := domain.NewNotification(
		studentID,
		"Coin Balance Updated",
		fmt.Sprintf("Your coin balance has been %s by %d. Reason: %s", verb, amount, reason),
		domain.NotificationCoinUpdate,
		nil,
		time.Now(),
	)
	if err := s.notifier.Dispatch(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "balance-change notification failed", "student_id", studentID, "err", err)
	}

	return entry, nil
}

func (s *coinLedgerService) HistoryForStudent(ctx context.Context, actor domain.Actor, studentID string, limit int) ([]*domain.CoinHistory, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := s.ledgerRepo.ListByStudentID(ctx, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list coin history: %w", err)
	}
	if entries == nil {
		entries = []*domain.CoinHistory{}
	}
	return entries, nil
}
