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

type eventService struct {
	eventRepo  domain.EventRepository
	regRepo    domain.RegistrationRepository
	ledgerRepo domain.CoinLedgerRepository
	userRepo   domain.UserRepository
	notifier   domain.Notifier
	logger     *slog.Logger
}

// NewEventService creates the EventService.
func NewEventService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	ledgerRepo domain.CoinLedgerRepository,
	userRepo domain.UserRepository,
	notifier domain.Notifier,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo:  eventRepo,
		regRepo:    regRepo,
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *eventService) Create(ctx context.Context, actor domain.Actor, event *domain.Event) (*domain.Event, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(event.Name) == "" || event.Date.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if event.MaxParticipants <= 0 || event.CoinsAllocated < 0 || event.NumberOfWinners <= 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	e := domain.NewEvent(
		strings.TrimSpace(event.Name),
		event.Description,
		event.Date,
		event.Location,
		event.MaxParticipants,
		event.CoinsAllocated,
		event.NumberOfWinners,
		actor.ID,
		now,
		now,
	)
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.announceEvent(ctx, e)
	return e, nil
}

// announceEvent fans a new-event notification out to every student. Failures
// are logged, never surfaced: the event is already created.
func (s *eventService) announceEvent(ctx context.Context, e *domain.Event) {
	students, err := s.userRepo.ListStudents(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "event announcement skipped", "event_id", e.ID, "err", err)
		return
	}
	ns := make([]*domain.Notification, 0, len(students))
	now := time.Now()
	for _, st := range students {
		ns = append(ns, domain.NewNotification(
			st.ID,
			"New Event Available",
			fmt.Sprintf("A new event %q is open for registration on %s.", e.Name, e.Date.Format("Jan 2, 2006")),
			domain.NotificationEventCreated,
			&e.ID,
			now,
		))
	}
	if err := s.notifier.DispatchBatch(ctx, ns); err != nil {
		s.logger.WarnContext(ctx, "event announcement failed", "event_id", e.ID, "err", err)
	}
}

func (s *eventService) Get(ctx context.Context, actor domain.Actor, eventID string) (*domain.EventWithStats, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.withStats(ctx, actor, event)
}

func (s *eventService) List(ctx context.Context, actor domain.Actor) ([]*domain.EventWithStats, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.allWithStats(ctx, actor, events)
}

func (s *eventService) ListUpcoming(ctx context.Context, actor domain.Actor) ([]*domain.EventWithStats, error) {
	events, err := s.eventRepo.ListUpcoming(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return s.allWithStats(ctx, actor, events)
}

func (s *eventService) allWithStats(ctx context.Context, actor domain.Actor, events []*domain.Event) ([]*domain.EventWithStats, error) {
	out := make([]*domain.EventWithStats, 0, len(events))
	for _, e := range events {
		ws, err := s.withStats(ctx, actor, e)
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, nil
}

func (s *eventService) withStats(ctx context.Context, actor domain.Actor, event *domain.Event) (*domain.EventWithStats, error) {
	count, err := s.regRepo.CountActive(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	ws := &domain.EventWithStats{Event: event, CurrentRegistrations: count}
	if actor.IsStudent() {
		reg, err := s.regRepo.GetByEventAndStudent(ctx, event.ID, actor.ID)
		if err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("check registration: %w", err)
		}
		ws.IsRegistered = reg != nil && reg.Status != domain.RegistrationStatusCancelled
	}
	return ws, nil
}

// DeclareWinners completes an event and credits each winner. The status
// transition is a compare-and-swap, so concurrent declarations for the same
// event resolve to exactly one completion. Credits after the transition are
// applied per winner: a failed credit lands in Failed and does not undo
// earlier winners.
func (s *eventService) DeclareWinners(ctx context.Context, actor domain.Actor, eventID string, winnerIDs []string) (*domain.WinnerDeclaration, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	winners, err := normalizeWinnerIDs(winnerIDs)
	if err != nil {
		return nil, err
	}
	if len(winners) == 0 {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(winners) > event.NumberOfWinners {
		return nil, domain.ErrTooManyWinners
	}
	if event.Status != domain.EventStatusUpcoming {
		return nil, domain.ErrEventCompleted
	}

	eligible, err := s.regRepo.CountWinnerEligible(ctx, eventID, winners)
	if err != nil {
		return nil, fmt.Errorf("check winner eligibility: %w", err)
	}
	if eligible != len(winners) {
		return nil, domain.ErrUnregisteredWinner
	}

	coinsPerWinner := event.CoinsAllocated / len(winners)

	if err := s.eventRepo.Complete(ctx, eventID, winners); err != nil {
		return nil, err
	}
	event.Status = domain.EventStatusCompleted
	event.Winners = winners
	metrics.WinnerDeclarations.Inc()

	decl := &domain.WinnerDeclaration{
		Event:          event,
		CoinsPerWinner: coinsPerWinner,
		Allocations:    []*domain.WinnerAllocation{},
		Failed:         []string{},
	}
	for _, studentID := range winners {
		entry, err := s.ledgerRepo.CreditEventWin(ctx, &domain.CoinAdjustment{
			ID:        uuid.NewString(),
			StudentID: studentID,
			EventID:   &event.ID,
			Amount:    coinsPerWinner,
			Reason:    fmt.Sprintf("Winner in event: %s", event.Name),
			Type:      domain.CoinTypeEventWin,
			ChangedBy: actor.ID,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "winner credit failed", "event_id", eventID, "student_id", studentID, "err", err)
			decl.Failed = append(decl.Failed, studentID)
			continue
		}
		metrics.CoinsDistributed.Add(float64(coinsPerWinner))
		decl.Allocations = append(decl.Allocations, &domain.WinnerAllocation{
			StudentID:  studentID,
			Coins:      coinsPerWinner,
			NewBalance: entry.NewBalance,
		})

		n := domain.NewNotification(
			studentID,
			"Congratulations, You Won!",
			fmt.Sprintf("You have been declared a winner of %q and earned %d coins.", event.Name, coinsPerWinner),
			domain.NotificationWinnerAnnounced,
			&event.ID,
			time.Now(),
		)
		if err := s.notifier.Dispatch(ctx, n); err != nil {
			s.logger.WarnContext(ctx, "winner notification failed", "event_id", eventID, "student_id", studentID, "err", err)
		}
	}
	return decl, nil
}

// normalizeWinnerIDs trims and drops blank ids. A duplicate id is an input
// error: silently collapsing it would pay the surviving winner a larger
// share of the pool than the caller asked for.
func normalizeWinnerIDs(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			return nil, domain.ErrInvalidInput
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
