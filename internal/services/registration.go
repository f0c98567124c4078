package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campuscoins/internal/domain"
	"campuscoins/internal/metrics"
)

type registrationService struct {
	regRepo   domain.RegistrationRepository
	eventRepo domain.EventRepository
	notifier  domain.Notifier
	logger    *slog.Logger
}

// NewRegistrationService creates the RegistrationService.
func NewRegistrationService(regRepo domain.RegistrationRepository, eventRepo domain.EventRepository, notifier domain.Notifier, logger *slog.Logger) domain.RegistrationService {
	return &registrationService{
		regRepo:   regRepo,
		eventRepo: eventRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *registrationService) Register(ctx context.Context, actor domain.Actor, eventID string) (*domain.Registration, error) {
	if !actor.IsStudent() {
		return nil, domain.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusUpcoming {
		return nil, domain.ErrEventCompleted
	}
	if !event.Date.After(time.Now()) {
		return nil, domain.ErrRegistrationClosed
	}

	// Capacity is re-checked inside the repository transaction with the event
	// row locked; the count exposed to clients is advisory only.
	reg, err := s.regRepo.Register(ctx, eventID, actor.ID)
	if err != nil {
		return nil, err
	}
	metrics.Registrations.Inc()

	n := domain.NewNotification(
		actor.ID,
		"Registration Confirmed",
		fmt.Sprintf("You are registered for %q on %s.", event.Name, event.Date.Format("Jan 2, 2006")),
		domain.NotificationRegistrationConfirmed,
		&event.ID,
		time.Now(),
	)
	if err := s.notifier.Dispatch(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "registration notification failed", "event_id", eventID, "student_id", actor.ID, "err", err)
	}
	return reg, nil
}

func (s *registrationService) Cancel(ctx context.Context, actor domain.Actor, eventID string) error {
	if !actor.IsStudent() {
		return domain.ErrForbidden
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Status != domain.EventStatusUpcoming {
		return domain.ErrEventCompleted
	}
	return s.regRepo.Cancel(ctx, eventID, actor.ID)
}

func (s *registrationService) RemoveStudent(ctx context.Context, actor domain.Actor, eventID, studentID string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.regRepo.Cancel(ctx, eventID, studentID)
}

func (s *registrationService) ListByEvent(ctx context.Context, actor domain.Actor, eventID string) ([]*domain.RegistrationWithStudent, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	regs, err := s.regRepo.ListActiveByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.RegistrationWithStudent{}
	}
	return regs, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrStudentNotFound)
}
