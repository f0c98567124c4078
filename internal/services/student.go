package services

import (
	"context"
	"fmt"

	"campuscoins/internal/domain"
)

const historyFullLimit = 500

type studentService struct {
	userRepo   domain.UserRepository
	regRepo    domain.RegistrationRepository
	eventRepo  domain.EventRepository
	ledgerRepo domain.CoinLedgerRepository
}

// NewStudentService creates the StudentService.
func NewStudentService(userRepo domain.UserRepository, regRepo domain.RegistrationRepository, eventRepo domain.EventRepository, ledgerRepo domain.CoinLedgerRepository) domain.StudentService {
	return &studentService{
		userRepo:   userRepo,
		regRepo:    regRepo,
		eventRepo:  eventRepo,
		ledgerRepo: ledgerRepo,
	}
}

func (s *studentService) Profile(ctx context.Context, actor domain.Actor) (*domain.StudentProfile, error) {
	return s.profile(ctx, actor, defaultHistoryLimit)
}

// History returns the profile with the full coin history rather than the
// recent slice.
func (s *studentService) History(ctx context.Context, actor domain.Actor) (*domain.StudentProfile, error) {
	return s.profile(ctx, actor, historyFullLimit)
}

func (s *studentService) profile(ctx context.Context, actor domain.Actor, historyLimit int) (*domain.StudentProfile, error) {
	if !actor.IsStudent() {
		return nil, domain.ErrForbidden
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	regs, err := registrationsWithEvents(ctx, s.regRepo, s.eventRepo, actor.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.ledgerRepo.ListByStudentID(ctx, actor.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list coin history: %w", err)
	}
	if history == nil {
		history = []*domain.CoinHistory{}
	}
	return &domain.StudentProfile{
		Student:       user,
		Registrations: regs,
		CoinHistory:   history,
	}, nil
}

// registrationsWithEvents joins a student's registrations with their events,
// fetching each distinct event once.
func registrationsWithEvents(ctx context.Context, regRepo domain.RegistrationRepository, eventRepo domain.EventRepository, studentID string) ([]*domain.RegistrationWithEvent, error) {
	regs, err := regRepo.ListByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	events := make(map[string]*domain.Event, len(regs))
	out := make([]*domain.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		event, ok := events[reg.EventID]
		if !ok {
			event, err = eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				return nil, fmt.Errorf("get event %s: %w", reg.EventID, err)
			}
			events[reg.EventID] = event
		}
		out = append(out, &domain.RegistrationWithEvent{
			Registration: reg,
			Event:        event,
		})
	}
	return out, nil
}
