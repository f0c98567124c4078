package services

import (
	"context"
	"fmt"
	"time"

	"campuscoins/internal/domain"
)

const recentHistoryLimit = 10

type adminService struct {
	userRepo   domain.UserRepository
	eventRepo  domain.EventRepository
	regRepo    domain.RegistrationRepository
	ledgerRepo domain.CoinLedgerRepository
}

// NewAdminService creates the AdminService.
func NewAdminService(userRepo domain.UserRepository, eventRepo domain.EventRepository, regRepo domain.RegistrationRepository, ledgerRepo domain.CoinLedgerRepository) domain.AdminService {
	return &adminService{
		userRepo:   userRepo,
		eventRepo:  eventRepo,
		regRepo:    regRepo,
		ledgerRepo: ledgerRepo,
	}
}

func (s *adminService) DashboardStats(ctx context.Context, actor domain.Actor) (*domain.DashboardStats, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	students, err := s.userRepo.CountStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	events, err := s.eventRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	upcoming, err := s.eventRepo.CountUpcoming(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("count upcoming events: %w", err)
	}
	distributed, err := s.ledgerRepo.TotalDistributed(ctx)
	if err != nil {
		return nil, fmt.Errorf("total coins distributed: %w", err)
	}
	held, err := s.userRepo.TotalCoinsHeld(ctx)
	if err != nil {
		return nil, fmt.Errorf("total coins held: %w", err)
	}

	return &domain.DashboardStats{
		TotalStudents:         students,
		TotalEvents:           events,
		UpcomingEvents:        upcoming,
		TotalCoinsDistributed: distributed,
		TotalCoinsHeld:        held,
	}, nil
}

func (s *adminService) ListStudents(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	students, err := s.userRepo.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if students == nil {
		students = []*domain.User{}
	}
	return students, nil
}

func (s *adminService) SearchStudents(ctx context.Context, actor domain.Actor, filter domain.StudentFilter) ([]*domain.StudentDetails, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	students, err := s.userRepo.SearchStudents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	out := make([]*domain.StudentDetails, 0, len(students))
	for _, st := range students {
		details, err := s.details(ctx, st, recentHistoryLimit)
		if err != nil {
			return nil, err
		}
		out = append(out, details)
	}
	return out, nil
}

func (s *adminService) GetStudent(ctx context.Context, actor domain.Actor, studentID string) (*domain.StudentDetails, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	user, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleStudent {
		return nil, domain.ErrStudentNotFound
	}
	return s.details(ctx, user, defaultHistoryLimit)
}

func (s *adminService) details(ctx context.Context, student *domain.User, historyLimit int) (*domain.StudentDetails, error) {
	regs, err := registrationsWithEvents(ctx, s.regRepo, s.eventRepo, student.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.ledgerRepo.ListByStudentID(ctx, student.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list coin history: %w", err)
	}
	if history == nil {
		history = []*domain.CoinHistory{}
	}
	return &domain.StudentDetails{
		Student:       student,
		Registrations: regs,
		CoinHistory:   history,
	}, nil
}
