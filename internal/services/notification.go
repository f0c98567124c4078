package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"campuscoins/internal/domain"
)

const notificationFeedLimit = 50

type notificationService struct {
	notifRepo domain.NotificationRepository
	userRepo  domain.UserRepository
	mailer    domain.Mailer
	logger    *slog.Logger
}

// NewNotificationService creates the NotificationService. The mailer is best
// effort: persistence is the source of truth and an email failure never fails
// the dispatch.
func NewNotificationService(notifRepo domain.NotificationRepository, userRepo domain.UserRepository, mailer domain.Mailer, logger *slog.Logger) domain.NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		mailer:    mailer,
		logger:    logger,
	}
}

func (s *notificationService) Dispatch(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.email(ctx, n)
	return nil
}

func (s *notificationService) DispatchBatch(ctx context.Context, ns []*domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	for _, n := range ns {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
	}
	if err := s.notifRepo.CreateBatch(ctx, ns); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}
	return nil
}

func (s *notificationService) email(ctx context.Context, n *domain.Notification) {
	user, err := s.userRepo.GetByID(ctx, n.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "notification email skipped", "user_id", n.UserID, "err", err)
		return
	}
	html := fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", user.Name, n.Message)
	if err := s.mailer.Send(user.Email, n.Title, html, n.Message); err != nil {
		s.logger.WarnContext(ctx, "notification email failed", "user_id", n.UserID, "err", err)
	}
}

func (s *notificationService) ListForUser(ctx context.Context, actor domain.Actor) ([]*domain.Notification, error) {
	ns, err := s.notifRepo.ListByUserID(ctx, actor.ID, notificationFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if ns == nil {
		ns = []*domain.Notification{}
	}
	return ns, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor domain.Actor, notificationID string) error {
	return s.notifRepo.MarkRead(ctx, notificationID, actor.ID)
}
