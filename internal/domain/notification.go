package domain

import (
	"context"
	"time"
)

// Notification types.
const (
	NotificationEventCreated          = "event_created"
	NotificationRegistrationConfirmed = "registration_confirmed"
	NotificationWinnerAnnounced       = "winner_announced"
	NotificationCoinUpdate            = "coin_update"
)

// Notification is created as a side effect of domain operations; only the
// read flag is ever mutated.
// swagger:model Notification
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	EventID   *string   `json:"event_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification returns an unread Notification for the given user.
func NewNotification(userID, title, message, notifType string, eventID *string, createdAt time.Time) *Notification {
	return &Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		EventID:   eventID,
		CreatedAt: createdAt,
	}
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	CreateBatch(ctx context.Context, ns []*Notification) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]*Notification, error)
	// MarkRead sets the read flag on the user's own notification. Returns
	// ErrNotFound when the notification does not exist or belongs to another user.
	MarkRead(ctx context.Context, id, userID string) error
}

// Notifier dispatches a notification to a user. Callers treat dispatch as
// fire-and-forget: a dispatch failure never rolls back the operation that
// produced it.
type Notifier interface {
	Dispatch(ctx context.Context, n *Notification) error
	// DispatchBatch persists a batch of notifications without per-user email
	// delivery, for fan-out announcements.
	DispatchBatch(ctx context.Context, ns []*Notification) error
}

// NotificationService exposes the user-facing notification feed.
type NotificationService interface {
	Notifier
	ListForUser(ctx context.Context, actor Actor) ([]*Notification, error)
	MarkRead(ctx context.Context, actor Actor, notificationID string) error
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}
