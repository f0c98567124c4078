package domain

import (
	"context"
	"time"
)

// Registration states. At most one non-cancelled registration exists per
// (student, event) pair at any time.
const (
	RegistrationStatusRegistered   = "registered"
	RegistrationStatusCancelled    = "cancelled"
	RegistrationStatusWinner       = "winner"
	RegistrationStatusParticipated = "participated"
)

// Registration represents a student's claim on a slot in an event.
// swagger:model Registration
type Registration struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	StudentID    string    `json:"student_id"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegistrationWithStudent bundles a registration with student details for
// admin listings.
type RegistrationWithStudent struct {
	*Registration
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
	StudentRoll  string `json:"student_roll"`
	StudentCoins int    `json:"student_coins"`
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// Register creates a registration, or revives a cancelled one, after
	// re-checking capacity with the event row locked. The capacity check and
	// the write commit in one transaction. Returns ErrEventFull,
	// ErrAlreadyRegistered, or ErrNotFound (event missing).
	Register(ctx context.Context, eventID, studentID string) (*Registration, error)
	// Cancel marks the student's active registration cancelled. Returns
	// ErrNotRegistered when there is no active registration.
	Cancel(ctx context.Context, eventID, studentID string) error
	GetByEventAndStudent(ctx context.Context, eventID, studentID string) (*Registration, error)
	ListActiveByEventID(ctx context.Context, eventID string) ([]*RegistrationWithStudent, error)
	ListByStudentID(ctx context.Context, studentID string) ([]*Registration, error)
	// CountActive counts registrations in {registered, participated, winner}.
	CountActive(ctx context.Context, eventID string) (int, error)
	// CountWinnerEligible counts registrations for the given students with
	// status in {registered, participated}.
	CountWinnerEligible(ctx context.Context, eventID string, studentIDs []string) (int, error)
}

// RegistrationService defines the registration lifecycle.
type RegistrationService interface {
	Register(ctx context.Context, actor Actor, eventID string) (*Registration, error)
	Cancel(ctx context.Context, actor Actor, eventID string) error
	RemoveStudent(ctx context.Context, actor Actor, eventID, studentID string) error
	ListByEvent(ctx context.Context, actor Actor, eventID string) ([]*RegistrationWithStudent, error)
}
