package domain

import (
	"context"
	"time"
)

// Event lifecycle states. Completed is terminal: winners are declared once.
const (
	EventStatusUpcoming  = "upcoming"
	EventStatusCompleted = "completed"
)

// Event represents a campus event with a coin reward pool.
// swagger:model Event
type Event struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date"`
	Location        string    `json:"location"`
	MaxParticipants int       `json:"max_participants"`
	CoinsAllocated  int       `json:"coins_allocated"`
	NumberOfWinners int       `json:"number_of_winners"`
	Status          string    `json:"status"`
	Winners         []string  `json:"winners"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewEvent returns a new upcoming Event. ID is typically set by the repository on create.
func NewEvent(name, description string, date time.Time, location string, maxParticipants, coinsAllocated, numberOfWinners int, createdBy string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:            name,
		Description:     description,
		Date:            date,
		Location:        location,
		MaxParticipants: maxParticipants,
		CoinsAllocated:  coinsAllocated,
		NumberOfWinners: numberOfWinners,
		Status:          EventStatusUpcoming,
		Winners:         []string{},
		CreatedBy:       createdBy,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// EventWithStats bundles an event with its live registration count and
// whether the requesting user holds an active registration.
type EventWithStats struct {
	*Event
	CurrentRegistrations int  `json:"current_registrations"`
	IsRegistered         bool `json:"is_registered"`
}

// WinnerAllocation records one winner's successful coin credit.
type WinnerAllocation struct {
	StudentID  string `json:"student_id"`
	Coins      int    `json:"coins"`
	NewBalance int    `json:"new_balance"`
}

// WinnerDeclaration is the result of a declare-winners call. Credits are
// applied per winner without cross-winner rollback: Failed lists winner ids
// whose credit did not commit; their registrations and balances are unchanged.
type WinnerDeclaration struct {
	Event          *Event              `json:"event"`
	CoinsPerWinner int                 `json:"coins_per_winner"`
	Allocations    []*WinnerAllocation `json:"allocations"`
	Failed         []string            `json:"failed"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]*Event, error)
	// Complete transitions the event from upcoming to completed and stores the
	// winner set. Returns ErrEventCompleted if the event is not upcoming; the
	// transition is a compare-and-swap so at most one caller wins.
	Complete(ctx context.Context, id string, winners []string) error
	CountAll(ctx context.Context) (int, error)
	CountUpcoming(ctx context.Context, now time.Time) (int, error)
}

// EventService defines event management and the winner allocation workflow.
type EventService interface {
	Create(ctx context.Context, actor Actor, event *Event) (*Event, error)
	Get(ctx context.Context, actor Actor, eventID string) (*EventWithStats, error)
	List(ctx context.Context, actor Actor) ([]*EventWithStats, error)
	ListUpcoming(ctx context.Context, actor Actor) ([]*EventWithStats, error)
	DeclareWinners(ctx context.Context, actor Actor, eventID string, winnerIDs []string) (*WinnerDeclaration, error)
}
