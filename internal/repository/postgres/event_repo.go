package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"campuscoins/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `id, name, description, date, location, max_participants, coins_allocated, number_of_winners, status, winners, created_by, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var winners pq.StringArray
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.Date, &e.Location,
		&e.MaxParticipants, &e.CoinsAllocated, &e.NumberOfWinners,
		&e.Status, &winners, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Winners = []string(winners)
	if e.Winners == nil {
		e.Winners = []string{}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, date, location, max_participants, coins_allocated, number_of_winners, status, winners, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Description, e.Date, e.Location,
		e.MaxParticipants, e.CoinsAllocated, e.NumberOfWinners,
		e.Status, pq.Array(e.Winners), e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC`
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE date >= $1 AND status = 'upcoming' ORDER BY date ASC`
	return r.queryEvents(ctx, query, now)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Complete is a compare-and-swap on status: only an upcoming event can be
// completed, and exactly one concurrent caller observes the transition.
func (r *eventRepository) Complete(ctx context.Context, id string, winners []string) error {
	query := `
		UPDATE events
		SET status = 'completed', winners = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'upcoming'
	`
	result, err := r.DB.ExecContext(ctx, query, id, pq.Array(winners))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrEventCompleted
	}
	return nil
}

func (r *eventRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	return count, err
}

func (r *eventRepository) CountUpcoming(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE date >= $1 AND status = 'upcoming'`, now).Scan(&count)
	return count, err
}
