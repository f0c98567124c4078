package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"campuscoins/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

// Register locks the event row before counting active registrations, so two
// concurrent attempts for the last slot serialize and only one commits. The
// event status is re-read under the same lock: a registration racing a
// concurrent winner declaration must not land after the event completes. A
// cancelled row for the same (event, student) pair is revived instead of
// violating the unique index.
func (r *registrationRepository) Register(ctx context.Context, eventID, studentID string) (reg *domain.Registration, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		maxParticipants int
		eventStatus     string
	)
	err = tx.QueryRowContext(ctx, `SELECT max_participants, status FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&maxParticipants, &eventStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if eventStatus != domain.EventStatusUpcoming {
		return nil, domain.ErrEventCompleted
	}

	var existingID, existingStatus string
	err = tx.QueryRowContext(ctx, `SELECT id, status FROM registrations WHERE event_id = $1 AND student_id = $2`, eventID, studentID).
		Scan(&existingID, &existingStatus)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil && existingStatus != domain.RegistrationStatusCancelled {
		return nil, domain.ErrAlreadyRegistered
	}
	hadCancelled := err == nil

	var active int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status IN ('registered', 'participated', 'winner')`,
		eventID,
	).Scan(&active)
	if err != nil {
		return nil, err
	}
	if active >= maxParticipants {
		return nil, domain.ErrEventFull
	}

	now := time.Now()
	reg = &domain.Registration{
		EventID:      eventID,
		StudentID:    studentID,
		Status:       domain.RegistrationStatusRegistered,
		RegisteredAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if hadCancelled {
		reg.ID = existingID
		_, err = tx.ExecContext(ctx,
			`UPDATE registrations SET status = 'registered', registered_at = $2, updated_at = $3 WHERE id = $1`,
			existingID, now, now,
		)
	} else {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO registrations (event_id, student_id, status, registered_at, created_at, updated_at)
			 VALUES ($1, $2, 'registered', $3, $4, $5)
			 RETURNING id`,
			eventID, studentID, now, now, now,
		).Scan(&reg.ID)
	}
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) Cancel(ctx context.Context, eventID, studentID string) error {
	query := `
		UPDATE registrations
		SET status = 'cancelled', updated_at = NOW()
		WHERE event_id = $1 AND student_id = $2 AND status <> 'cancelled'
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, studentID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotRegistered
	}
	return nil
}

func (r *registrationRepository) GetByEventAndStudent(ctx context.Context, eventID, studentID string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, student_id, status, registered_at, created_at, updated_at
		FROM registrations
		WHERE event_id = $1 AND student_id = $2
	`
	reg := &domain.Registration{}
	err := r.DB.QueryRowContext(ctx, query, eventID, studentID).
		Scan(&reg.ID, &reg.EventID, &reg.StudentID, &reg.Status, &reg.RegisteredAt, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListActiveByEventID(ctx context.Context, eventID string) ([]*domain.RegistrationWithStudent, error) {
	query := `
		SELECT r.id, r.event_id, r.student_id, r.status, r.registered_at, r.created_at, r.updated_at,
		       u.name, u.email, COALESCE(u.student_id, ''), u.coins
		FROM registrations r
		JOIN users u ON u.id = r.student_id
		WHERE r.event_id = $1 AND r.status IN ('registered', 'participated', 'winner')
		ORDER BY r.registered_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	regs := make([]*domain.RegistrationWithStudent, 0)
	for rows.Next() {
		reg := &domain.RegistrationWithStudent{Registration: &domain.Registration{}}
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.StudentID, &reg.Status, &reg.RegisteredAt, &reg.CreatedAt, &reg.UpdatedAt,
			&reg.StudentName, &reg.StudentEmail, &reg.StudentRoll, &reg.StudentCoins,
		); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) ListByStudentID(ctx context.Context, studentID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, student_id, status, registered_at, created_at, updated_at
		FROM registrations
		WHERE student_id = $1
		ORDER BY registered_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.StudentID, &reg.Status, &reg.RegisteredAt, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) CountActive(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status IN ('registered', 'participated', 'winner')`,
		eventID,
	).Scan(&count)
	return count, err
}

func (r *registrationRepository) CountWinnerEligible(ctx context.Context, eventID string, studentIDs []string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND student_id = ANY($2) AND status IN ('registered', 'participated')`,
		eventID, pq.Array(studentIDs),
	).Scan(&count)
	return count, err
}
