package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campuscoins/internal/domain"
)

type coinLedgerRepository struct {
	DB *sql.DB
}

func NewCoinLedgerRepository(db *sql.DB) domain.CoinLedgerRepository {
	return &coinLedgerRepository{DB: db}
}

// ApplyAdjustment holds the student row lock for the whole transaction, so
// the read balance, the written balance, and the history entry cannot be
// interleaved with another mutation for the same student.
func (r *coinLedgerRepository) ApplyAdjustment(ctx context.Context, adj *domain.CoinAdjustment) (entry *domain.CoinHistory, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var previous int
	err = tx.QueryRowContext(ctx, `SELECT coins FROM users WHERE id = $1 AND role = 'student' FOR UPDATE`, adj.StudentID).Scan(&previous)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}

	newBalance := previous + adj.Amount
	if newBalance < 0 {
		return nil, domain.ErrInsufficientBalance
	}

	if _, err = tx.ExecContext(ctx, `UPDATE users SET coins = $2, updated_at = NOW() WHERE id = $1`, adj.StudentID, newBalance); err != nil {
		return nil, err
	}

	entry, err = insertHistory(ctx, tx, adj, previous, newBalance)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditEventWin applies one winner's mutation set atomically: the
// registration flips to winner, coins and the participation counter move on
// the user row, and the event_win history entry is appended. A failure at any
// step rolls back the whole winner, leaving earlier winners untouched.
func (r *coinLedgerRepository) CreditEventWin(ctx context.Context, adj *domain.CoinAdjustment) (entry *domain.CoinHistory, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var previous int
	err = tx.QueryRowContext(ctx, `SELECT coins FROM users WHERE id = $1 AND role = 'student' FOR UPDATE`, adj.StudentID).Scan(&previous)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE registrations SET status = 'winner', updated_at = NOW()
		 WHERE event_id = $1 AND student_id = $2 AND status IN ('registered', 'participated')`,
		*adj.EventID, adj.StudentID,
	)
	if err != nil {
		return nil, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		err = domain.ErrUnregisteredWinner
		return nil, err
	}

	newBalance := previous + adj.Amount
	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET coins = $2, events_participated = events_participated + 1, updated_at = NOW() WHERE id = $1`,
		adj.StudentID, newBalance,
	); err != nil {
		return nil, err
	}

	entry, err = insertHistory(ctx, tx, adj, previous, newBalance)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, adj *domain.CoinAdjustment, previous, newBalance int) (*domain.CoinHistory, error) {
	now := time.Now()
	entry := &domain.CoinHistory{
		ID:              adj.ID,
		StudentID:       adj.StudentID,
		EventID:         adj.EventID,
		Amount:          adj.Amount,
		Reason:          adj.Reason,
		Type:            adj.Type,
		ChangedBy:       adj.ChangedBy,
		PreviousBalance: previous,
		NewBalance:      newBalance,
		CreatedAt:       now,
	}
	var eventID any
	if adj.EventID != nil {
		eventID = *adj.EventID
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO coin_history (id, student_id, event_id, amount, reason, type, changed_by, previous_balance, new_balance, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.StudentID, eventID, entry.Amount, entry.Reason, entry.Type, entry.ChangedBy,
		entry.PreviousBalance, entry.NewBalance, entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *coinLedgerRepository) ListByStudentID(ctx context.Context, studentID string, limit int) ([]*domain.CoinHistory, error) {
	query := `
		SELECT id, student_id, event_id, amount, reason, type, changed_by, previous_balance, new_balance, created_at
		FROM coin_history
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]*domain.CoinHistory, 0)
	for rows.Next() {
		entry := &domain.CoinHistory{}
		var eventID sql.NullString
		if err := rows.Scan(
			&entry.ID, &entry.StudentID, &eventID, &entry.Amount, &entry.Reason, &entry.Type,
			&entry.ChangedBy, &entry.PreviousBalance, &entry.NewBalance, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if eventID.Valid {
			entry.EventID = &eventID.String
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *coinLedgerRepository) TotalDistributed(ctx context.Context) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM coin_history WHERE type = 'event_win'`).Scan(&total)
	return total, err
}
