package postgres

import (
	"context"
	"database/sql"

	"campuscoins/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{DB: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, message, type, event_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var eventID any
	if n.EventID != nil {
		eventID = *n.EventID
	}
	_, err := r.DB.ExecContext(ctx, query, n.ID, n.UserID, n.Title, n.Message, n.Type, eventID, n.Read, n.CreatedAt)
	return err
}

func (r *notificationRepository) CreateBatch(ctx context.Context, ns []*domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, event_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, n := range ns {
		var eventID any
		if n.EventID != nil {
			eventID = *n.EventID
		}
		if _, err := stmt.ExecContext(ctx, n.ID, n.UserID, n.Title, n.Message, n.Type, eventID, n.Read, n.CreatedAt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *notificationRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, title, message, type, event_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ns := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		var eventID sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &eventID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if eventID.Valid {
			n.EventID = &eventID.String
		}
		ns = append(ns, n)
	}
	return ns, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
