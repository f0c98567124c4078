package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"campuscoins/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, email, password_hash, salt, name, student_id, role, coins, events_participated, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var studentID sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Name, &studentID, &u.Role, &u.Coins, &u.EventsParticipated, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if studentID.Valid {
		u.StudentID = studentID.String
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, salt, name, student_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var studentID any
	if u.StudentID != "" {
		studentID = u.StudentID
	}
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Salt, u.Name, studentID, u.Role, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) ListStudents(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'student' ORDER BY name ASC`
	return r.queryUsers(ctx, query)
}

func (r *userRepository) SearchStudents(ctx context.Context, filter domain.StudentFilter) ([]*domain.User, error) {
	clauses := []string{"role = 'student'"}
	args := []any{}
	n := 1
	if s := strings.TrimSpace(filter.Search); s != "" {
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR student_id ILIKE $%d OR email ILIKE $%d)", n, n, n))
		args = append(args, "%"+s+"%")
		n++
	}
	if filter.MinCoins != nil {
		clauses = append(clauses, fmt.Sprintf("coins >= $%d", n))
		args = append(args, *filter.MinCoins)
		n++
	}
	if filter.MaxCoins != nil {
		clauses = append(clauses, fmt.Sprintf("coins <= $%d", n))
		args = append(args, *filter.MaxCoins)
		n++
	}
	if filter.MinEvents != nil {
		clauses = append(clauses, fmt.Sprintf("events_participated >= $%d", n))
		args = append(args, *filter.MinEvents)
		n++
	}
	if filter.MaxEvents != nil {
		clauses = append(clauses, fmt.Sprintf("events_participated <= $%d", n))
		args = append(args, *filter.MaxEvents)
		n++
	}
	query := fmt.Sprintf(`SELECT `+userColumns+` FROM users WHERE %s ORDER BY name ASC`, strings.Join(clauses, " AND "))
	return r.queryUsers(ctx, query, args...)
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) CountStudents(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = 'student'`).Scan(&count)
	return count, err
}

func (r *userRepository) TotalCoinsHeld(ctx context.Context) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COALESCE(SUM(coins), 0) FROM users WHERE role = 'student'`).Scan(&total)
	return total, err
}
