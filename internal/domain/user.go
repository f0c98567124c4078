package domain

import (
	"context"
	"time"
)

// Application roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents a registered user: a student with a coin balance, or an admin.
// swagger:model User
type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Salt               string    `json:"-"`
	Name               string    `json:"name"`
	StudentID          string    `json:"student_id,omitempty"`
	Role               string    `json:"role"`
	Coins              int       `json:"coins"`
	EventsParticipated int       `json:"events_participated"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name, studentID, role string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:     email,
		Name:      name,
		StudentID: studentID,
		Role:      role,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Actor is the authenticated caller of a core operation. Services validate
// role membership themselves instead of trusting upstream middleware.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsStudent reports whether the actor holds the student role.
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated actor.
type TokenVerifier interface {
	Verify(token string) (Actor, error)
}

// StudentFilter narrows admin student searches. Nil bounds are unbounded.
type StudentFilter struct {
	Search    string
	MinCoins  *int
	MaxCoins  *int
	MinEvents *int
	MaxEvents *int
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	ListStudents(ctx context.Context) ([]*User, error)
	SearchStudents(ctx context.Context, filter StudentFilter) ([]*User, error)
	CountStudents(ctx context.Context) (int, error)
	TotalCoinsHeld(ctx context.Context) (int, error)
}

// AuthService defines signup and login.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name, studentID, role string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}
