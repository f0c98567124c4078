package domain

import "context"

// StudentProfile is the student-facing view of their own account.
type StudentProfile struct {
	Student       *User                    `json:"student"`
	Registrations []*RegistrationWithEvent `json:"registrations"`
	CoinHistory   []*CoinHistory           `json:"coin_history"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalStudents         int `json:"total_students"`
	TotalEvents           int `json:"total_events"`
	UpcomingEvents        int `json:"upcoming_events"`
	TotalCoinsDistributed int `json:"total_coins_distributed"`
	TotalCoinsHeld        int `json:"total_coins_held"`
}

// StudentDetails is the admin view of one student.
type StudentDetails struct {
	Student       *User                    `json:"student"`
	Registrations []*RegistrationWithEvent `json:"registrations"`
	CoinHistory   []*CoinHistory           `json:"coin_history"`
}

// StudentService defines student-facing profile and history reads.
type StudentService interface {
	Profile(ctx context.Context, actor Actor) (*StudentProfile, error)
	History(ctx context.Context, actor Actor) (*StudentProfile, error)
}

// AdminService defines admin-facing reporting and student lookup.
type AdminService interface {
	DashboardStats(ctx context.Context, actor Actor) (*DashboardStats, error)
	ListStudents(ctx context.Context, actor Actor) ([]*User, error)
	SearchStudents(ctx context.Context, actor Actor, filter StudentFilter) ([]*StudentDetails, error)
	GetStudent(ctx context.Context, actor Actor, studentID string) (*StudentDetails, error)
}
