package domain

import (
	"context"
	"time"
)

// Coin history entry types.
const (
	CoinTypeEventWin       = "event_win"
	CoinTypeManualAdd      = "manual_add"
	CoinTypeManualSubtract = "manual_subtract"
)

// CoinHistory is an immutable audit record of one balance change.
// NewBalance always equals PreviousBalance + Amount, and consecutive entries
// for a student chain in timestamp order.
// swagger:model CoinHistory
type CoinHistory struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	EventID         *string   `json:"event_id"`
	Amount          int       `json:"amount"`
	Reason          string    `json:"reason"`
	Type            string    `json:"type"`
	ChangedBy       string    `json:"changed_by"`
	PreviousBalance int       `json:"previous_balance"`
	NewBalance      int       `json:"new_balance"`
	CreatedAt       time.Time `json:"created_at"`
}

// CoinAdjustment is the input to a ledger write. Amount is signed; EventID is
// nil for manual adjustments.
type CoinAdjustment struct {
	ID        string
	StudentID string
	EventID   *string
	Amount    int
	Reason    string
	Type      string
	ChangedBy string
}

// CoinLedgerRepository is the sole writer of student balances. Each method
// commits the balance update and the history append in one transaction with
// the student row locked, so balance mutations for a student are serialized
// and the previous/new balance chain stays consistent.
type CoinLedgerRepository interface {
	// ApplyAdjustment applies a signed balance change and appends the history
	// entry. Returns ErrStudentNotFound or ErrInsufficientBalance (balance
	// would go negative); on error nothing is committed.
	ApplyAdjustment(ctx context.Context, adj *CoinAdjustment) (*CoinHistory, error)
	// CreditEventWin applies one winner's full mutation set: registration
	// status to winner, coin credit, participation counter increment, and the
	// event_win history entry, all in one transaction.
	CreditEventWin(ctx context.Context, adj *CoinAdjustment) (*CoinHistory, error)
	ListByStudentID(ctx context.Context, studentID string, limit int) ([]*CoinHistory, error)
	// TotalDistributed sums all event_win amounts.
	TotalDistributed(ctx context.Context) (int, error)
}

// CoinLedgerService applies manual balance adjustments and exposes history.
type CoinLedgerService interface {
	// ApplyAdjustment applies a manual add or subtract of a positive magnitude
	// on behalf of an admin actor and returns the appended history entry.
	ApplyAdjustment(ctx context.Context, actor Actor, studentID string, amount int, reason, kind string) (*CoinHistory, error)
	HistoryForStudent(ctx context.Context, actor Actor, studentID string, limit int) ([]*CoinHistory, error)
}
