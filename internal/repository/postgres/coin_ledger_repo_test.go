package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"campuscoins/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestCoinLedgerRepository_ApplyAdjustment(t *testing.T) {
	ctx := context.Background()

	adj := &domain.CoinAdjustment{
		ID:        "hist-1",
		StudentID: "stu-1",
		Amount:    -30,
		Reason:    "Lost library book",
		Type:      domain.CoinTypeManualSubtract,
		ChangedBy: "adm-1",
	}

	tests := []struct {
		name        string
		adj         *domain.CoinAdjustment
		mock        func(mock sqlmock.Sqlmock)
		wantPrev    int
		wantBalance int
		wantErr     error
	}{
		{
			name: "subtract success",
			adj:  adj,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT coins FROM users WHERE id = \$1 AND role = 'student' FOR UPDATE`).
					WithArgs("stu-1").
					WillReturnRows(sqlmock.NewRows([]string{"coins"}).AddRow(100))
				mock.ExpectExec(`UPDATE users SET coins = \$2, updated_at = NOW\(\) WHERE id = \$1`).
					WithArgs("stu-1", 70).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO coin_history`).
					WithArgs("hist-1", "stu-1", nil, -30, "Lost library book", domain.CoinTypeManualSubtract, "adm-1", 100, 70, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantPrev:    100,
			wantBalance: 70,
		},
		{
			name: "insufficient balance rolls back",
			adj:  adj,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT coins FROM users WHERE id = \$1 AND role = 'student' FOR UPDATE`).
					WithArgs("stu-1").
					WillReturnRows(sqlmock.NewRows([]string{"coins"}).AddRow(10))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrInsufficientBalance,
		},
		{
			name: "unknown student",
			adj:  adj,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT coins FROM users WHERE id = \$1 AND role = 'student' FOR UPDATE`).
					WithArgs("stu-1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrStudentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewCoinLedgerRepository(db)
			entry, err := repo.ApplyAdjustment(ctx, tt.adj)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.wantPrev, entry.PreviousBalance)
				require.Equal(t, tt.wantBalance, entry.NewBalance)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCoinLedgerRepository_CreditEventWin(t *testing.T) {
	ctx := context.Background()
	eventID := "ev-1"

	adj := &domain.CoinAdjustment{
		ID:        "hist-2",
		StudentID: "stu-1",
		EventID:   &eventID,
		Amount:    50,
		Reason:    "Winner in event: Hackathon",
		Type:      domain.CoinTypeEventWin,
		ChangedBy: "adm-1",
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT coins FROM users WHERE id = \$1 AND role = 'student' FOR UPDATE`).
			WithArgs("stu-1").
			WillReturnRows(sqlmock.NewRows([]string{"coins"}).AddRow(20))
		mock.ExpectExec(`UPDATE registrations SET status = 'winner'`).
			WithArgs("ev-1", "stu-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE users SET coins = \$2, events_participated = events_participated \+ 1`).
			WithArgs("stu-1", 70).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO coin_history`).
			WithArgs("hist-2", "stu-1", "ev-1", 50, "Winner in event: Hackathon", domain.CoinTypeEventWin, "adm-1", 20, 70, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewCoinLedgerRepository(db)
		entry, err := repo.CreditEventWin(ctx, adj)
		require.NoError(t, err)
		require.Equal(t, 20, entry.PreviousBalance)
		require.Equal(t, 70, entry.NewBalance)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("winner without active registration rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT coins FROM users WHERE id = \$1 AND role = 'student' FOR UPDATE`).
			WithArgs("stu-1").
			WillReturnRows(sqlmock.NewRows([]string{"coins"}).AddRow(20))
		mock.ExpectExec(`UPDATE registrations SET status = 'winner'`).
			WithArgs("ev-1", "stu-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewCoinLedgerRepository(db)
		_, err = repo.CreditEventWin(ctx, adj)
		require.ErrorIs(t, err, domain.ErrUnregisteredWinner)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCoinLedgerRepository_ListByStudentID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, student_id, event_id, amount, reason, type, changed_by, previous_balance, new_balance, created_at`).
		WithArgs("stu-1", 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "student_id", "event_id", "amount", "reason", "type",
			"changed_by", "previous_balance", "new_balance", "created_at",
		}).
			AddRow("hist-2", "stu-1", "ev-1", 50, "Winner in event: Hackathon", domain.CoinTypeEventWin, "adm-1", 20, 70, created).
			AddRow("hist-1", "stu-1", nil, 20, "Welcome bonus", domain.CoinTypeManualAdd, "adm-1", 0, 20, created.Add(-time.Hour)))

	repo := NewCoinLedgerRepository(db)
	entries, err := repo.ListByStudentID(ctx, "stu-1", 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].EventID)
	require.Equal(t, "ev-1", *entries[0].EventID)
	require.Nil(t, entries[1].EventID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCoinLedgerRepository_TotalDistributed(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM coin_history WHERE type = 'event_win'`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(320))

	repo := NewCoinLedgerRepository(db)
	total, err := repo.TotalDistributed(ctx)
	require.NoError(t, err)
	require.Equal(t, 320, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
