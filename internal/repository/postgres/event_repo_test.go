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

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				Name:            "Hackathon 2026",
				Date:            time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC),
				Location:        "Main Hall",
				MaxParticipants: 100,
				CoinsAllocated:  500,
				NumberOfWinners: 3,
				Status:          domain.EventStatusUpcoming,
				Winners:         []string{},
				CreatedBy:       "adm-1",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(name, description, date, location, max_participants, coins_allocated, number_of_winners, status, winners, created_by, created_at, updated_at\)`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name: "db error",
			event: &domain.Event{
				Name:   "Hackathon",
				Status: domain.EventStatusUpcoming,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, description, date, location, max_participants, coins_allocated, number_of_winners, status, winners, created_by, created_at, updated_at`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "name", "description", "date", "location", "max_participants",
				"coins_allocated", "number_of_winners", "status", "winners",
				"created_by", "created_at", "updated_at",
			}).AddRow("ev-1", "Hackathon", "", date, "Main Hall", 100, 500, 3,
				domain.EventStatusCompleted, "{stu-1,stu-2}", "adm-1", date, date))

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "Hackathon", event.Name)
		require.Equal(t, []string{"stu-1", "stu-2"}, event.Winners)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, description`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("transitions upcoming event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Complete(ctx, "ev-1", []string{"stu-1"}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already completed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		repo := NewEventRepository(db)
		err = repo.Complete(ctx, "ev-1", []string{"stu-1"})
		require.ErrorIs(t, err, domain.ErrEventCompleted)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		repo := NewEventRepository(db)
		err = repo.Complete(ctx, "missing", []string{"stu-1"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_ListUpcoming(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	date := now.AddDate(0, 1, 0)
	mock.ExpectQuery(`SELECT id, name, description, date, location, max_participants, coins_allocated, number_of_winners, status, winners, created_by, created_at, updated_at FROM events WHERE date >= \$1 AND status = 'upcoming'`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "date", "location", "max_participants",
			"coins_allocated", "number_of_winners", "status", "winners",
			"created_by", "created_at", "updated_at",
		}).AddRow("ev-1", "Quiz Night", "", date, "Lab 2", 40, 200, 2,
			domain.EventStatusUpcoming, "{}", "adm-1", now, now))

	repo := NewEventRepository(db)
	events, err := repo.ListUpcoming(ctx, now)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Empty(t, events[0].Winners)
	require.NoError(t, mock.ExpectationsWereMet())
}
