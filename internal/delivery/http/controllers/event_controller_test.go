package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	h "campuscoins/internal/delivery/http/helpers"
	"campuscoins/internal/delivery/http/middleware"
	"campuscoins/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventService implements domain.EventService for controller tests.
type fakeEventService struct {
	declared *domain.WinnerDeclaration
	created  *domain.Event
	err      error

	gotEventID   string
	gotWinnerIDs []string
}

func (f *fakeEventService) Create(ctx context.Context, actor domain.Actor, event *domain.Event) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.created, nil
}

func (f *fakeEventService) Get(ctx context.Context, actor domain.Actor, eventID string) (*domain.EventWithStats, error) {
	return nil, f.err
}

func (f *fakeEventService) List(ctx context.Context, actor domain.Actor) ([]*domain.EventWithStats, error) {
	return []*domain.EventWithStats{}, f.err
}

func (f *fakeEventService) ListUpcoming(ctx context.Context, actor domain.Actor) ([]*domain.EventWithStats, error) {
	return []*domain.EventWithStats{}, f.err
}

func (f *fakeEventService) DeclareWinners(ctx context.Context, actor domain.Actor, eventID string, winnerIDs []string) (*domain.WinnerDeclaration, error) {
	f.gotEventID = eventID
	f.gotWinnerIDs = winnerIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.declared, nil
}

// fakeRegistrationService implements domain.RegistrationService for controller tests.
type fakeRegistrationService struct {
	reg *domain.Registration
	err error
}

func (f *fakeRegistrationService) Register(ctx context.Context, actor domain.Actor, eventID string) (*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reg, nil
}

func (f *fakeRegistrationService) Cancel(ctx context.Context, actor domain.Actor, eventID string) error {
	return f.err
}

func (f *fakeRegistrationService) RemoveStudent(ctx context.Context, actor domain.Actor, eventID, studentID string) error {
	return f.err
}

func (f *fakeRegistrationService) ListByEvent(ctx context.Context, actor domain.Actor, eventID string) ([]*domain.RegistrationWithStudent, error) {
	return []*domain.RegistrationWithStudent{}, f.err
}

func authedRequest(method, target, body string, actor domain.Actor) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.SetActor(req.Context(), actor))
}

func TestEventController_DeclareWinners(t *testing.T) {
	admin := domain.Actor{ID: "adm-1", Role: domain.RoleAdmin}

	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       `{"winner_ids":["stu-1","stu-2"]}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty winner list",
			body:       `{"winner_ids":[]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   h.ErrCodeBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"winners":["stu-1"]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   h.ErrCodeBadRequest,
		},
		{
			name:       "already completed",
			body:       `{"winner_ids":["stu-1"]}`,
			svcErr:     domain.ErrEventCompleted,
			wantStatus: http.StatusConflict,
			wantCode:   h.ErrCodeConflict,
		},
		{
			name:       "too many winners",
			body:       `{"winner_ids":["stu-1"]}`,
			svcErr:     domain.ErrTooManyWinners,
			wantStatus: http.StatusConflict,
			wantCode:   h.ErrCodeConflict,
		},
		{
			name:       "forbidden",
			body:       `{"winner_ids":["stu-1"]}`,
			svcErr:     domain.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantCode:   h.ErrCodeForbidden,
		},
		{
			name:       "missing event",
			body:       `{"winner_ids":["stu-1"]}`,
			svcErr:     domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   h.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{
				err: tt.svcErr,
				declared: &domain.WinnerDeclaration{
					Event:          &domain.Event{ID: "ev-1", Status: domain.EventStatusCompleted},
					CoinsPerWinner: 50,
					Allocations: []*domain.WinnerAllocation{
						{StudentID: "stu-1", Coins: 50, NewBalance: 50},
						{StudentID: "stu-2", Coins: 50, NewBalance: 80},
					},
					Failed: []string{},
				},
			}
			ctrl := NewEventController(testLogger(), svc, &fakeRegistrationService{})

			req := authedRequest(http.MethodPost, "/events/ev-1/winners", tt.body, admin)
			req.SetPathValue("eventID", "ev-1")
			rec := httptest.NewRecorder()
			ctrl.DeclareWinners(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp h.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			require.Nil(t, resp.Error)
			assert.Equal(t, "ev-1", svc.gotEventID)
			assert.Equal(t, []string{"stu-1", "stu-2"}, svc.gotWinnerIDs)
		})
	}
}

func TestEventController_Register(t *testing.T) {
	student := domain.Actor{ID: "stu-1", Role: domain.RoleStudent}

	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "success", wantStatus: http.StatusCreated},
		{name: "event full", svcErr: domain.ErrEventFull, wantStatus: http.StatusConflict, wantCode: h.ErrCodeConflict},
		{name: "already registered", svcErr: domain.ErrAlreadyRegistered, wantStatus: http.StatusConflict, wantCode: h.ErrCodeConflict},
		{name: "deadline passed", svcErr: domain.ErrRegistrationClosed, wantStatus: http.StatusBadRequest, wantCode: h.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regSvc := &fakeRegistrationService{
				err: tt.svcErr,
				reg: &domain.Registration{ID: "reg-1", EventID: "ev-1", StudentID: "stu-1", Status: domain.RegistrationStatusRegistered},
			}
			ctrl := NewEventController(testLogger(), &fakeEventService{}, regSvc)

			req := authedRequest(http.MethodPost, "/events/ev-1/register", "", student)
			req.SetPathValue("eventID", "ev-1")
			rec := httptest.NewRecorder()
			ctrl.Register(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				var resp h.APIResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestEventController_Create_Unauthenticated(t *testing.T) {
	ctrl := NewEventController(testLogger(), &fakeEventService{}, &fakeRegistrationService{})

	req := httptest.NewRequest(http.MethodPost, "/events",
		strings.NewReader(`{"name":"Quiz","date":"2026-10-01T10:00:00Z","max_participants":10,"coins_allocated":100,"number_of_winners":1}`))
	rec := httptest.NewRecorder()
	ctrl.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
