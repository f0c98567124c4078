package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campuscoins/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, every method returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if e.Status == domain.EventStatusUpcoming && !e.Date.Before(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Complete(ctx context.Context, id string, winners []string) error {
	if f.err != nil {
		return f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if e.Status != domain.EventStatusUpcoming {
		return domain.ErrEventCompleted
	}
	e.Status = domain.EventStatusCompleted
	e.Winners = winners
	return nil
}

func (f *fakeEventRepo) CountAll(ctx context.Context) (int, error) {
	return len(f.byID), f.err
}

func (f *fakeEventRepo) CountUpcoming(ctx context.Context, now time.Time) (int, error) {
	events, err := f.ListUpcoming(ctx, now)
	return len(events), err
}

// fakeRegistrationRepo is an in-memory RegistrationRepository keyed by
// (event, student).
type fakeRegistrationRepo struct {
	byKey  map[string]*domain.Registration
	nextID int
	err    error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		byKey:  make(map[string]*domain.Registration),
		nextID: 1,
	}
}

func regKey(eventID, studentID string) string { return eventID + "/" + studentID }

func (f *fakeRegistrationRepo) add(eventID, studentID, status string) *domain.Registration {
	reg := &domain.Registration{
		ID:        fmt.Sprintf("reg-%d", f.nextID),
		EventID:   eventID,
		StudentID: studentID,
		Status:    status,
	}
	f.nextID++
	f.byKey[regKey(eventID, studentID)] = reg
	return reg
}

func (f *fakeRegistrationRepo) Register(ctx context.Context, eventID, studentID string) (*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	if reg, ok := f.byKey[regKey(eventID, studentID)]; ok && reg.Status != domain.RegistrationStatusCancelled {
		return nil, domain.ErrAlreadyRegistered
	}
	return f.add(eventID, studentID, domain.RegistrationStatusRegistered), nil
}

func (f *fakeRegistrationRepo) Cancel(ctx context.Context, eventID, studentID string) error {
	if f.err != nil {
		return f.err
	}
	reg, ok := f.byKey[regKey(eventID, studentID)]
	if !ok || reg.Status == domain.RegistrationStatusCancelled {
		return domain.ErrNotRegistered
	}
	reg.Status = domain.RegistrationStatusCancelled
	return nil
}

func (f *fakeRegistrationRepo) GetByEventAndStudent(ctx context.Context, eventID, studentID string) (*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	if reg, ok := f.byKey[regKey(eventID, studentID)]; ok {
		return reg, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListActiveByEventID(ctx context.Context, eventID string) ([]*domain.RegistrationWithStudent, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.RegistrationWithStudent, 0)
	for _, reg := range f.byKey {
		if reg.EventID == eventID && reg.Status != domain.RegistrationStatusCancelled {
			out = append(out, &domain.RegistrationWithStudent{Registration: reg})
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListByStudentID(ctx context.Context, studentID string) ([]*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Registration, 0)
	for _, reg := range f.byKey {
		if reg.StudentID == studentID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) CountActive(ctx context.Context, eventID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, reg := range f.byKey {
		if reg.EventID == eventID && reg.Status != domain.RegistrationStatusCancelled {
			count++
		}
	}
	return count, nil
}

func (f *fakeRegistrationRepo) CountWinnerEligible(ctx context.Context, eventID string, studentIDs []string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, id := range studentIDs {
		reg, ok := f.byKey[regKey(eventID, id)]
		if !ok {
			continue
		}
		if reg.Status == domain.RegistrationStatusRegistered || reg.Status == domain.RegistrationStatusParticipated {
			count++
		}
	}
	return count, nil
}

// fakeLedgerRepo is an in-memory CoinLedgerRepository with per-student
// balances.
type fakeLedgerRepo struct {
	balances map[string]int
	entries  []*domain.CoinHistory
	regs     *fakeRegistrationRepo // consulted by CreditEventWin when set
	failFor  map[string]error      // per-student forced CreditEventWin failures
	err      error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		balances: make(map[string]int),
		failFor:  make(map[string]error),
	}
}

func (f *fakeLedgerRepo) apply(adj *domain.CoinAdjustment) (*domain.CoinHistory, error) {
	previous, ok := f.balances[adj.StudentID]
	if !ok {
		return nil, domain.ErrStudentNotFound
	}
	newBalance := previous + adj.Amount
	if newBalance < 0 {
		return nil, domain.ErrInsufficientBalance
	}
	f.balances[adj.StudentID] = newBalance
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
		CreatedAt:       time.Now(),
	}
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeLedgerRepo) ApplyAdjustment(ctx context.Context, adj *domain.CoinAdjustment) (*domain.CoinHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.apply(adj)
}

func (f *fakeLedgerRepo) CreditEventWin(ctx context.Context, adj *domain.CoinAdjustment) (*domain.CoinHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.failFor[adj.StudentID]; ok {
		return nil, err
	}
	if f.regs != nil {
		reg, ok := f.regs.byKey[regKey(*adj.EventID, adj.StudentID)]
		if !ok || (reg.Status != domain.RegistrationStatusRegistered && reg.Status != domain.RegistrationStatusParticipated) {
			return nil, domain.ErrUnregisteredWinner
		}
		reg.Status = domain.RegistrationStatusWinner
	}
	return f.apply(adj)
}

func (f *fakeLedgerRepo) ListByStudentID(ctx context.Context, studentID string, limit int) ([]*domain.CoinHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.CoinHistory, 0)
	for _, entry := range f.entries {
		if entry.StudentID == studentID {
			out = append(out, entry)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) TotalDistributed(ctx context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	total := 0
	for _, entry := range f.entries {
		if entry.Type == domain.CoinTypeEventWin {
			total += entry.Amount
		}
	}
	return total, nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID   map[string]*domain.User
	nextID int
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:   make(map[string]*domain.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) addStudent(name, email string, coins int) *domain.User {
	u := &domain.User{
		ID:    fmt.Sprintf("stu-%d", f.nextID),
		Name:  name,
		Email: email,
		Role:  domain.RoleStudent,
		Coins: coins,
	}
	f.nextID++
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	for _, u := range f.byID {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) ListStudents(ctx context.Context) ([]*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.User, 0)
	for _, u := range f.byID {
		if u.Role == domain.RoleStudent {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SearchStudents(ctx context.Context, filter domain.StudentFilter) ([]*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.User, 0)
	for _, u := range f.byID {
		if u.Role != domain.RoleStudent {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.MinCoins != nil && u.Coins < *filter.MinCoins {
			continue
		}
		if filter.MaxCoins != nil && u.Coins > *filter.MaxCoins {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) CountStudents(ctx context.Context) (int, error) {
	students, err := f.ListStudents(ctx)
	return len(students), err
}

func (f *fakeUserRepo) TotalCoinsHeld(ctx context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	total := 0
	for _, u := range f.byID {
		if u.Role == domain.RoleStudent {
			total += u.Coins
		}
	}
	return total, nil
}

// fakeNotifier records dispatched notifications.
type fakeNotifier struct {
	dispatched []*domain.Notification
	err        error
}

func (f *fakeNotifier) Dispatch(ctx context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, n)
	return nil
}

func (f *fakeNotifier) DispatchBatch(ctx context.Context, ns []*domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, ns...)
	return nil
}
