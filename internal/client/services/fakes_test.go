package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophlink/internal/client/client"
	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/stretchr/testify/require"
)

func ok[T any](p T) client.Result[T] {
	return client.Result[T]{Kind: client.KindSuccess, Payload: p}
}

func rejectedWith[T any](msg string) client.Result[T] {
	return client.Result[T]{Kind: client.KindRejected, Message: msg}
}

func unexpectedWith[T any](err error) client.Result[T] {
	return client.Result[T]{Kind: client.KindUnexpected, Err: err}
}

// fakeAuthAPI returns queued results in order; hooks run before a result is
// returned, which is where tests interleave other operations.
type fakeAuthAPI struct {
	mu sync.Mutex

	logins    []client.Result[models.LoginPayload]
	validates []client.Result[models.OTPPayload]
	emailOTPs []client.Result[models.EmailOTPPayload]
	emailVals []client.Result[models.OTPPayload]
	creates   []client.Result[models.StatusPayload]

	onValidate func()

	loginReqs    []models.LoginRequest
	validateReqs []models.TwoFactorOTPRequest
	emailOTPReqs []models.EmailOTPRequest
	emailValReqs []models.ValidateEmailOTPRequest
	createReqs   []models.SignupRequest
}

func pop[T any](q *[]client.Result[T]) client.Result[T] {
	if len(*q) == 0 {
		return client.Result[T]{Kind: client.KindUnexpected, Err: client.ErrUnavailable}
	}
	r := (*q)[0]
	*q = (*q)[1:]
	return r
}

func (f *fakeAuthAPI) Login(ctx context.Context, req models.LoginRequest) client.Result[models.LoginPayload] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginReqs = append(f.loginReqs, req)
	return pop(&f.logins)
}

func (f *fakeAuthAPI) ValidateTwoFactorOTP(ctx context.Context, req models.TwoFactorOTPRequest) client.Result[models.OTPPayload] {
	f.mu.Lock()
	f.validateReqs = append(f.validateReqs, req)
	hook := f.onValidate
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return pop(&f.validates)
}

func (f *fakeAuthAPI) SendEmailOTP(ctx context.Context, req models.EmailOTPRequest) client.Result[models.EmailOTPPayload] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailOTPReqs = append(f.emailOTPReqs, req)
	return pop(&f.emailOTPs)
}

func (f *fakeAuthAPI) ValidateEmailOTP(ctx context.Context, req models.ValidateEmailOTPRequest) client.Result[models.OTPPayload] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailValReqs = append(f.emailValReqs, req)
	return pop(&f.emailVals)
}

func (f *fakeAuthAPI) CreateUser(ctx context.Context, req models.SignupRequest) client.Result[models.StatusPayload] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createReqs = append(f.createReqs, req)
	return pop(&f.creates)
}

type fakeEntryAPI struct {
	dashboards []client.Result[models.EntryList]
	saves      []client.Result[json.RawMessage]
	updates    []client.Result[models.EntryList]
	deletes    []client.Result[models.EntryList]

	creds      []client.Credentials
	dashReqs   []models.DashboardRequest
	saveReqs   []models.SaveEntryRequest
	updateReqs []models.UpdateEntryRequest
	deleteReqs []models.DeleteEntryRequest
}

func (f *fakeEntryAPI) Dashboard(ctx context.Context, c client.Credentials, req models.DashboardRequest) client.Result[models.EntryList] {
	f.creds = append(f.creds, c)
	f.dashReqs = append(f.dashReqs, req)
	return pop(&f.dashboards)
}

func (f *fakeEntryAPI) SaveEntry(ctx context.Context, c client.Credentials, req models.SaveEntryRequest) client.Result[json.RawMessage] {
	f.creds = append(f.creds, c)
	f.saveReqs = append(f.saveReqs, req)
	return pop(&f.saves)
}

func (f *fakeEntryAPI) UpdateEntry(ctx context.Context, c client.Credentials, req models.UpdateEntryRequest) client.Result[models.EntryList] {
	f.creds = append(f.creds, c)
	f.updateReqs = append(f.updateReqs, req)
	return pop(&f.updates)
}

func (f *fakeEntryAPI) DeleteEntry(ctx context.Context, c client.Credentials, req models.DeleteEntryRequest) client.Result[models.EntryList] {
	f.creds = append(f.creds, c)
	f.deleteReqs = append(f.deleteReqs, req)
	return pop(&f.deletes)
}

type fakeAccountAPI struct {
	changes []client.Result[models.StatusPayload]
	logouts []client.Result[models.StatusPayload]

	changeReqs []models.ChangePasswordRequest
	logoutReqs []models.LogoutRequest
}

func (f *fakeAccountAPI) ChangePassword(ctx context.Context, c client.Credentials, req models.ChangePasswordRequest) client.Result[models.StatusPayload] {
	f.changeReqs = append(f.changeReqs, req)
	return pop(&f.changes)
}

func (f *fakeAccountAPI) Logout(ctx context.Context, c client.Credentials, req models.LogoutRequest) client.Result[models.StatusPayload] {
	f.logoutReqs = append(f.logoutReqs, req)
	return pop(&f.logouts)
}

// fakeSessions is an in-memory session store.
type fakeSessions struct {
	mu          sync.Mutex
	current     *models.Session
	activateErr error
	clears      int
}

func (s *fakeSessions) Activate(ctx context.Context, token string, id models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activateErr != nil {
		return s.activateErr
	}
	s.current = &models.Session{Token: token, Identity: id}
	return nil
}

func (s *fakeSessions) Get() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Session{}, false
	}
	return *s.current, true
}

func (s *fakeSessions) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.clears++
	return nil
}

type fakeKeys struct {
	err   error
	calls int
}

func (k *fakeKeys) Provision(ctx context.Context) (models.SessionKey, error) {
	k.calls++
	if k.err != nil {
		return models.SessionKey{}, k.err
	}
	return models.SessionKey{ID: "kid-new", Material: make([]byte, 32)}, nil
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
