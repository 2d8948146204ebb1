package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophlink/internal/client/config"
	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/client/services"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	i := 0
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if i >= len(pws) {
			return nil, io.EOF
		}
		p := []byte(pws[i])
		i++
		return p, nil
	}
	t.Cleanup(func() { getPassword = orig })
}

type testApp struct {
	*App
	buf      *bytes.Buffer
	sessions *fakeSessions
	keys     *fakeKeys
	login    *fakeLogin
	signup   *fakeSignup
	entries  *fakeEntries
	account  *fakeAccount
}

func newTestApp(lines ...string) *testApp {
	buf := &bytes.Buffer{}
	ta := &testApp{
		buf:      buf,
		sessions: &fakeSessions{},
		keys:     &fakeKeys{},
		login:    &fakeLogin{},
		signup:   &fakeSignup{},
		entries:  &fakeEntries{},
		account:  &fakeAccount{},
	}
	ta.login.sessions = ta.sessions
	ta.account.sessions = ta.sessions

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost

	ta.App = &App{
		config:    cfg,
		log:       logging.Discard(),
		keys:      ta.keys,
		sessions:  ta.sessions,
		login:     ta.login,
		signup:    ta.signup,
		entries:   ta.entries,
		account:   ta.account,
		reader:    readerFromLines(lines...),
		out:       &syncWriter{w: buf},
		newTicker: func() (<-chan time.Time, func()) { return nil, func() {} },
	}
	return ta
}

func (ta *testApp) output() string { return ta.buf.String() }

func (ta *testApp) signIn(name, email string) {
	ta.sessions.sess = &models.Session{Token: "tok", Identity: models.Identity{Name: name, Email: email}}
}

func rejection(msg string) error {
	return common.NewUserError(msg, services.ErrServerRejected)
}

// ------------ fakes ------------

type fakeSessions struct {
	sess      *models.Session
	unloads   int
	unloadErr error
}

func (f *fakeSessions) Get() (models.Session, bool) {
	if f.sess == nil {
		return models.Session{}, false
	}
	return *f.sess, true
}

func (f *fakeSessions) Unload(context.Context) error {
	f.unloads++
	return f.unloadErr
}

type fakeKeys struct {
	calls int
	err   error
}

func (f *fakeKeys) Ensure(context.Context) (models.SessionKey, error) {
	f.calls++
	return models.SessionKey{ID: "k"}, f.err
}

type fakeChallenge struct {
	snap       services.Snapshot
	verifyErrs []error
	verified   []string
	onVerified func()
	resendErr  error
	resends    int
	abandoned  int
}

func (f *fakeChallenge) Snapshot() services.Snapshot { return f.snap }

func (f *fakeChallenge) RunCountdown(ctx context.Context, _ <-chan time.Time, _ func(services.Snapshot)) {
	<-ctx.Done()
}

func (f *fakeChallenge) Verify(_ context.Context, code string) error {
	f.verified = append(f.verified, code)
	if len(f.verifyErrs) > 0 {
		err := f.verifyErrs[0]
		f.verifyErrs = f.verifyErrs[1:]
		if err != nil {
			return err
		}
	}
	f.snap.State = services.StateOtpVerified
	if f.onVerified != nil {
		f.onVerified()
	}
	return nil
}

func (f *fakeChallenge) Resend(context.Context) error {
	f.resends++
	if f.resendErr != nil {
		return f.resendErr
	}
	f.snap = services.Snapshot{State: services.StateOtpPending, Remaining: 120}
	return nil
}

func (f *fakeChallenge) Abandon() {
	f.abandoned++
	f.snap = services.Snapshot{}
}

type fakeLogin struct {
	fakeChallenge
	sessions    *fakeSessions
	submitEmail string
	submitHash  string
	submitErr   error
	submits     int
}

func (f *fakeLogin) Submit(_ context.Context, email, hashed string) error {
	f.submits++
	f.submitEmail, f.submitHash = email, hashed
	if f.submitErr != nil {
		return f.submitErr
	}
	f.snap = services.Snapshot{State: services.StateOtpPending, Remaining: 120, OtpID: "otp-1", DisplayName: "Alice"}
	f.onVerified = func() {
		f.sessions.sess = &models.Session{Token: "tok", Identity: models.Identity{Name: "Alice", Email: email}}
	}
	return nil
}

type fakeSignup struct {
	fakeChallenge
	submitEmail  string
	submitErr    error
	completeName string
	completeHash string
	completeMsg  string
	completeErr  error
	completes    int
}

func (f *fakeSignup) Submit(_ context.Context, email string) error {
	f.submitEmail = email
	if f.submitErr != nil {
		return f.submitErr
	}
	f.snap = services.Snapshot{State: services.StateOtpPending, Remaining: 120, OtpID: "otp-1"}
	return nil
}

func (f *fakeSignup) Complete(_ context.Context, name, hashed string) (string, error) {
	f.completes++
	f.completeName, f.completeHash = name, hashed
	return f.completeMsg, f.completeErr
}

type fakeEntries struct {
	list      []models.Entry
	cached    []models.Entry
	listErr   error
	listCalls int

	getKey string
	getOut *models.Entry
	getErr error

	addURL  string
	addDays int
	addErr  error

	updShort string
	updURL   string
	updDays  int
	updErr   error

	delShort string
	delCalls int
	delErr   error
}

func (f *fakeEntries) List(context.Context) ([]models.Entry, error) {
	f.listCalls++
	return f.list, f.listErr
}

func (f *fakeEntries) Cached(context.Context) ([]models.Entry, error) {
	return f.cached, nil
}

func (f *fakeEntries) Get(_ context.Context, key string) (*models.Entry, error) {
	f.getKey = key
	return f.getOut, f.getErr
}

func (f *fakeEntries) Add(_ context.Context, longURL string, days int) ([]models.Entry, error) {
	f.addURL, f.addDays = longURL, days
	return f.list, f.addErr
}

func (f *fakeEntries) Update(_ context.Context, short, longURL string, days int) ([]models.Entry, error) {
	f.updShort, f.updURL, f.updDays = short, longURL, days
	return f.list, f.updErr
}

func (f *fakeEntries) Delete(_ context.Context, short string) ([]models.Entry, error) {
	f.delCalls++
	f.delShort = short
	return f.list, f.delErr
}

type fakeAccount struct {
	oldPassword []byte
	newPassword []byte
	changeMsg   string
	changeErr   error
	logouts     int
	logoutErr   error
	sessions    *fakeSessions
}

func (f *fakeAccount) ChangePassword(_ context.Context, oldPassword, newPassword []byte) (string, error) {
	f.oldPassword = append([]byte(nil), oldPassword...)
	f.newPassword = append([]byte(nil), newPassword...)
	return f.changeMsg, f.changeErr
}

func (f *fakeAccount) Logout(context.Context) error {
	f.logouts++
	if f.sessions != nil {
		f.sessions.sess = nil
	}
	return f.logoutErr
}
