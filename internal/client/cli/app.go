package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophlink/internal/client/client"
	"github.com/dmitrijs2005/gophlink/internal/client/config"
	"github.com/dmitrijs2005/gophlink/internal/client/envelope"
	"github.com/dmitrijs2005/gophlink/internal/client/keys"
	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophlink/internal/client/services"
	"github.com/dmitrijs2005/gophlink/internal/client/session"
	"github.com/dmitrijs2005/gophlink/internal/logging"
)

// challenge is what the OTP prompt needs from a login or signup flow.
type challenge interface {
	Snapshot() services.Snapshot
	RunCountdown(ctx context.Context, ticks <-chan time.Time, onTick func(services.Snapshot))
	Verify(ctx context.Context, code string) error
	Resend(ctx context.Context) error
	Abandon()
}

type loginFlow interface {
	challenge
	Submit(ctx context.Context, email, hashedPassword string) error
}

type signupFlow interface {
	challenge
	Submit(ctx context.Context, email string) error
	Complete(ctx context.Context, fullName, hashedPassword string) (string, error)
}

type sessionStore interface {
	Get() (models.Session, bool)
	Unload(ctx context.Context) error
}

type keyEnsurer interface {
	Ensure(ctx context.Context) (models.SessionKey, error)
}

// App is the wired client.
type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	keys     keyEnsurer
	sessions sessionStore
	login    loginFlow
	signup   signupFlow
	entries  services.EntryService
	account  services.AccountService
	reader   *bufio.Reader
	out      io.Writer

	// newTicker drives the OTP countdown.
	newTicker func() (<-chan time.Time, func())
}

// NewApp opens the local state, restores a persisted session and wires the
// services. A key fetch failure is not fatal: every command retries it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.StateDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "dsn", c.StateDSN, "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerURL, nil, client.WithLogger(log.With("component", "http")))
	prov := keys.NewProvisioner(api, log.With("component", "keys"))
	api.SetSealer(envelope.New(prov))

	store := session.NewStore(metadata.NewSQLiteRepository(db), prov, log.With("component", "session"))
	restored, err := store.Restore(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if restored {
		log.Info(ctx, "session restored")
	}

	if _, err := prov.Ensure(ctx); err != nil {
		log.Warn(ctx, "cannot fetch session key", "error", err)
	}

	return &App{
		config:    c,
		log:       log,
		db:        db,
		keys:      prov,
		sessions:  store,
		login:     services.NewLoginFlow(api, store, c.ProductName, c.OTPSeconds(), log.With("flow", "login")),
		signup:    services.NewSignupFlow(api, c.ProductName, c.OTPSeconds(), log.With("flow", "signup")),
		entries:   services.NewEntryService(api, store, db, c.ProductName, log.With("component", "entries")),
		account:   services.NewAccountService(api, store, prov, db, c.ProductName, c.BcryptCost, log.With("component", "account")),
		reader:    bufio.NewReader(os.Stdin),
		out:       &syncWriter{w: os.Stdout},
		newTicker: secondTicker,
	}, nil
}

// Run starts the REPL and blocks until the user leaves or ctx is done. On
// the way out the session store is unloaded and the database closed, also
// after an interrupt.
func (a *App) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Root(ctx)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// the REPL may be blocked on stdin; it dies with the process
		a.say("\nBye!")
	}
	return a.Close(context.WithoutCancel(ctx))
}

// Close unloads the session store and releases the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.sessions != nil {
		if err := a.sessions.Unload(ctx); err != nil {
			errs = append(errs, fmt.Errorf("unload session: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	if a.sessions == nil {
		return false
	}
	_, ok := a.sessions.Get()
	return ok
}

func (a *App) userName() string {
	if a.sessions == nil {
		return ""
	}
	s, ok := a.sessions.Get()
	if !ok {
		return ""
	}
	if s.Identity.Name != "" {
		return s.Identity.Name
	}
	return s.Identity.Email
}

// ensureKey makes sure a session key is present before a sealed call.
func (a *App) ensureKey(ctx context.Context) error {
	if a.keys == nil {
		return nil
	}
	if _, err := a.keys.Ensure(ctx); err != nil {
		a.log.Warn(ctx, "cannot fetch session key", "error", err)
		a.say("Server is unreachable. Please check your network connection and try again.")
		return err
	}
	return nil
}

func (a *App) say(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) sayf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

func secondTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}

// syncWriter serializes writes from the REPL and the countdown goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
