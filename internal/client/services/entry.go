package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/client/repositories/entries"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/dbx"
	"github.com/dmitrijs2005/gophlink/internal/logging"
)

// EntryService manages the signed-in user's shortened URLs. The backend owns
// the list; the local cache is replaced with every list it returns.
type EntryService interface {
	List(ctx context.Context) ([]models.Entry, error)
	Cached(ctx context.Context) ([]models.Entry, error)
	Get(ctx context.Context, key string) (*models.Entry, error)
	Add(ctx context.Context, longURL string, expiryDays int) ([]models.Entry, error)
	Update(ctx context.Context, shortURL, longURL string, expiryDays int) ([]models.Entry, error)
	Delete(ctx context.Context, shortURL string) ([]models.Entry, error)
}

type entryService struct {
	api      EntryAPI
	sessions SessionManager
	db       *sql.DB
	product  string
	log      logging.Logger
}

func NewEntryService(api EntryAPI, sessions SessionManager, db *sql.DB, product string, log logging.Logger) EntryService {
	return &entryService{api: api, sessions: sessions, db: db, product: product, log: log}
}

func (s *entryService) session() (models.Session, error) {
	sess, ok := s.sessions.Get()
	if !ok {
		return models.Session{}, common.NewUserError(common.MsgNotSignedIn, ErrNotAuthenticated)
	}
	return sess, nil
}

// List fetches the dashboard and refreshes the cache.
func (s *entryService) List(ctx context.Context) ([]models.Entry, error) {
	sess, err := s.session()
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, sess)
}

func (s *entryService) refresh(ctx context.Context, sess models.Session) ([]models.Entry, error) {
	res := s.api.Dashboard(ctx, credentialsOf(sess), models.DashboardRequest{
		SIdentifier:  sess.Identity.Email,
		SProductName: s.product,
	})
	if !res.OK() {
		return nil, s.fail(ctx, "dashboard", res.Kind.String(), failure(res, common.MsgRequestFailed))
	}
	return s.store(ctx, res.Payload)
}

// Cached returns the last list the server returned, without a request.
func (s *entryService) Cached(ctx context.Context) ([]models.Entry, error) {
	list, err := entries.NewSQLiteRepository(s.db).GetAll(ctx)
	if err != nil {
		return nil, common.NewUserError(common.MsgUnexpected, err)
	}
	return list, nil
}

// Get looks an entry up in the cache by short URL or short code.
func (s *entryService) Get(ctx context.Context, key string) (*models.Entry, error) {
	e, err := entries.NewSQLiteRepository(s.db).GetByKey(ctx, strings.TrimSpace(key))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewUserError(fmt.Sprintf("No entry %q. Run list to refresh.", key), err)
	}
	if err != nil {
		return nil, common.NewUserError(common.MsgUnexpected, err)
	}
	return e, nil
}

// Add creates an entry, then re-fetches the list.
func (s *entryService) Add(ctx context.Context, longURL string, expiryDays int) ([]models.Entry, error) {
	longURL, err := validateEntry(longURL, expiryDays)
	if err != nil {
		return nil, err
	}
	sess, err := s.session()
	if err != nil {
		return nil, err
	}

	res := s.api.SaveEntry(ctx, credentialsOf(sess), models.SaveEntryRequest{
		SLongURL:   longURL,
		IExpiryDay: expiryDays,
		SUser:      sess.Identity.Name,
	})
	if !res.OK() {
		return nil, s.fail(ctx, "save", res.Kind.String(), failure(res, common.MsgRequestFailed))
	}
	return s.refresh(ctx, sess)
}

// Update changes the target of an entry; the cache becomes the list the
// server returns.
func (s *entryService) Update(ctx context.Context, shortURL, longURL string, expiryDays int) ([]models.Entry, error) {
	shortURL = strings.TrimSpace(shortURL)
	if shortURL == "" {
		return nil, common.NewUserError("Short URL is required.", ErrInvalidInput)
	}
	longURL, err := validateEntry(longURL, expiryDays)
	if err != nil {
		return nil, err
	}
	sess, err := s.session()
	if err != nil {
		return nil, err
	}

	res := s.api.UpdateEntry(ctx, credentialsOf(sess), models.UpdateEntryRequest{
		SShortURL:  shortURL,
		SLongURL:   longURL,
		IExpiryDay: expiryDays,
		SUser:      sess.Identity.Name,
	})
	if !res.OK() {
		return nil, s.fail(ctx, "update", res.Kind.String(), failure(res, common.MsgRequestFailed))
	}
	return s.store(ctx, res.Payload)
}

// Delete removes an entry. Asking the user for confirmation is the caller's
// job.
func (s *entryService) Delete(ctx context.Context, shortURL string) ([]models.Entry, error) {
	shortURL = strings.TrimSpace(shortURL)
	if shortURL == "" {
		return nil, common.NewUserError("Short URL is required.", ErrInvalidInput)
	}
	sess, err := s.session()
	if err != nil {
		return nil, err
	}

	res := s.api.DeleteEntry(ctx, credentialsOf(sess), models.DeleteEntryRequest{
		SShortURL: shortURL,
		SUser:     sess.Identity.Name,
	})
	if !res.OK() {
		return nil, s.fail(ctx, "delete", res.Kind.String(), failure(res, common.MsgRequestFailed))
	}
	return s.store(ctx, res.Payload)
}

func (s *entryService) store(ctx context.Context, list models.EntryList) ([]models.Entry, error) {
	out := []models.Entry(list)
	if out == nil {
		out = []models.Entry{}
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return entries.NewSQLiteRepository(tx).ReplaceAll(ctx, out)
	})
	if err != nil {
		s.log.Error(ctx, "cannot cache entries", "error", err)
		return nil, common.NewUserError(common.MsgUnexpected, err)
	}
	return out, nil
}

func (s *entryService) fail(ctx context.Context, op, kind string, err error) error {
	s.log.Warn(ctx, "entry call failed", "op", op, "kind", kind, "error", causeOf(err))
	return err
}

func validateEntry(longURL string, expiryDays int) (string, error) {
	longURL = strings.TrimSpace(longURL)
	u, err := url.Parse(longURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", common.NewUserError("Please enter a valid http(s) URL.", ErrInvalidInput)
	}
	if expiryDays <= 0 {
		return "", common.NewUserError("Expiry must be at least one day.", ErrInvalidInput)
	}
	return longURL, nil
}
