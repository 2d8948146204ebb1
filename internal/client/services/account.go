package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/client/repositories/entries"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/cryptox"
	"github.com/dmitrijs2005/gophlink/internal/logging"
)

// AccountService covers what a signed-in user does with the account itself.
type AccountService interface {
	ChangePassword(ctx context.Context, oldPassword, newPassword []byte) (string, error)
	Logout(ctx context.Context) error
}

type accountService struct {
	api      AccountAPI
	sessions SessionManager
	keys     KeyProvisioner
	db       *sql.DB
	product  string
	cost     int
	log      logging.Logger
}

func NewAccountService(api AccountAPI, sessions SessionManager, keys KeyProvisioner, db *sql.DB, product string, bcryptCost int, log logging.Logger) AccountService {
	return &accountService{
		api:      api,
		sessions: sessions,
		keys:     keys,
		db:       db,
		product:  product,
		cost:     bcryptCost,
		log:      log,
	}
}

// ChangePassword prepares both passwords and asks the backend to swap them.
// It returns the backend's confirmation message.
func (s *accountService) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) (string, error) {
	sess, ok := s.sessions.Get()
	if !ok {
		return "", common.NewUserError(common.MsgNotSignedIn, ErrNotAuthenticated)
	}
	if len(oldPassword) == 0 || len(newPassword) == 0 {
		return "", common.NewUserError("Both passwords are required.", ErrInvalidInput)
	}

	oldHash, err := cryptox.PreparePassword(oldPassword, s.cost)
	if err != nil {
		return "", common.NewUserError(common.MsgUnexpected, err)
	}
	newHash, err := cryptox.PreparePassword(newPassword, s.cost)
	if err != nil {
		return "", common.NewUserError(common.MsgUnexpected, err)
	}

	res := s.api.ChangePassword(ctx, credentialsOf(sess), models.ChangePasswordRequest{
		SUserIdentifier: sess.Identity.Email,
		SOldPassword:    oldHash,
		SNewPassword:    newHash,
		SProductName:    s.product,
	})
	if !res.OK() {
		err := failure(res, common.MsgRequestFailed)
		s.log.Warn(ctx, "change password failed", "kind", res.Kind.String(), "error", causeOf(err))
		return "", err
	}
	return res.Payload.Message(), nil
}

// Logout tells the backend, then clears the session and the entry cache
// whatever it answered, and provisions a fresh key for the next login.
func (s *accountService) Logout(ctx context.Context) error {
	if sess, ok := s.sessions.Get(); ok {
		res := s.api.Logout(ctx, credentialsOf(sess), models.LogoutRequest{
			SUserName:    sess.Identity.Email,
			SProductName: s.product,
		})
		if !res.OK() {
			s.log.Warn(ctx, "logout call failed", "kind", res.Kind.String(), "message", res.Message, "error", res.Err)
		}
	}

	var errs []error
	if err := s.sessions.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := entries.NewSQLiteRepository(s.db).Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Error(ctx, "cannot clear local state", "error", err)
		return common.NewUserError(common.MsgUnexpected, err)
	}

	if _, err := s.keys.Provision(ctx); err != nil {
		return common.NewUserError("Signed out, but a new session key could not be obtained. Please try again later.", err)
	}
	s.log.Info(ctx, "signed out")
	return nil
}
