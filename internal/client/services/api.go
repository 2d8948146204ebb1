package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/gophlink/internal/client/client"
	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
)

// AuthAPI is the unauthenticated part of the backend used by the OTP flows.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) client.Result[models.LoginPayload]
	ValidateTwoFactorOTP(ctx context.Context, req models.TwoFactorOTPRequest) client.Result[models.OTPPayload]
	SendEmailOTP(ctx context.Context, req models.EmailOTPRequest) client.Result[models.EmailOTPPayload]
	ValidateEmailOTP(ctx context.Context, req models.ValidateEmailOTPRequest) client.Result[models.OTPPayload]
	CreateUser(ctx context.Context, req models.SignupRequest) client.Result[models.StatusPayload]
}

// EntryAPI is the authenticated URL service.
type EntryAPI interface {
	Dashboard(ctx context.Context, creds client.Credentials, req models.DashboardRequest) client.Result[models.EntryList]
	SaveEntry(ctx context.Context, creds client.Credentials, req models.SaveEntryRequest) client.Result[json.RawMessage]
	UpdateEntry(ctx context.Context, creds client.Credentials, req models.UpdateEntryRequest) client.Result[models.EntryList]
	DeleteEntry(ctx context.Context, creds client.Credentials, req models.DeleteEntryRequest) client.Result[models.EntryList]
}

// AccountAPI is the authenticated account housekeeping.
type AccountAPI interface {
	ChangePassword(ctx context.Context, creds client.Credentials, req models.ChangePasswordRequest) client.Result[models.StatusPayload]
	Logout(ctx context.Context, creds client.Credentials, req models.LogoutRequest) client.Result[models.StatusPayload]
}

// SessionActivator receives the session once a login is verified.
type SessionActivator interface {
	Activate(ctx context.Context, token string, id models.Identity) error
}

// SessionManager is the part of session.Store the authenticated services use.
type SessionManager interface {
	Get() (models.Session, bool)
	Clear(ctx context.Context) error
}

// KeyProvisioner fetches a fresh session key.
type KeyProvisioner interface {
	Provision(ctx context.Context) (models.SessionKey, error)
}

func credentialsOf(s models.Session) client.Credentials {
	return client.Credentials{Token: s.Token, UserName: s.Identity.Name}
}

// failure turns a non-success result into the error shown to the user.
// Rejections carry the server's message verbatim; unrecognized answers get
// the "contact administrator" text and everything else the given fallback.
func failure[T any](r client.Result[T], fallback string) error {
	switch r.Kind {
	case client.KindRejected:
		return common.NewUserError(r.Message, ErrServerRejected)
	case client.KindUnexpected:
		if errors.Is(r.Err, client.ErrUnrecognizedResponse) {
			return common.NewUserError(common.MsgContactAdmin, r.Err)
		}
		return common.NewUserError(fallback, r.Err)
	default:
		return nil
	}
}
