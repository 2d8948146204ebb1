package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
)

const (
	pathKey              = "/gateway/key"
	pathLogin            = "/auth/user-login"
	pathValidateTFAOTP   = "/auth/validate-tfa-otp"
	pathSendEmailOTP     = "/communications/send-email-otp"
	pathValidateEmailOTP = "/communications/validate-email-otp"
	pathCreateUser       = "/auth/create-user"
	pathChangePassword   = "/auth/change-password"
	pathLogout           = "/auth/logout"
	pathDashboard        = "/url-service/get-dashboard-details"
	pathSaveEntry        = "/url-service/save-data"
	pathUpdateEntry      = "/url-service/update-data"
	pathDeleteEntry      = "/url-service/delete-data"
)

func always[T any](*T) bool { return true }

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) Result[models.LoginPayload] {
	return call(ctx, c, pathLogin, req, nil, func(p *models.LoginPayload) bool {
		return p.SStatus == common.StatusSuccess
	})
}

// ValidateTwoFactorOTP checks a login OTP. Success only means the server said
// SUCCESS; comparing the returned digest is up to the caller.
func (c *HTTPClient) ValidateTwoFactorOTP(ctx context.Context, req models.TwoFactorOTPRequest) Result[models.OTPPayload] {
	return call(ctx, c, pathValidateTFAOTP, req, nil, otpSucceeded)
}

func (c *HTTPClient) SendEmailOTP(ctx context.Context, req models.EmailOTPRequest) Result[models.EmailOTPPayload] {
	return call(ctx, c, pathSendEmailOTP, req, nil, func(p *models.EmailOTPPayload) bool {
		return p.BSuccess
	})
}

func (c *HTTPClient) ValidateEmailOTP(ctx context.Context, req models.ValidateEmailOTPRequest) Result[models.OTPPayload] {
	return call(ctx, c, pathValidateEmailOTP, req, nil, otpSucceeded)
}

func (c *HTTPClient) CreateUser(ctx context.Context, req models.SignupRequest) Result[models.StatusPayload] {
	return call(ctx, c, pathCreateUser, req, nil, func(p *models.StatusPayload) bool {
		return p.SStatus == common.StatusSuccess
	})
}

func (c *HTTPClient) ChangePassword(ctx context.Context, creds Credentials, req models.ChangePasswordRequest) Result[models.StatusPayload] {
	return call(ctx, c, pathChangePassword, req, &creds, func(p *models.StatusPayload) bool {
		return p.SStatus == common.StatusPasswordChanged
	})
}

// Logout accepts any payload as success; the backend reports no status for it.
func (c *HTTPClient) Logout(ctx context.Context, creds Credentials, req models.LogoutRequest) Result[models.StatusPayload] {
	return call(ctx, c, pathLogout, req, &creds, always[models.StatusPayload])
}

func (c *HTTPClient) Dashboard(ctx context.Context, creds Credentials, req models.DashboardRequest) Result[models.EntryList] {
	return call(ctx, c, pathDashboard, req, &creds, always[models.EntryList])
}

// SaveEntry creates an entry. Its payload is returned raw: callers re-fetch
// the dashboard instead of trusting it.
func (c *HTTPClient) SaveEntry(ctx context.Context, creds Credentials, req models.SaveEntryRequest) Result[json.RawMessage] {
	return call(ctx, c, pathSaveEntry, req, &creds, always[json.RawMessage])
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, creds Credentials, req models.UpdateEntryRequest) Result[models.EntryList] {
	return call(ctx, c, pathUpdateEntry, req, &creds, always[models.EntryList])
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, creds Credentials, req models.DeleteEntryRequest) Result[models.EntryList] {
	return call(ctx, c, pathDeleteEntry, req, &creds, always[models.EntryList])
}

func otpSucceeded(p *models.OTPPayload) bool {
	return p.SStatus == common.StatusSuccess
}
