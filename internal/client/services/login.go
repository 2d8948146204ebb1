package services

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophlink/internal/client/client"
	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/logging"
)

// LoginFlow drives the two-step login: credentials, then a one-time code.
//
//	Idle -> CredentialsSubmitted -> OtpPending -> OtpVerified
//	                             \-> SubmissionFailed
//	OtpPending -(120 ticks)-> OtpExpired -(resend)-> OtpPending
//
// A verified login activates the session. The password is expected to be
// prepared already (cryptox.PreparePassword) and is resent verbatim.
type LoginFlow struct {
	*otpMachine

	api      AuthAPI
	sessions SessionActivator
	product  string
	log      logging.Logger

	mu     sync.Mutex
	email  string
	hashed string
}

func NewLoginFlow(api AuthAPI, sessions SessionActivator, product string, ttlSeconds int, log logging.Logger) *LoginFlow {
	return &LoginFlow{
		otpMachine: newOTPMachine(ttlSeconds),
		api:        api,
		sessions:   sessions,
		product:    product,
		log:        log,
	}
}

// Submit sends the credentials and, on success, starts an OTP challenge.
func (f *LoginFlow) Submit(ctx context.Context, email, hashedPassword string) error {
	email = strings.TrimSpace(email)
	if email == "" || hashedPassword == "" {
		return common.NewUserError("Email and password are required.", ErrInvalidInput)
	}
	if err := f.beginSubmit(); err != nil {
		return err
	}

	f.mu.Lock()
	f.email, f.hashed = email, hashedPassword
	f.mu.Unlock()

	otpID, name, err := f.login(ctx, email, hashedPassword, common.MsgSendOTPFailed)
	if err == nil {
		f.log.Info(ctx, "otp issued", "otp_id", otpID)
	}
	return f.finishSubmit(err, otpID, name)
}

// Resend requests a new code with the credentials of the last submission.
// It is allowed while a verification is still in flight.
func (f *LoginFlow) Resend(ctx context.Context) error {
	if err := f.beginResend(); err != nil {
		return err
	}

	f.mu.Lock()
	email, hashed := f.email, f.hashed
	f.mu.Unlock()

	otpID, name, err := f.login(ctx, email, hashed, common.MsgResendOTPFailed)
	if err == nil {
		f.log.Info(ctx, "otp reissued", "otp_id", otpID)
	}
	return f.finishResend(err, otpID, name)
}

func (f *LoginFlow) login(ctx context.Context, email, hashed, fallback string) (string, string, error) {
	res := f.api.Login(ctx, models.LoginRequest{
		SUserIdentifier: email,
		SSHAPassword:    hashed,
		SProductName:    f.product,
	})
	if !res.OK() {
		return "", "", failure(res, fallback)
	}
	if res.Payload.SOtpToken == "" {
		return "", "", common.NewUserError(common.MsgContactAdmin, client.ErrUnrecognizedResponse)
	}
	return res.Payload.SOtpToken, res.Payload.SUsername, nil
}

// Verify checks code against the pending challenge. It is rejected without
// contacting the server unless an OTP is pending.
func (f *LoginFlow) Verify(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	otpID, err := f.beginVerify()
	if err != nil {
		return err
	}

	f.mu.Lock()
	email := f.email
	f.mu.Unlock()

	res := f.api.ValidateTwoFactorOTP(ctx, models.TwoFactorOTPRequest{
		SOtp:         code,
		SOtpID:       otpID,
		SUserName:    email,
		SProductName: f.product,
	})

	var callErr error
	if !res.OK() {
		callErr = failure(res, common.MsgVerifyOTPFailed)
	}

	err = f.finishVerify(callErr, code, res.Payload.SEncryptedValue, func(name string) error {
		if res.Payload.SToken == "" {
			return common.NewUserError(common.MsgContactAdmin, client.ErrUnrecognizedResponse)
		}
		if err := f.sessions.Activate(ctx, res.Payload.SToken, models.Identity{Name: name, Email: email}); err != nil {
			return common.NewUserError(common.MsgUnexpected, err)
		}
		return nil
	})
	if err != nil {
		f.log.Warn(ctx, "otp verification failed", "otp_id", otpID, "error", causeOf(err))
		return err
	}

	f.mu.Lock()
	f.hashed = ""
	f.mu.Unlock()
	f.log.Info(ctx, "login verified", "user", email)
	return nil
}

// Abandon drops the challenge and the remembered credentials.
func (f *LoginFlow) Abandon() {
	f.otpMachine.Abandon()
	f.mu.Lock()
	f.email, f.hashed = "", ""
	f.mu.Unlock()
}
