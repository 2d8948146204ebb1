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

// SignupFlow verifies an email address with a one-time code and then creates
// the account. It follows the same challenge rules as LoginFlow but never
// creates a session.
type SignupFlow struct {
	*otpMachine

	api     AuthAPI
	product string
	log     logging.Logger

	mu    sync.Mutex
	email string
}

func NewSignupFlow(api AuthAPI, product string, ttlSeconds int, log logging.Logger) *SignupFlow {
	return &SignupFlow{
		otpMachine: newOTPMachine(ttlSeconds),
		api:        api,
		product:    product,
		log:        log,
	}
}

// Submit asks the backend to mail a verification code to email.
func (f *SignupFlow) Submit(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return common.NewUserError("Please enter a valid email address.", ErrInvalidInput)
	}
	if err := f.beginSubmit(); err != nil {
		return err
	}

	f.mu.Lock()
	f.email = email
	f.mu.Unlock()

	otpID, err := f.sendOTP(ctx, email, common.MsgSendOTPFailed)
	return f.finishSubmit(err, otpID, email)
}

// Resend mails a new code to the same address.
func (f *SignupFlow) Resend(ctx context.Context) error {
	if err := f.beginResend(); err != nil {
		return err
	}

	f.mu.Lock()
	email := f.email
	f.mu.Unlock()

	otpID, err := f.sendOTP(ctx, email, common.MsgResendOTPFailed)
	return f.finishResend(err, otpID, email)
}

func (f *SignupFlow) sendOTP(ctx context.Context, email, fallback string) (string, error) {
	res := f.api.SendEmailOTP(ctx, models.EmailOTPRequest{
		SEmailID:     email,
		SEmailType:   common.EmailTypeSignupOTP,
		BOtpRequired: true,
		SProductName: f.product,
	})
	if !res.OK() {
		return "", failure(res, fallback)
	}
	if res.Payload.SOtp == "" {
		return "", common.NewUserError(common.MsgContactAdmin, client.ErrUnrecognizedResponse)
	}
	f.log.Info(ctx, "signup otp issued", "otp_id", res.Payload.SOtp)
	return res.Payload.SOtp, nil
}

// Verify checks the mailed code.
func (f *SignupFlow) Verify(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	otpID, err := f.beginVerify()
	if err != nil {
		return err
	}

	res := f.api.ValidateEmailOTP(ctx, models.ValidateEmailOTPRequest{
		SOtp:         code,
		SOtpID:       otpID,
		SProductName: f.product,
	})

	var callErr error
	if !res.OK() {
		callErr = failure(res, common.MsgVerifyOTPFailed)
	}

	if err := f.finishVerify(callErr, code, res.Payload.SEncryptedValue, nil); err != nil {
		f.log.Warn(ctx, "signup otp verification failed", "otp_id", otpID, "error", causeOf(err))
		return err
	}
	return nil
}

// Complete creates the account once the email is verified. It returns the
// backend's confirmation message. On success the flow is back to Idle.
func (f *SignupFlow) Complete(ctx context.Context, fullName, hashedPassword string) (string, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" || hashedPassword == "" {
		return "", common.NewUserError("Name and password are required.", ErrInvalidInput)
	}
	if s := f.Snapshot(); s.State != StateOtpVerified {
		return "", common.NewUserError("Please verify your email first.", ErrInvalidState)
	}

	f.mu.Lock()
	email := f.email
	f.mu.Unlock()

	res := f.api.CreateUser(ctx, models.SignupRequest{
		SUserName:    email,
		SEmail:       email,
		SPassword:    hashedPassword,
		SFullName:    fullName,
		SProductName: f.product,
	})
	if !res.OK() {
		return "", failure(res, common.MsgRequestFailed)
	}

	f.log.Info(ctx, "account created", "user", email)
	f.Abandon()
	return res.Payload.Message(), nil
}

// Abandon drops the challenge and the remembered address.
func (f *SignupFlow) Abandon() {
	f.otpMachine.Abandon()
	f.mu.Lock()
	f.email = ""
	f.mu.Unlock()
}
