package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophlink/internal/client/client"
	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emailOTPOK(otpID string) client.Result[models.EmailOTPPayload] {
	return ok(models.EmailOTPPayload{BSuccess: true, SOtp: otpID})
}

func newSignup(api *fakeAuthAPI) *SignupFlow {
	return NewSignupFlow(api, "URL_SHORTENER", 120, logging.Discard())
}

func TestSignup_FullFlow(t *testing.T) {
	api := &fakeAuthAPI{
		emailOTPs: []client.Result[models.EmailOTPPayload]{emailOTPOK("otp-1")},
		emailVals: []client.Result[models.OTPPayload]{verifyOK(digestOtp1, "")},
		creates:   []client.Result[models.StatusPayload]{ok(models.StatusPayload{SStatus: "SUCCESS", SResponseMessage: "User created"})},
	}
	f := newSignup(api)
	ctx := context.Background()

	require.NoError(t, f.Submit(ctx, "a@b.com"))
	s := f.Snapshot()
	assert.Equal(t, StateOtpPending, s.State)
	assert.Equal(t, 120, s.Remaining)
	assert.Equal(t, "otp-1", s.OtpID)
	assert.Equal(t, []models.EmailOTPRequest{{
		SEmailID: "a@b.com", SEmailType: "EMAIL_OTP_SMS", BOtpRequired: true, SProductName: "URL_SHORTENER",
	}}, api.emailOTPReqs)

	require.NoError(t, f.Verify(ctx, "123456"))
	assert.Equal(t, StateOtpVerified, f.Snapshot().State)
	assert.Equal(t, []models.ValidateEmailOTPRequest{{SOtp: "123456", SOtpID: "otp-1", SProductName: "URL_SHORTENER"}}, api.emailValReqs)

	msg, err := f.Complete(ctx, "Alice Smith", "$2a$10$hash")
	require.NoError(t, err)
	assert.Equal(t, "User created", msg)
	assert.Equal(t, []models.SignupRequest{{
		SUserName: "a@b.com", SEmail: "a@b.com", SPassword: "$2a$10$hash", SFullName: "Alice Smith", SProductName: "URL_SHORTENER",
	}}, api.createReqs)
	assert.Equal(t, StateIdle, f.Snapshot().State)
}

func TestSignup_SendFailures(t *testing.T) {
	tests := []struct {
		name    string
		res     client.Result[models.EmailOTPPayload]
		message string
	}{
		{"bSuccess false with error", client.Result[models.EmailOTPPayload]{Kind: client.KindRejected, Message: "Email already registered"}, "Email already registered"},
		{"transport", unexpectedWith[models.EmailOTPPayload](client.ErrUnavailable), common.MsgSendOTPFailed},
		{"no otp id", ok(models.EmailOTPPayload{BSuccess: true}), common.MsgContactAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSignup(&fakeAuthAPI{emailOTPs: []client.Result[models.EmailOTPPayload]{tt.res}})

			err := f.Submit(context.Background(), "a@b.com")
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, StateSubmissionFailed, f.Snapshot().State)
		})
	}
}

func TestSignup_InvalidEmail(t *testing.T) {
	api := &fakeAuthAPI{}
	f := newSignup(api)

	require.ErrorIs(t, f.Submit(context.Background(), "not-an-email"), ErrInvalidInput)
	assert.Empty(t, api.emailOTPReqs)
}

func TestSignup_DigestGate(t *testing.T) {
	api := &fakeAuthAPI{
		emailOTPs: []client.Result[models.EmailOTPPayload]{emailOTPOK("otp-1")},
		emailVals: []client.Result[models.OTPPayload]{verifyOK(digestOtp2, "")},
	}
	f := newSignup(api)
	require.NoError(t, f.Submit(context.Background(), "a@b.com"))

	err := f.Verify(context.Background(), "123456")
	require.ErrorIs(t, err, ErrDigestMismatch)
	assert.Equal(t, StateOtpPending, f.Snapshot().State)

	_, err = f.Complete(context.Background(), "Alice", "hash")
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Empty(t, api.createReqs)
}

func TestSignup_ResendAfterExpiry(t *testing.T) {
	api := &fakeAuthAPI{
		emailOTPs: []client.Result[models.EmailOTPPayload]{emailOTPOK("otp-1"), emailOTPOK("otp-2")},
		emailVals: []client.Result[models.OTPPayload]{verifyOK(digestOtp2, "")},
	}
	f := newSignup(api)
	require.NoError(t, f.Submit(context.Background(), "a@b.com"))
	for i := 0; i < 120; i++ {
		f.Tick()
	}
	require.ErrorIs(t, f.Verify(context.Background(), "123456"), ErrOTPExpired)

	require.NoError(t, f.Resend(context.Background()))
	assert.Equal(t, "otp-2", f.Snapshot().OtpID)
	require.NoError(t, f.Verify(context.Background(), "123456"))
	assert.Len(t, api.emailOTPReqs, 2)
	assert.Equal(t, api.emailOTPReqs[0], api.emailOTPReqs[1])
}

func TestSignup_CompleteRejected(t *testing.T) {
	api := &fakeAuthAPI{
		emailOTPs: []client.Result[models.EmailOTPPayload]{emailOTPOK("otp-1")},
		emailVals: []client.Result[models.OTPPayload]{verifyOK(digestOtp1, "")},
		creates:   []client.Result[models.StatusPayload]{rejectedWith[models.StatusPayload]("Username taken")},
	}
	f := newSignup(api)
	require.NoError(t, f.Submit(context.Background(), "a@b.com"))
	require.NoError(t, f.Verify(context.Background(), "123456"))

	_, err := f.Complete(context.Background(), "Alice", "hash")
	require.ErrorIs(t, err, ErrServerRejected)
	assert.Equal(t, "Username taken", err.Error())
	// still verified, so the user can try again
	assert.Equal(t, StateOtpVerified, f.Snapshot().State)
}

func TestSignup_CompleteValidation(t *testing.T) {
	f := newSignup(&fakeAuthAPI{})

	_, err := f.Complete(context.Background(), "", "hash")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.Complete(context.Background(), "Alice", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}
