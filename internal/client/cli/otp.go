package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophlink/internal/client/services"
	"github.com/dmitrijs2005/gophlink/internal/common"
)

// errCancelled is returned when the user gives up on a challenge.
var errCancelled = errors.New("cancelled by user")

// countdownStep controls how often the remaining time is announced.
const countdownStep = 30

// awaitOTP prompts for the code of a pending challenge until it is verified
// or the user cancels. The countdown runs in the background while the
// prompt waits for input; typing "resend" asks for a new code.
func (a *App) awaitOTP(ctx context.Context, ch challenge) error {
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticks, stop := a.newTicker()
	defer stop()

	go ch.RunCountdown(cctx, ticks, a.countdownAnnouncer())

	for {
		prompt := otpPrompt(ch.Snapshot())
		text, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			ch.Abandon()
			return err
		}

		switch text {
		case "", "cancel":
			ch.Abandon()
			a.say("Cancelled.")
			return errCancelled

		case "resend":
			if err := ch.Resend(ctx); err != nil {
				a.say(common.UserMessage(err, common.MsgResendOTPFailed))
				continue
			}
			a.say("A new code has been sent.")

		default:
			err := ch.Verify(ctx, text)
			if err == nil {
				return nil
			}
			a.say(common.UserMessage(err, common.MsgVerifyOTPFailed))
		}
	}
}

func otpPrompt(s services.Snapshot) string {
	if s.State == services.StateOtpExpired {
		return "The code has expired. Type 'resend' for a new one or 'cancel'"
	}
	return fmt.Sprintf("Enter the code (%s left), 'resend' or 'cancel'", formatRemaining(s.Remaining))
}

// countdownAnnouncer returns the tick callback. It runs on the countdown
// goroutine only.
func (a *App) countdownAnnouncer() func(services.Snapshot) {
	expiredShown := false
	return func(s services.Snapshot) {
		switch s.State {
		case services.StateOtpPending:
			expiredShown = false
			if s.Remaining > 0 && s.Remaining%countdownStep == 0 {
				a.sayf("  %s left to enter the code", formatRemaining(s.Remaining))
			}
		case services.StateOtpExpired:
			if !expiredShown {
				expiredShown = true
				a.say("  " + common.MsgOTPExpired)
			}
		}
	}
}

func formatRemaining(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
