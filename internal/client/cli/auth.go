package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/cryptox"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errEmptyPassword    = errors.New("empty password")
)

// Register verifies an email address with a mailed code and then creates the
// account. It does not sign the user in.
func (a *App) Register(ctx context.Context) error {
	if err := a.ensureKey(ctx); err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.signup.Submit(ctx, email); err != nil {
		a.say(common.UserMessage(err, common.MsgSendOTPFailed))
		return err
	}
	a.sayf("A verification code was sent to %s.", email)

	if err := a.awaitOTP(ctx, a.signup); err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter your full name", a.out)
	if err != nil {
		a.signup.Abandon()
		return err
	}
	hashed, err := a.readNewPassword("Choose a password")
	if err != nil {
		a.signup.Abandon()
		return err
	}

	msg, err := a.signup.Complete(ctx, name, hashed)
	if err != nil {
		a.signup.Abandon()
		a.say(common.UserMessage(err, common.MsgRequestFailed))
		return err
	}
	if msg == "" {
		msg = "Account created."
	}
	a.say(msg)
	a.say("You can now log in.")
	return nil
}

// Login asks for credentials, then for the one-time code sent by the
// backend. A verified code signs the user in and shows the dashboard.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		a.sayf("Already signed in as %s.", a.userName())
		return nil
	}
	if err := a.ensureKey(ctx); err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	if len(password) == 0 {
		a.say("Email and password are required.")
		return errEmptyPassword
	}

	hashed, err := cryptox.PreparePassword(password, a.config.BcryptCost)
	if err != nil {
		a.log.Error(ctx, "cannot prepare password", "error", err)
		a.say(common.MsgUnexpected)
		return err
	}

	if err := a.login.Submit(ctx, email, hashed); err != nil {
		a.say(common.UserMessage(err, common.MsgSendOTPFailed))
		return err
	}
	a.say("A one-time code was sent to you.")

	if err := a.awaitOTP(ctx, a.login); err != nil {
		return err
	}
	a.login.Abandon()

	a.sayf("Welcome, %s!", a.userName())
	return a.List(ctx, nil)
}

// Logout signs the user out. Local state is cleared even when the backend
// cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.say(common.MsgNotSignedIn)
		return nil
	}
	if err := a.account.Logout(ctx); err != nil {
		a.say(common.UserMessage(err, common.MsgUnexpected))
		return err
	}
	a.say("Signed out.")
	return nil
}

// Passwd changes the account password.
func (a *App) Passwd(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.say(common.MsgNotSignedIn)
		return nil
	}
	if err := a.ensureKey(ctx); err != nil {
		return err
	}

	oldPassword, err := getPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := a.readConfirmed("New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	msg, err := a.account.ChangePassword(ctx, oldPassword, newPassword)
	if err != nil {
		a.say(common.UserMessage(err, common.MsgRequestFailed))
		return err
	}
	if msg == "" {
		msg = "Password changed."
	}
	a.say(msg)
	return nil
}

// readConfirmed reads a password twice. The caller wipes the result.
func (a *App) readConfirmed(prompt string) ([]byte, error) {
	first, err := getPassword(a.out, prompt)
	if err != nil {
		return nil, err
	}
	second, err := getPassword(a.out, "Repeat password")
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if len(first) == 0 || string(first) != string(second) {
		common.WipeByteArray(first)
		a.say("Passwords do not match.")
		return nil, errPasswordMismatch
	}
	return first, nil
}

// readNewPassword reads and confirms a password and returns it prepared.
func (a *App) readNewPassword(prompt string) (string, error) {
	pw, err := a.readConfirmed(prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)

	hashed, err := cryptox.PreparePassword(pw, a.config.BcryptCost)
	if err != nil {
		a.say(common.MsgUnexpected)
		return "", err
	}
	return hashed, nil
}
