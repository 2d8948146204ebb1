package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
)

// defaultExpiryDays is offered when adding a URL.
const defaultExpiryDays = 30

// List fetches the dashboard. When the backend cannot be reached the last
// cached list is shown instead.
func (a *App) List(ctx context.Context, _ []string) error {
	if err := a.ensureKey(ctx); err != nil {
		return a.showCached(ctx, err)
	}
	list, err := a.entries.List(ctx)
	if err != nil {
		a.say(common.UserMessage(err, common.MsgRequestFailed))
		return a.showCached(ctx, err)
	}
	a.printEntries(list)
	return nil
}

func (a *App) showCached(ctx context.Context, cause error) error {
	if !a.isLoggedIn() {
		return cause
	}
	cached, err := a.entries.Cached(ctx)
	if err != nil || len(cached) == 0 {
		return cause
	}
	a.say("Showing the last known list:")
	a.printEntries(cached)
	return cause
}

func (a *App) printEntries(list []models.Entry) {
	if len(list) == 0 {
		a.say("No shortened URLs yet. Use 'add' to create one.")
		return
	}
	for i, e := range list {
		line := fmt.Sprintf("%3d. %s -> %s", i+1, e.Key(), e.LongURL)
		if e.ExpiredAt != "" {
			line += fmt.Sprintf(" (expires %s)", e.ExpiredAt)
		}
		a.say(line)
	}
}

// Add shortens a URL: add [url] [days].
func (a *App) Add(ctx context.Context, args []string) error {
	longURL, err := a.argOrPrompt(args, 0, "Enter the URL to shorten")
	if err != nil {
		return err
	}
	days, err := a.daysArg(args, 1, defaultExpiryDays)
	if err != nil {
		return err
	}
	if err := a.ensureKey(ctx); err != nil {
		return err
	}

	list, err := a.entries.Add(ctx, longURL, days)
	if err != nil {
		a.say(common.UserMessage(err, common.MsgRequestFailed))
		return err
	}
	a.say("URL added.")
	a.printEntries(list)
	return nil
}

// Update changes the target of a short URL: update <short> [url] [days].
// An empty answer keeps the current target.
func (a *App) Update(ctx context.Context, args []string) error {
	short, err := a.argOrPrompt(args, 0, "Enter the short URL to update")
	if err != nil {
		return err
	}
	current, err := a.entries.Get(ctx, short)
	if err != nil {
		a.say(common.UserMessage(err, common.MsgUnexpected))
		return err
	}

	longURL := ""
	if len(args) > 1 {
		longURL = args[1]
	} else {
		longURL, err = getSimpleText(a.reader, fmt.Sprintf("New target URL [%s]", current.LongURL), a.out)
		if err != nil {
			return err
		}
	}
	if longURL == "" {
		longURL = current.LongURL
	}
	days, err := a.daysArg(args, 2, defaultExpiryDays)
	if err != nil {
		return err
	}
	if err := a.ensureKey(ctx); err != nil {
		return err
	}

	list, err := a.entries.Update(ctx, current.Key(), longURL, days)
	if err != nil {
		a.say(common.UserMessage(err, common.MsgRequestFailed))
		return err
	}
	a.say("URL updated.")
	a.printEntries(list)
	return nil
}

// Delete removes a short URL after confirmation: delete <short>.
func (a *App) Delete(ctx context.Context, args []string) error {
	short, err := a.argOrPrompt(args, 0, "Enter the short URL to delete")
	if err != nil {
		return err
	}
	ok, err := GetConfirm(a.reader, fmt.Sprintf("Delete %s?", short), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.say("Nothing deleted.")
		return nil
	}
	if err := a.ensureKey(ctx); err != nil {
		return err
	}

	list, err := a.entries.Delete(ctx, short)
	if err != nil {
		a.say(common.UserMessage(err, common.MsgRequestFailed))
		return err
	}
	a.say("URL deleted.")
	a.printEntries(list)
	return nil
}

// QR prints the QR code the backend generated for a short URL: qr <short>.
func (a *App) QR(ctx context.Context, args []string) error {
	short, err := a.argOrPrompt(args, 0, "Enter the short URL")
	if err != nil {
		return err
	}
	e, err := a.entries.Get(ctx, short)
	if err != nil {
		a.say(common.UserMessage(err, common.MsgUnexpected))
		return err
	}
	if e.QRCode == "" {
		a.sayf("No QR code for %s.", e.Key())
		return nil
	}
	a.say(qrImageURI(e.QRCode))
	return nil
}

const pngDataPrefix = "data:image/png;base64,"

// qrImageURI turns the backend's base64 PNG into a data: URI. Values that
// already are a data: URI pass through.
func qrImageURI(code string) string {
	if strings.HasPrefix(code, "data:") {
		return code
	}
	return pngDataPrefix + code
}

func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if len(args) > i && strings.TrimSpace(args[i]) != "" {
		return strings.TrimSpace(args[i]), nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) daysArg(args []string, i, def int) (int, error) {
	var (
		days int
		err  error
	)
	if len(args) > i {
		days, err = strconv.Atoi(args[i])
		if err != nil {
			err = fmt.Errorf("%q is not a number of days", args[i])
		}
	} else {
		days, err = GetDays(a.reader, "Expire after how many days", def, a.out)
	}
	if err != nil {
		a.say("Expiry must be a number of days.")
		return 0, err
	}
	return days, nil
}
