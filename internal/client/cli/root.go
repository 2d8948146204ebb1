package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if name := a.userName(); name != "" {
		return fmt.Sprintf(" (%s)", name)
	}
	return ""
}

// Root greets the user and runs the REPL on stdin.
func (a *App) Root(ctx context.Context) {
	a.say("Welcome to gophlink (type 'help' for commands)")
	if a.isLoggedIn() {
		a.sayf("Signed in as %s.", a.userName())
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
