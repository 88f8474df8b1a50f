package cli

import (
	"bufio"
	"context"
	"os"
)

// Root runs the REPL over stdin until EOF or an exit command.
func (a *App) Root(ctx context.Context) {
	statusFn := func() string {
		if a.isLoggedIn() {
			return "logged in"
		}
		return "logged out"
	}

	runREPL(ctx, a, statusFn, bufio.NewScanner(os.Stdin))
}
