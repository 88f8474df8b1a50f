package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	View(ctx context.Context) error
	Add(ctx context.Context) error
	Reset(ctx context.Context) error
	Travel(ctx context.Context) error
	Import(ctx context.Context) error
	Export(ctx context.Context) error
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Feed(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the Daybook CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - view | v       — show the classified lines
//	  - add            — add a line
//	  - reset          — clear all lines
//	  - travel         — toggle travel events
//	  - import         — pull calendar events into the record
//	  - export         — push events to the calendar
//	  - connect        — link a Google calendar
//	  - disconnect     — unlink the calendar
//	  - feed           — print the iCalendar feed
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("db> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (v)iew, add, reset, travel, import, export, connect, disconnect, feed, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "v", "view":
			_ = a.View(ctx)

		case "add":
			_ = a.Add(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "travel":
			_ = a.Travel(ctx)

		case "import":
			_ = a.Import(ctx)

		case "export":
			_ = a.Export(ctx)

		case "connect":
			_ = a.Connect(ctx)

		case "disconnect":
			_ = a.Disconnect(ctx)

		case "feed":
			_ = a.Feed(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
