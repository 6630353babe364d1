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
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	New(ctx context.Context) error
	Edit(ctx context.Context, arg string) error
	Color(ctx context.Context, args []string) error
	Delete(ctx context.Context, arg string) error
	Colors(ctx context.Context) error
	Backup(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - (l)ist         — show the cards
//	  - new            — open the editor for a new note
//	  - edit <n>       — edit card n
//	  - color <n> [c]  — recolor card n
//	  - delete <n>     — delete card n
//	  - colors         — list the palette
//	  - backup         — export the notes to object storage
//	  - logout         — sign out
//
// Handler errors are ignored here; handlers report to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gn %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn("Available commands: register, login, exit")
			case "register":
				_ = a.Register(ctx)
			case "login":
				_ = a.Login(ctx)
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				printlnFn("Please login first. Unknown or unavailable command:", cmd)
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: (l)ist, new, edit <n>, color <n> [color], delete <n>, colors, backup, logout, exit")

		case "l", "list":
			_ = a.List(ctx)

		case "new":
			_ = a.New(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <n>")
				continue
			}
			_ = a.Edit(ctx, args[0])

		case "color":
			_ = a.Color(ctx, args)

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <n>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "colors":
			_ = a.Colors(ctx)

		case "backup":
			_ = a.Backup(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "register", "login":
			printlnFn("Already signed in. Use logout first.")

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
