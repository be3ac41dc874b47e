package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. *App satisfies it;
// tests use a recording stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	DeleteAccount(ctx context.Context) error

	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Sort(ctx context.Context, args []string) error

	CEP(ctx context.Context, args []string) error
	FindCEP(ctx context.Context) error
	Locate(ctx context.Context, args []string) error
	Map(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, help, exit"
	helpLoggedIn  = "Available commands: (l)ist, add, edit [id], delete [id], search [term], sort asc|desc|toggle,\n" +
		"  cep <cep>, findcep, locate [all|id], map, whoami, logout, deleteaccount, help, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The first token is the command, the rest are its arguments. Errors returned
// by handlers are printed and the loop goes on; it only ends on EOF or
// "exit"/"quit".
//
// Commands that need a session are refused with a hint while logged out.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "contacts%s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(w, "Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args, w); err != nil {
			fmt.Fprintln(w, "Error:", describe(err))
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string, w io.Writer) error {
	switch cmd {
	case "help":
		if a.isLoggedIn(ctx) {
			fmt.Fprintln(w, helpLoggedIn)
		} else {
			fmt.Fprintln(w, helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	}

	var run func() error
	switch cmd {
	case "l", "list":
		run = func() error { return a.List(ctx) }
	case "add":
		run = func() error { return a.Add(ctx) }
	case "edit":
		run = func() error { return a.Edit(ctx, args) }
	case "delete":
		run = func() error { return a.Delete(ctx, args) }
	case "search":
		run = func() error { return a.Search(ctx, args) }
	case "sort":
		run = func() error { return a.Sort(ctx, args) }
	case "cep":
		run = func() error { return a.CEP(ctx, args) }
	case "findcep":
		run = func() error { return a.FindCEP(ctx) }
	case "locate":
		run = func() error { return a.Locate(ctx, args) }
	case "map":
		run = func() error { return a.Map(ctx) }
	case "whoami":
		run = func() error { return a.WhoAmI(ctx) }
	case "logout":
		run = func() error { return a.Logout(ctx) }
	case "deleteaccount":
		run = func() error { return a.DeleteAccount(ctx) }
	default:
		fmt.Fprintln(w, "Unknown command:", cmd)
		return nil
	}

	if !a.isLoggedIn(ctx) {
		fmt.Fprintln(w, "Please login or register first.")
		return nil
	}
	return run()
}
