package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/contactkeeper/internal/cryptox"
	"github.com/dmitrijs2005/contactkeeper/internal/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Register asks for name, email and password (twice) and creates the account,
// which also logs it in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)
	repeat, err := getPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(repeat)
	if string(password) != string(repeat) {
		return errors.New("passwords do not match")
	}

	if err := a.accounts.Register(ctx, name, email, string(password)); err != nil {
		return err
	}
	a.resetView()
	a.refreshSession(ctx)
	a.println("Welcome,", name+"!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	if err := a.accounts.Login(ctx, email, string(password)); err != nil {
		return err
	}
	a.resetView()
	a.refreshSession(ctx)
	a.println("Logged in as", email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.accounts.Logout(ctx); err != nil {
		return err
	}
	a.resetView()
	a.email = ""
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.accounts.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		a.println("Not logged in.")
		return nil
	}
	a.printf("%s <%s>, %d contact(s)\n", u.Name, a.email, len(u.Contacts))
	return nil
}

// DeleteAccount removes the session account after the password is confirmed.
func (a *App) DeleteAccount(ctx context.Context) error {
	password, err := getPassword(a.reader, "Confirm your password", a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	ok, err := a.accounts.ConfirmPassword(ctx, string(password))
	if err != nil {
		return err
	}
	if !ok {
		a.println("Wrong password, account kept.")
		return nil
	}
	sure, err := Confirm(a.reader, "Delete this account and all its contacts?", a.out)
	if err != nil {
		return err
	}
	if !sure {
		a.println("Cancelled.")
		return nil
	}

	if err := a.accounts.DeleteCurrentAccount(ctx); err != nil {
		return err
	}
	a.resetView()
	a.email = ""
	a.println("Account deleted.")
	return nil
}

func (a *App) resetView() {
	a.term = ""
	a.order = services.Ascending
}
