package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/lookup"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/dmitrijs2005/contactkeeper/internal/services"
)

// AddressFinder resolves Brazilian postal codes.
type AddressFinder interface {
	AddressByCEP(ctx context.Context, cep string) (*lookup.Address, error)
	SearchCEP(ctx context.Context, uf, city, street string) ([]lookup.Address, error)
}

// ContactLocator geocodes contacts and stores their coordinates.
type ContactLocator interface {
	Locate(ctx context.Context, id string) (models.Contact, error)
	LocateAll(ctx context.Context, force bool) (services.LocateReport, error)
}

// Deps are the collaborators of App. Addresses and Locator may be nil, which
// disables the lookup commands.
type Deps struct {
	Accounts  services.AccountService
	Contacts  services.ContactDirectory
	Addresses AddressFinder
	Locator   ContactLocator
	Logger    logging.Logger

	// CEPDebounce delays the CEP autofill; a newer lookup started during the
	// wait replaces the pending one.
	CEPDebounce time.Duration
}

type App struct {
	accounts  services.AccountService
	contacts  services.ContactDirectory
	addresses AddressFinder
	locator   ContactLocator
	cepLatest *lookup.Latest[*lookup.Address]
	logger    logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// list presentation, reset on logout
	term  string
	order services.SortOrder
	email string
}

func NewApp(d Deps, in io.Reader, out io.Writer) *App {
	return &App{
		accounts:  d.Accounts,
		contacts:  d.Contacts,
		addresses: d.Addresses,
		locator:   d.Locator,
		cepLatest: lookup.NewLatest[*lookup.Address](d.CEPDebounce),
		logger:    d.Logger.With("component", "cli"),
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

// Run prints a greeting and serves commands until EOF or exit.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to contactkeeper (type 'help' for commands)")
	a.refreshSession(ctx)
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) refreshSession(ctx context.Context) {
	email, err := a.accounts.CurrentEmail(ctx)
	if err != nil {
		a.logger.Error(ctx, "cannot read session", "error", err)
		return
	}
	a.email = email
}

func (a *App) status() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", a.email)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	a.refreshSession(ctx)
	return a.email != ""
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// describe turns an error into the message shown at the prompt.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrNoActiveSession):
		return "you are not logged in"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, common.ErrDuplicateAccount):
		return "this email is already registered"
	case errors.Is(err, common.ErrDuplicateCPF):
		return "a contact with this CPF already exists"
	case errors.Is(err, common.ErrCorruptState):
		return "stored data is corrupt: " + err.Error()
	case errors.Is(err, io.EOF):
		return "input closed"
	}
	return err.Error()
}
