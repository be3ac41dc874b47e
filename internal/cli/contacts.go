package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/lookup"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/dmitrijs2005/contactkeeper/internal/services"
)

// List prints the contacts through the current search term and sort order.
func (a *App) List(ctx context.Context) error {
	all, err := a.contacts.List(ctx)
	if err != nil {
		return err
	}
	a.printContacts(services.Query(all, a.term, a.order), len(all))
	return nil
}

func (a *App) printContacts(list []models.Contact, total int) {
	if a.term != "" {
		a.printf("Search %q, %d of %d contact(s), sorted %s\n", a.term, len(list), total, a.order)
	}
	if len(list) == 0 {
		a.println("No contacts.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCPF\tPHONE\tCITY\tLOCATION")
	for _, c := range list {
		city := c.City
		if c.State != "" {
			city = strings.TrimSpace(city + "/" + c.State)
		}
		loc := "-"
		if c.HasCoordinates() {
			loc = fmt.Sprintf("%.5f,%.5f", *c.Latitude, *c.Longitude)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.CPF, c.Phone, city, loc)
	}
	_ = tw.Flush()
}

func (a *App) Add(ctx context.Context) error {
	c, err := a.promptContact(ctx, models.Contact{})
	if err != nil {
		return err
	}
	list, err := a.contacts.Add(ctx, c)
	if err != nil {
		return err
	}
	a.printf("Contact added (%d total).\n", len(list))
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.contactID(args, "Enter contact id to edit")
	if err != nil {
		return err
	}
	current, err := a.contacts.Get(ctx, id)
	if err != nil {
		return err
	}
	c, err := a.promptContact(ctx, current)
	if err != nil {
		return err
	}
	c.ID = current.ID
	// Coordinates belong to the old address.
	if addressChanged(current, c) {
		c.Latitude, c.Longitude = nil, nil
	}
	if _, err := a.contacts.Update(ctx, c); err != nil {
		return err
	}
	a.println("Contact updated.")
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.contactID(args, "Enter contact id to delete")
	if err != nil {
		return err
	}
	c, err := a.contacts.Get(ctx, id)
	if err != nil {
		return err
	}
	sure, err := Confirm(a.reader, fmt.Sprintf("Delete %s (%s)?", c.Name, c.CPF), a.out)
	if err != nil {
		return err
	}
	if !sure {
		a.println("Cancelled.")
		return nil
	}
	list, err := a.contacts.Remove(ctx, id)
	if err != nil {
		return err
	}
	a.printf("Contact deleted (%d left).\n", len(list))
	return nil
}

// Search sets the filter used by list; no argument clears it.
func (a *App) Search(ctx context.Context, args []string) error {
	a.term = strings.TrimSpace(strings.Join(args, " "))
	return a.List(ctx)
}

func (a *App) Sort(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.order = a.order.Toggle()
		return a.List(ctx)
	}
	arg := strings.ToLower(args[0])
	if arg == "toggle" {
		a.order = a.order.Toggle()
		return a.List(ctx)
	}
	order, ok := services.ParseSortOrder(arg)
	if !ok {
		return fmt.Errorf("%w: usage: sort asc|desc|toggle", common.ErrValidation)
	}
	a.order = order
	return a.List(ctx)
}

func (a *App) contactID(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w: contact id is required", common.ErrValidation)
	}
	return id, nil
}

// promptContact asks for every field, offering the values of base as
// defaults. Once a CEP is entered the address fields default to what ViaCEP
// returns for it.
func (a *App) promptContact(ctx context.Context, base models.Contact) (models.Contact, error) {
	c := base.Clone()
	var err error
	ask := func(prompt string, dst *string) {
		if err != nil {
			return
		}
		*dst, err = GetDefaultText(a.reader, prompt, *dst, a.out)
	}

	ask("Name", &c.Name)
	ask("CPF", &c.CPF)
	ask("Phone", &c.Phone)
	oldCEP := c.CEP
	ask("CEP (optional)", &c.CEP)
	if err != nil {
		return models.Contact{}, err
	}
	if c.CEP != "" && c.CEP != oldCEP {
		a.fillFromCEP(ctx, &c)
	}
	ask("State (UF)", &c.State)
	ask("City", &c.City)
	ask("Street", &c.Address)
	ask("Number", &c.Number)
	ask("Complement", &c.Complement)
	if err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// fillFromCEP copies state, city and street from a CEP lookup into c.
// Failures only get logged; the user can still type the address.
func (a *App) fillFromCEP(ctx context.Context, c *models.Contact) {
	if a.addresses == nil {
		return
	}
	cep := c.CEP
	addr, err := a.cepLatest.Do(ctx, func(ctx context.Context) (*lookup.Address, error) {
		return a.addresses.AddressByCEP(ctx, cep)
	})
	if err != nil {
		if !errors.Is(err, common.ErrSuperseded) {
			a.logger.Warn(ctx, "cep autofill failed", "cep", cep, "error", err)
			a.println("(address lookup failed, please type it)")
		}
		return
	}
	c.State, c.City, c.Address = addr.State, addr.City, addr.Street
	a.printf("Found: %s, %s/%s\n", addr.Street, addr.City, addr.State)
}

// addressChanged compares the stored form of both contacts, so case or
// whitespace differences in the input do not count.
func addressChanged(a, b models.Contact) bool {
	a, b = services.Normalize(a), services.Normalize(b)
	return a.CEP != b.CEP || a.State != b.State || a.City != b.City ||
		a.Address != b.Address || a.Number != b.Number || a.Complement != b.Complement
}
