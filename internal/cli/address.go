package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/contactkeeper/internal/lookup"
)

var errLookupDisabled = errors.New("address lookups are not configured")

// CEP prints the address of a postal code.
func (a *App) CEP(ctx context.Context, args []string) error {
	if a.addresses == nil {
		return errLookupDisabled
	}
	cep := strings.Join(args, "")
	if cep == "" {
		var err error
		if cep, err = getSimpleText(a.reader, "Enter CEP", a.out); err != nil {
			return err
		}
	}
	addr, err := a.addresses.AddressByCEP(ctx, cep)
	if err != nil {
		return err
	}
	a.printAddresses([]lookup.Address{*addr})
	return nil
}

// FindCEP searches postal codes by state, city and street.
func (a *App) FindCEP(ctx context.Context) error {
	if a.addresses == nil {
		return errLookupDisabled
	}
	uf, err := getSimpleText(a.reader, "State (UF)", a.out)
	if err != nil {
		return err
	}
	city, err := getSimpleText(a.reader, "City", a.out)
	if err != nil {
		return err
	}
	street, err := getSimpleText(a.reader, "Street", a.out)
	if err != nil {
		return err
	}
	list, err := a.addresses.SearchCEP(ctx, uf, city, street)
	if err != nil {
		return err
	}
	a.printAddresses(list)
	return nil
}

func (a *App) printAddresses(list []lookup.Address) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CEP\tSTREET\tCOMPLEMENT\tNEIGHBORHOOD\tCITY\tUF")
	for _, ad := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", ad.CEP, ad.Street, ad.Complement, ad.Neighborhood, ad.City, ad.State)
	}
	_ = tw.Flush()
}

// Locate geocodes contacts. "locate" handles contacts without coordinates,
// "locate all" redoes every contact and "locate <id>" a single one.
func (a *App) Locate(ctx context.Context, args []string) error {
	if a.locator == nil {
		return errLookupDisabled
	}
	if len(args) > 0 && args[0] != "all" {
		c, err := a.locator.Locate(ctx, args[0])
		if err != nil {
			return err
		}
		a.printf("%s located at %s,%s\n", c.Name, formatCoord(c.Latitude), formatCoord(c.Longitude))
		return nil
	}

	force := len(args) > 0
	report, err := a.locator.LocateAll(ctx, force)
	if err != nil {
		return err
	}
	a.printf("Located %d, skipped %d, failed %d.\n", report.Located, report.Skipped, report.Failed)
	for id, e := range report.Errors {
		a.printf("  %s: %s\n", id, describe(e))
	}
	return nil
}

// Map prints a Google Maps link for every contact with coordinates.
func (a *App) Map(ctx context.Context) error {
	all, err := a.contacts.List(ctx)
	if err != nil {
		return err
	}
	n := 0
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, c := range all {
		if !c.HasCoordinates() {
			continue
		}
		n++
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, mapsURL(*c.Latitude, *c.Longitude))
	}
	_ = tw.Flush()
	if n == 0 {
		a.println("No located contacts. Run 'locate' first.")
	}
	return nil
}

func mapsURL(lat, lng float64) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", strconv.FormatFloat(lat, 'f', 6, 64)+","+strconv.FormatFloat(lng, 'f', 6, 64))
	return "https://www.google.com/maps/search/?" + q.Encode()
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}
