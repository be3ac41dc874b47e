package services

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/contactkeeper/internal/models"
)

type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// Toggle flips the order.
func (o SortOrder) Toggle() SortOrder {
	if o == Descending {
		return Ascending
	}
	return Descending
}

// ParseSortOrder understands "asc" and "desc".
func ParseSortOrder(s string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Ascending, true
	case "desc":
		return Descending, true
	}
	return Ascending, false
}

// Filter keeps the contacts whose name contains term ignoring case, or whose
// CPF contains term verbatim. An empty term keeps everything.
func Filter(contacts []models.Contact, term string) []models.Contact {
	out := make([]models.Contact, 0, len(contacts))
	lower := strings.ToLower(term)
	for _, c := range contacts {
		if term == "" || strings.Contains(strings.ToLower(c.Name), lower) || strings.Contains(c.CPF, term) {
			out = append(out, c)
		}
	}
	return out
}

// SortByName returns a copy sorted by case-insensitive name. Equal names keep
// their relative order in both directions.
func SortByName(contacts []models.Contact, order SortOrder) []models.Contact {
	out := slices.Clone(contacts)
	slices.SortStableFunc(out, func(a, b models.Contact) int {
		c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		if order == Descending {
			return -c
		}
		return c
	})
	return out
}

// Query filters and then sorts.
func Query(contacts []models.Contact, term string, order SortOrder) []models.Contact {
	return SortByName(Filter(contacts, term), order)
}
