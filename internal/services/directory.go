package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/metrics"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/dmitrijs2005/contactkeeper/internal/state"
	"github.com/dmitrijs2005/contactkeeper/internal/validation"
	"github.com/google/uuid"
)

// ContactDirectory manages the contacts of the session user. Every method
// fails with common.ErrNoActiveSession when nobody is logged in, before the
// contact itself is validated.
//
// Mutations return the full, updated list in insertion order. CPFs are
// unique per user by exact string match (common.ErrDuplicateCPF); the same
// CPF may appear under different users.
type ContactDirectory interface {
	List(ctx context.Context) ([]models.Contact, error)
	Get(ctx context.Context, id string) (models.Contact, error)
	Add(ctx context.Context, c models.Contact) ([]models.Contact, error)
	Update(ctx context.Context, c models.Contact) ([]models.Contact, error)
	Remove(ctx context.Context, id string) ([]models.Contact, error)
}

type contactDirectory struct {
	store  state.Store
	logger logging.Logger
	newID  func() string
}

func NewContactDirectory(store state.Store, logger logging.Logger) ContactDirectory {
	return &contactDirectory{
		store:  store,
		logger: logger.With("component", "contacts"),
		newID:  uuid.NewString,
	}
}

func activeUser(s *models.AppState) (*models.UserRecord, error) {
	u := s.ActiveUser()
	if u == nil {
		return nil, common.ErrNoActiveSession
	}
	return u, nil
}

// mutate runs fn on the session user inside state.Update and returns a copy
// of the resulting contact list.
func (d *contactDirectory) mutate(ctx context.Context, fn func(u *models.UserRecord) error) ([]models.Contact, error) {
	var out []models.Contact
	err := state.Update(ctx, d.store, func(s *models.AppState) error {
		u, err := activeUser(s)
		if err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		out = u.ContactsCopy()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *contactDirectory) List(ctx context.Context) ([]models.Contact, error) {
	s, err := d.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	u, err := activeUser(s)
	if err != nil {
		return nil, err
	}
	return u.ContactsCopy(), nil
}

func (d *contactDirectory) Get(ctx context.Context, id string) (models.Contact, error) {
	s, err := d.store.Load(ctx)
	if err != nil {
		return models.Contact{}, err
	}
	u, err := activeUser(s)
	if err != nil {
		return models.Contact{}, err
	}
	i := u.ContactIndex(id)
	if i < 0 {
		return models.Contact{}, fmt.Errorf("%w: %s", common.ErrContactNotFound, id)
	}
	return u.Contacts[i].Clone(), nil
}

// Normalize trims every field and upper-cases the state, the form contacts
// are stored in.
func Normalize(c models.Contact) models.Contact {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.CPF = strings.TrimSpace(c.CPF)
	c.Phone = strings.TrimSpace(c.Phone)
	c.CEP = strings.TrimSpace(c.CEP)
	c.State = strings.ToUpper(strings.TrimSpace(c.State))
	c.City = strings.TrimSpace(c.City)
	c.Address = strings.TrimSpace(c.Address)
	c.Number = strings.TrimSpace(c.Number)
	c.Complement = strings.TrimSpace(c.Complement)
	return c.Clone()
}

func (d *contactDirectory) Add(ctx context.Context, c models.Contact) (list []models.Contact, err error) {
	defer func() { metrics.ObserveContact("add", err) }()

	c = Normalize(c)
	list, err = d.mutate(ctx, func(u *models.UserRecord) error {
		if err := validation.Struct(c); err != nil {
			return err
		}
		if c.ID == "" {
			c.ID = d.newID()
		}
		if u.ContactIndex(c.ID) >= 0 {
			return fmt.Errorf("%w: contact id %s already in use", common.ErrValidation, c.ID)
		}
		if u.HasCPF(c.CPF, "") {
			return common.ErrDuplicateCPF
		}
		u.Contacts = append(u.Contacts, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info(ctx, "contact added", "id", c.ID)
	return list, nil
}

func (d *contactDirectory) Update(ctx context.Context, c models.Contact) (list []models.Contact, err error) {
	defer func() { metrics.ObserveContact("update", err) }()

	c = Normalize(c)
	list, err = d.mutate(ctx, func(u *models.UserRecord) error {
		if err := validation.Struct(c); err != nil {
			return err
		}
		i := u.ContactIndex(c.ID)
		if i < 0 {
			return fmt.Errorf("%w: %s", common.ErrContactNotFound, c.ID)
		}
		if u.HasCPF(c.CPF, c.ID) {
			return common.ErrDuplicateCPF
		}
		u.Contacts[i] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info(ctx, "contact updated", "id", c.ID)
	return list, nil
}

func (d *contactDirectory) Remove(ctx context.Context, id string) (list []models.Contact, err error) {
	defer func() { metrics.ObserveContact("remove", err) }()

	list, err = d.mutate(ctx, func(u *models.UserRecord) error {
		i := u.ContactIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", common.ErrContactNotFound, id)
		}
		u.Contacts = append(u.Contacts[:i], u.Contacts[i+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info(ctx, "contact removed", "id", id)
	return list, nil
}
