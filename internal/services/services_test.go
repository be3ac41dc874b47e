package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/dmitrijs2005/contactkeeper/internal/state"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *state.MemoryStore
	accounts AccountService
	dir      ContactDirectory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := state.NewMemoryStore()
	log := logging.NewNopLogger()
	return &fixture{
		store:    st,
		accounts: NewAccountService(st, log),
		dir:      NewContactDirectory(st, log),
	}
}

func (f *fixture) register(t *testing.T, name, email, password string) {
	t.Helper()
	require.NoError(t, f.accounts.Register(context.Background(), name, email, password))
}

func bob() models.Contact {
	return models.Contact{Name: "Bob", CPF: "111.444.777-35", Phone: "(11) 99999-0000"}
}

func contact(name, cpf string) models.Contact {
	return models.Contact{Name: name, CPF: cpf, Phone: "(11) 98888-7777"}
}
