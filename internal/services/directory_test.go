package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_RequiresSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dir.List(ctx)
	require.ErrorIs(t, err, common.ErrNoActiveSession)
	_, err = f.dir.Get(ctx, "x")
	require.ErrorIs(t, err, common.ErrNoActiveSession)
	_, err = f.dir.Add(ctx, bob())
	require.ErrorIs(t, err, common.ErrNoActiveSession)
	_, err = f.dir.Update(ctx, models.Contact{ID: "x", Name: "B", CPF: "111.444.777-35", Phone: "1199999999"})
	require.ErrorIs(t, err, common.ErrNoActiveSession)
	_, err = f.dir.Remove(ctx, "x")
	require.ErrorIs(t, err, common.ErrNoActiveSession)
}

func TestDirectory_SessionCheckedBeforeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dir.Add(ctx, models.Contact{Name: "Bob"})
	require.ErrorIs(t, err, common.ErrNoActiveSession)
	assert.NotErrorIs(t, err, common.ErrValidation)

	_, err = f.dir.Update(ctx, models.Contact{ID: "x"})
	require.ErrorIs(t, err, common.ErrNoActiveSession)
	assert.NotErrorIs(t, err, common.ErrValidation)
}

func TestNormalize(t *testing.T) {
	got := Normalize(models.Contact{Name: " Bob ", State: " sp ", City: "Recife ", Number: " 10"})
	assert.Equal(t, models.Contact{Name: "Bob", State: "SP", City: "Recife", Number: "10"}, got)
}

func TestScenario_SameCPFAcrossUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "Alice", "alice@x.com", "pw1")
	list, err := f.dir.Add(ctx, bob())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, "Bob", list[0].Name)

	list, err = f.dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.dir.Add(ctx, bob())
	require.ErrorIs(t, err, common.ErrDuplicateCPF)

	f.register(t, "Carol", "carol@x.com", "pw2")
	list, err = f.dir.Add(ctx, bob())
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.accounts.Login(ctx, "alice@x.com", "pw1"))
	list, err = f.dir.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAdd_GeneratesIDsAndKeepsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Alice", "alice@x.com", "pw1")

	n := 0
	f.dir.(*contactDirectory).newID = func() string {
		n++
		return []string{"", "id-1", "id-2", "id-3"}[n]
	}

	_, err := f.dir.Add(ctx, contact("Zeca", "529.982.247-25"))
	require.NoError(t, err)
	_, err = f.dir.Add(ctx, contact("Ana", "111.444.777-35"))
	require.NoError(t, err)
	withID := contact("Caio", "52998224725")
	withID.ID = "custom"
	list, err := f.dir.Add(ctx, withID)
	require.NoError(t, err)

	ids := []string{list[0].ID, list[1].ID, list[2].ID}
	assert.Equal(t, []string{"id-1", "id-2", "custom"}, ids)

	dup := contact("Dup", "987.654.321-00")
	dup.ID = "custom"
	_, err = f.dir.Add(ctx, dup)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestAdd_Validation(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice", "alice@x.com", "pw1")

	bad := []models.Contact{
		{Name: "", CPF: "111.444.777-35", Phone: "(11) 99999-0000"},
		{Name: "Bob", CPF: "111.444.777-36", Phone: "(11) 99999-0000"},
		{Name: "Bob", CPF: "111.111.111-11", Phone: "(11) 99999-0000"},
		{Name: "Bob", CPF: "111.444.777-35", Phone: "123"},
		{Name: "Bob", CPF: "111.444.777-35", Phone: "(11) 99999-0000", CEP: "123"},
		{Name: "Bob", CPF: "111.444.777-35", Phone: "(11) 99999-0000", State: "SPX"},
	}
	for _, c := range bad {
		_, err := f.dir.Add(context.Background(), c)
		require.ErrorIs(t, err, common.ErrValidation, c)
	}
	list, err := f.dir.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdate_ReplacesInPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Alice", "alice@x.com", "pw1")

	_, err := f.dir.Add(ctx, contact("Ana", "111.444.777-35"))
	require.NoError(t, err)
	list, err := f.dir.Add(ctx, contact("Zeca", "529.982.247-25"))
	require.NoError(t, err)

	changed := list[0]
	changed.Name = "Ana Maria"
	changed.City = "Recife"
	list, err = f.dir.Update(ctx, changed)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana Maria", list[0].Name)
	assert.Equal(t, "Recife", list[0].City)
	assert.Equal(t, changed.ID, list[0].ID)
	assert.Equal(t, "Zeca", list[1].Name)

	got, err := f.dir.Get(ctx, changed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.Name)

	// keeping its own CPF is fine, taking another contact's is not
	clash := list[0]
	clash.CPF = list[1].CPF
	_, err = f.dir.Update(ctx, clash)
	require.ErrorIs(t, err, common.ErrDuplicateCPF)

	ghost := contact("Ghost", "987.654.321-00")
	ghost.ID = "missing"
	_, err = f.dir.Update(ctx, ghost)
	require.ErrorIs(t, err, common.ErrContactNotFound)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Alice", "alice@x.com", "pw1")

	list, err := f.dir.Add(ctx, bob())
	require.NoError(t, err)
	id := list[0].ID

	list, err = f.dir.Remove(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.dir.Remove(ctx, id)
	require.ErrorIs(t, err, common.ErrContactNotFound)
	_, err = f.dir.Get(ctx, id)
	require.ErrorIs(t, err, common.ErrContactNotFound)
}

func TestList_IdempotentAndDetached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Alice", "alice@x.com", "pw1")
	c := bob()
	c.SetCoordinates(-23.5, -46.6)
	_, err := f.dir.Add(ctx, c)
	require.NoError(t, err)

	a, err := f.dir.List(ctx)
	require.NoError(t, err)
	b, err := f.dir.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	a[0].Name = "mutated"
	*a[0].Latitude = 0
	again, err := f.dir.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, b, again)
}

func TestDeleteAccount_DropsContacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Alice", "alice@x.com", "pw1")
	_, err := f.dir.Add(ctx, bob())
	require.NoError(t, err)

	require.NoError(t, f.accounts.DeleteCurrentAccount(ctx))
	f.register(t, "Alice", "alice@x.com", "pw1")

	list, err := f.dir.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
