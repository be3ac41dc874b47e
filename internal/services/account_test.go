package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_StartsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "Alice", "alice@x.com", "pw1")

	u, err := f.accounts.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Alice", u.Name)
	assert.Empty(t, u.Contacts)

	email, err := f.accounts.CurrentEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", email)
}

func TestRegister_NeverStoresPlaintext(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice", "alice@x.com", "s3cret-pw")

	raw := string(f.store.Raw())
	assert.NotContains(t, raw, "s3cret-pw")
	assert.NotContains(t, raw, `"password"`)
	assert.Contains(t, raw, `"verifier"`)
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice", "alice@x.com", "pw1")

	err := f.accounts.Register(context.Background(), "Other Alice", "alice@x.com", "pw2")
	require.ErrorIs(t, err, common.ErrDuplicateAccount)

	u, err := f.accounts.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct{ name, email, password string }{
		{"", "a@x.com", "pw"},
		{"A", "", "pw"},
		{"A", "not-an-email", "pw"},
		{"A", "a@x.com", ""},
	}
	for _, tt := range tests {
		err := f.accounts.Register(context.Background(), tt.name, tt.email, tt.password)
		require.ErrorIs(t, err, common.ErrValidation, tt)
	}
	email, err := f.accounts.CurrentEmail(context.Background())
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Alice", "alice@x.com", "pw1")
	f.register(t, "Carol", "carol@x.com", "pw2")

	t.Run("wrong password keeps session", func(t *testing.T) {
		err := f.accounts.Login(ctx, "alice@x.com", "nope")
		require.ErrorIs(t, err, common.ErrInvalidCredentials)
		email, _ := f.accounts.CurrentEmail(ctx)
		assert.Equal(t, "carol@x.com", email)
	})

	t.Run("unknown email keeps session", func(t *testing.T) {
		err := f.accounts.Login(ctx, "ghost@x.com", "pw1")
		require.ErrorIs(t, err, common.ErrInvalidCredentials)
		email, _ := f.accounts.CurrentEmail(ctx)
		assert.Equal(t, "carol@x.com", email)
	})

	t.Run("correct password switches session", func(t *testing.T) {
		require.NoError(t, f.accounts.Login(ctx, "alice@x.com", "pw1"))
		email, _ := f.accounts.CurrentEmail(ctx)
		assert.Equal(t, "alice@x.com", email)
	})
}

func TestLogin_UpgradesLegacyPlaintext(t *testing.T) {
	st := state.NewMemoryStoreWithData([]byte(`{"users":{"old@x.com":{"name":"Old","password":"pw1","contacts":[]}},"currentUser":null}`))
	accounts := NewAccountService(st, logging.NewNopLogger())
	ctx := context.Background()

	require.ErrorIs(t, accounts.Login(ctx, "old@x.com", "pw2"), common.ErrInvalidCredentials)
	assert.Contains(t, string(st.Raw()), `"password":"pw1"`)

	require.NoError(t, accounts.Login(ctx, "old@x.com", "pw1"))
	raw := string(st.Raw())
	assert.NotContains(t, raw, `"password"`)
	assert.Contains(t, raw, `"verifier"`)

	require.NoError(t, accounts.Logout(ctx))
	require.NoError(t, accounts.Login(ctx, "old@x.com", "pw1"))
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Alice", "alice@x.com", "pw1")

	require.NoError(t, f.accounts.Logout(ctx))
	u, err := f.accounts.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	before := f.store.Raw()
	require.NoError(t, f.accounts.Logout(ctx))
	assert.Equal(t, before, f.store.Raw())
}

func TestDeleteCurrentAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.accounts.DeleteCurrentAccount(ctx), common.ErrNoActiveSession)

	f.register(t, "Alice", "alice@x.com", "pw1")
	f.register(t, "Carol", "carol@x.com", "pw2")
	require.NoError(t, f.accounts.DeleteCurrentAccount(ctx))

	u, err := f.accounts.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	require.ErrorIs(t, f.accounts.Login(ctx, "carol@x.com", "pw2"), common.ErrInvalidCredentials)
	require.NoError(t, f.accounts.Login(ctx, "alice@x.com", "pw1"))
}

func TestConfirmPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.accounts.ConfirmPassword(ctx, "pw1")
	require.NoError(t, err)
	assert.False(t, ok, "no session")

	f.register(t, "Alice", "alice@x.com", "pw1")
	ok, err = f.accounts.ConfirmPassword(ctx, "pw1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.accounts.ConfirmPassword(ctx, "PW1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccount_CorruptStoreSurfaces(t *testing.T) {
	st := state.NewMemoryStoreWithData([]byte("{"))
	accounts := NewAccountService(st, logging.NewNopLogger())

	_, err := accounts.CurrentUser(context.Background())
	require.ErrorIs(t, err, common.ErrCorruptState)
	require.ErrorIs(t, accounts.Login(context.Background(), "a@x.com", "pw"), common.ErrCorruptState)
}
