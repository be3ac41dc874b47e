package redisstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/dmitrijs2005/contactkeeper/internal/state"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := Open(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestOpen_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Open(context.Background(), Options{Addr: addr})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestLoad_MissingKey(t *testing.T) {
	s, _ := setupTestRedis(t)
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Users)
}

func TestSave_WritesJSONUnderKey(t *testing.T) {
	s, mr := setupTestRedis(t)
	st := models.NewAppState()
	st.Users["a@x.com"] = &models.UserRecord{Name: "A", Contacts: []models.Contact{}}
	st.SetCurrentUser("a@x.com")
	require.NoError(t, s.Save(context.Background(), st))

	raw, err := mr.Get(state.DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":{"a@x.com":{"name":"A","contacts":[]}},"currentUser":"a@x.com"}`, raw)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestLoad_Corrupt(t *testing.T) {
	s, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(state.DefaultKey, "not json"))

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, common.ErrCorruptState)
}

func TestUpdate_CallbackErrorLeavesKeyUntouched(t *testing.T) {
	s, mr := setupTestRedis(t)
	boom := errors.New("boom")
	err := s.Update(context.Background(), func(st *models.AppState) error {
		st.Users["x@x.com"] = &models.UserRecord{Name: "X"}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(state.DefaultKey))
}

func TestUpdate_ConcurrentWritersAllLand(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := string(rune('a'+i)) + "@x.com"
			errs <- s.Update(ctx, func(st *models.AppState) error {
				st.Users[email] = &models.UserRecord{Name: email, Contacts: []models.Contact{}}
				return nil
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Users, n)
}

func TestNew_CustomKey(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := New(rdb, "tenantA")
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), models.NewAppState()))
	assert.True(t, mr.Exists("tenantA"))
	assert.False(t, mr.Exists(state.DefaultKey))
}
