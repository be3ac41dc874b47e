package state

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/contactkeeper/internal/models"
)

// MemoryStore keeps the encoded document in memory. The bytes round-trip
// through the codec so callers never share state with the store.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWithData seeds the slot with raw bytes, as if another client
// had written them.
func NewMemoryStoreWithData(data []byte) *MemoryStore {
	return &MemoryStore{data: append([]byte(nil), data...)}
}

func (m *MemoryStore) Load(ctx context.Context) (*models.AppState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Decode(m.data)
}

func (m *MemoryStore) Save(ctx context.Context, s *models.AppState) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, fn func(*models.AppState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := Decode(m.data)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	data, err := Encode(s)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

// Raw returns a copy of the stored bytes.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

func (m *MemoryStore) Close() error { return nil }
