// Package state persists the application document (models.AppState) in a
// single key/value slot.
//
// Every operation reloads the whole document from the backing slot and saves
// it back; nothing is cached across calls. Backends that can make the
// load/mutate/save cycle atomic implement Updater, and Update picks that up.
package state

import (
	"context"

	"github.com/dmitrijs2005/contactkeeper/internal/models"
)

// DefaultKey is the slot name the document is stored under.
const DefaultKey = "appState"

// Store reads and writes the whole application document.
//
// Load returns a fresh empty document when the slot is absent and an error
// wrapping common.ErrCorruptState when the stored bytes cannot be decoded.
// Save overwrites the slot with a single write.
type Store interface {
	Load(ctx context.Context) (*models.AppState, error)
	Save(ctx context.Context, s *models.AppState) error
	Close() error
}

// Updater is implemented by stores that can run a read-modify-write cycle
// atomically. If fn returns an error nothing is written.
type Updater interface {
	Update(ctx context.Context, fn func(*models.AppState) error) error
}

// Update applies fn to the stored document and saves the result. It uses the
// store's own Updater when there is one and a plain Load/fn/Save otherwise.
func Update(ctx context.Context, st Store, fn func(*models.AppState) error) error {
	if u, ok := st.(Updater); ok {
		return u.Update(ctx, fn)
	}
	s, err := st.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return st.Save(ctx, s)
}
