package state

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
)

// Decode parses a stored document. Empty input (or a JSON null) yields a
// fresh document; undecodable input is reported as common.ErrCorruptState.
func Decode(data []byte) (*models.AppState, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return models.NewAppState(), nil
	}
	var s models.AppState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptState, err)
	}
	s.Normalize()
	return &s, nil
}

// Encode serializes s for storage.
func Encode(s *models.AppState) ([]byte, error) {
	if s == nil {
		s = models.NewAppState()
	}
	if s.Users == nil {
		s.Users = map[string]*models.UserRecord{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}
