// Package models defines the persisted application document and the records
// it holds: user accounts and their contacts.
package models

// AppState is the single persisted document. It holds every account of the
// datastore and the email of the active session, if any.
//
// JSON shape:
//
//	{"users": {"<email>": {...}}, "currentUser": "<email>" | null}
type AppState struct {
	Users       map[string]*UserRecord `json:"users"`
	CurrentUser *string                `json:"currentUser"`
}

// NewAppState returns an empty document: no users, logged out.
func NewAppState() *AppState {
	return &AppState{Users: map[string]*UserRecord{}}
}

// CurrentEmail returns the session email or "" when logged out.
func (s *AppState) CurrentEmail() string {
	if s.CurrentUser == nil {
		return ""
	}
	return *s.CurrentUser
}

// SetCurrentUser starts a session for email.
func (s *AppState) SetCurrentUser(email string) {
	s.CurrentUser = &email
}

// ClearSession logs the active user out.
func (s *AppState) ClearSession() {
	s.CurrentUser = nil
}

// ActiveUser returns the record of the session user, or nil.
func (s *AppState) ActiveUser() *UserRecord {
	email := s.CurrentEmail()
	if email == "" {
		return nil
	}
	return s.Users[email]
}

// Normalize repairs a freshly decoded document: nil maps and slices become
// empty, and a session pointing at a missing account is dropped.
func (s *AppState) Normalize() {
	if s.Users == nil {
		s.Users = map[string]*UserRecord{}
	}
	for email, u := range s.Users {
		if u == nil {
			delete(s.Users, email)
			continue
		}
		if u.Contacts == nil {
			u.Contacts = []Contact{}
		}
	}
	if email := s.CurrentEmail(); email == "" || s.Users[email] == nil {
		s.ClearSession()
	}
}
