package models

// UserRecord is one account of the datastore, keyed by email in AppState.
//
// Credentials are kept as an argon2id salt and a verifier of the derived key.
// Password is only ever read: documents written by older clients stored the
// plaintext password there, and it is replaced by Salt/Verifier on the first
// successful login.
type UserRecord struct {
	Name     string    `json:"name"`
	Salt     []byte    `json:"salt,omitempty"`
	Verifier []byte    `json:"verifier,omitempty"`
	Password string    `json:"password,omitempty"`
	Contacts []Contact `json:"contacts"`
}

// HasLegacyPassword reports whether the record still carries a plaintext
// credential instead of a verifier.
func (u *UserRecord) HasLegacyPassword() bool {
	return len(u.Verifier) == 0 && u.Password != ""
}

// ContactIndex returns the position of the contact with id, or -1.
func (u *UserRecord) ContactIndex(id string) int {
	for i := range u.Contacts {
		if u.Contacts[i].ID == id {
			return i
		}
	}
	return -1
}

// HasCPF reports whether a contact other than exceptID already uses cpf.
// Pass an empty exceptID to check every contact.
func (u *UserRecord) HasCPF(cpf, exceptID string) bool {
	for i := range u.Contacts {
		c := &u.Contacts[i]
		if c.CPF == cpf && (exceptID == "" || c.ID != exceptID) {
			return true
		}
	}
	return false
}

// ContactsCopy returns a copy of the contact list that callers may keep.
func (u *UserRecord) ContactsCopy() []Contact {
	out := make([]Contact, len(u.Contacts))
	for i := range u.Contacts {
		out[i] = u.Contacts[i].Clone()
	}
	return out
}
