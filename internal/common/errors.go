// Package common defines the sentinel errors shared by the store, the
// services, the lookup clients and the CLI. Callers should use errors.Is to
// match these values; layers add context with fmt.Errorf("...: %w", err).
package common

import "errors"

var (
	// Account errors.
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoActiveSession    = errors.New("no active session")

	// Directory errors.
	ErrDuplicateCPF    = errors.New("a contact with this CPF already exists")
	ErrContactNotFound = errors.New("contact not found")

	// Form-level validation (malformed CPF/CEP/phone, empty names, ...).
	ErrValidation = errors.New("validation error")

	// Lookup errors.
	ErrNetwork         = errors.New("network error")
	ErrAddressNotFound = errors.New("address not found")
	ErrGeocodeFailed   = errors.New("geocoding failed")
	ErrSuperseded      = errors.New("superseded by a newer request")

	// State store errors.
	ErrCorruptState = errors.New("corrupt application state")
)
