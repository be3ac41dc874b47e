// Package services holds the application services of contactkeeper.
//
//   - AccountService: registration, login/logout and account deletion over
//     the shared application document. At most one session is active.
//   - ContactDirectory: CRUD over the contacts of the session user, with CPF
//     uniqueness per user.
//   - Locator: batch geocoding of the session user's contacts.
//
// Filter, SortByName and Query are pure helpers for presenting a contact
// list; nothing they do is persisted.
//
// Every operation reloads the document from the state.Store and writes it
// back through state.Update, so a failed operation never leaves a partial
// write behind.
package services
