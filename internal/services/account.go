package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/cryptox"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/metrics"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/dmitrijs2005/contactkeeper/internal/state"
	"github.com/dmitrijs2005/contactkeeper/internal/validation"
)

// AccountService manages accounts and the single active session.
//
// Contract:
//   - Register: fails with common.ErrDuplicateAccount for a known email and
//     common.ErrValidation for empty fields or a malformed email. Starts a
//     session for the new account.
//   - Login: fails with common.ErrInvalidCredentials for an unknown email or
//     a wrong password, leaving the session unchanged.
//   - Logout: idempotent.
//   - DeleteCurrentAccount: fails with common.ErrNoActiveSession when logged out.
//   - CurrentUser / CurrentEmail: nil / "" when logged out.
//   - ConfirmPassword: false (not an error) when logged out.
type AccountService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	DeleteCurrentAccount(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.UserRecord, error)
	CurrentEmail(ctx context.Context) (string, error)
	ConfirmPassword(ctx context.Context, candidate string) (bool, error)
}

type accountService struct {
	store  state.Store
	logger logging.Logger
}

func NewAccountService(store state.Store, logger logging.Logger) AccountService {
	return &accountService{store: store, logger: logger.With("component", "accounts")}
}

func (a *accountService) Register(ctx context.Context, name, email, password string) (err error) {
	defer func() { metrics.ObserveAccount("register", err) }()

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if err := validation.Email(email); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	salt, verifier, err := cryptox.NewCredentials([]byte(password))
	if err != nil {
		return fmt.Errorf("derive credentials: %w", err)
	}

	err = state.Update(ctx, a.store, func(s *models.AppState) error {
		if _, ok := s.Users[email]; ok {
			return common.ErrDuplicateAccount
		}
		s.Users[email] = &models.UserRecord{
			Name:     name,
			Salt:     salt,
			Verifier: verifier,
			Contacts: []models.Contact{},
		}
		s.SetCurrentUser(email)
		return nil
	})
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "account registered", "email", email)
	return nil
}

func (a *accountService) Login(ctx context.Context, email, password string) (err error) {
	defer func() { metrics.ObserveAccount("login", err) }()

	email = strings.TrimSpace(email)
	upgraded := false
	err = state.Update(ctx, a.store, func(s *models.AppState) error {
		u, ok := s.Users[email]
		if !ok {
			return common.ErrInvalidCredentials
		}
		if u.HasLegacyPassword() {
			if !cryptox.CheckPlain([]byte(password), u.Password) {
				return common.ErrInvalidCredentials
			}
			salt, verifier, err := cryptox.NewCredentials([]byte(password))
			if err != nil {
				return fmt.Errorf("derive credentials: %w", err)
			}
			u.Salt, u.Verifier, u.Password = salt, verifier, ""
			upgraded = true
		} else if !cryptox.CheckPassword([]byte(password), u.Salt, u.Verifier) {
			return common.ErrInvalidCredentials
		}
		s.SetCurrentUser(email)
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			a.logger.Warn(ctx, "login rejected", "email", email)
		}
		return err
	}
	if upgraded {
		a.logger.Info(ctx, "legacy credential upgraded", "email", email)
	}
	a.logger.Info(ctx, "logged in", "email", email)
	return nil
}

func (a *accountService) Logout(ctx context.Context) (err error) {
	defer func() { metrics.ObserveAccount("logout", err) }()

	return state.Update(ctx, a.store, func(s *models.AppState) error {
		s.ClearSession()
		return nil
	})
}

func (a *accountService) DeleteCurrentAccount(ctx context.Context) (err error) {
	defer func() { metrics.ObserveAccount("delete", err) }()

	var email string
	err = state.Update(ctx, a.store, func(s *models.AppState) error {
		email = s.CurrentEmail()
		if email == "" {
			return common.ErrNoActiveSession
		}
		delete(s.Users, email)
		s.ClearSession()
		return nil
	})
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "account deleted", "email", email)
	return nil
}

func (a *accountService) CurrentUser(ctx context.Context) (*models.UserRecord, error) {
	s, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.ActiveUser(), nil
}

func (a *accountService) CurrentEmail(ctx context.Context) (string, error) {
	s, err := a.store.Load(ctx)
	if err != nil {
		return "", err
	}
	return s.CurrentEmail(), nil
}

func (a *accountService) ConfirmPassword(ctx context.Context, candidate string) (bool, error) {
	s, err := a.store.Load(ctx)
	if err != nil {
		return false, err
	}
	u := s.ActiveUser()
	if u == nil {
		return false, nil
	}
	if u.HasLegacyPassword() {
		return cryptox.CheckPlain([]byte(candidate), u.Password), nil
	}
	return cryptox.CheckPassword([]byte(candidate), u.Salt, u.Verifier), nil
}
