// Package users implements registration and login on top of the store and
// credential services.
package users

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"notebase/app/internal/apperr"
	"notebase/app/internal/auth"
	"notebase/app/internal/store"
)

// Service defines account operations.
type Service interface {
	Register(ctx context.Context, email, password, fullName string) (*store.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type service struct {
	store     *store.Store
	passwords *auth.Passwords
	tokens    *auth.Tokens
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

var _ Service = (*service)(nil)

// NewService wires the user service with its dependencies.
func NewService(st *store.Store, passwords *auth.Passwords, tokens *auth.Tokens, logger *logrus.Logger, hub *sentry.Hub) (Service, error) {
	if st == nil {
		return nil, eris.New("store is required")
	}
	if passwords == nil {
		return nil, eris.New("password service is required")
	}
	if tokens == nil {
		return nil, eris.New("token service is required")
	}

	return &service{
		store:     st,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
		sentryHub: hub,
	}, nil
}

// Register creates a new account. Emails are unique; only the bcrypt hash of
// the password is persisted.
func (s *service) Register(ctx context.Context, email, password, fullName string) (*store.User, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, eris.Wrap(apperr.ErrValidation, "a valid email is required")
	}
	if password == "" {
		return nil, eris.Wrap(apperr.ErrValidation, "password is required")
	}
	if fullName == "" {
		return nil, eris.Wrap(apperr.ErrValidation, "full name is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		s.recordError(logrus.Fields{"email": email}, err, "hashing password")
		return nil, eris.Wrap(err, "hashing password")
	}

	user := &store.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		IsActive:     true,
	}

	err = s.store.Atomically(ctx, func(sess *store.Session) error {
		existing, err := sess.Users.GetByEmail(email)
		if err != nil {
			return err
		}
		if existing != nil {
			return eris.Wrap(apperr.ErrConflict, "email already registered")
		}

		return sess.Users.Add(user)
	})
	if err != nil {
		// Two concurrent registrations race past the existence check; the
		// unique index decides and the loser surfaces as the same conflict.
		if store.IsDuplicate(err) {
			return nil, eris.Wrap(apperr.ErrConflict, "email already registered")
		}
		if !apperr.IsDomain(err) {
			s.recordError(logrus.Fields{"email": email}, err, "registering user")
		}
		return nil, err
	}

	return user, nil
}

// Login verifies the credentials and issues a bearer token with the user id
// as subject. Unknown emails and bad passwords are indistinguishable to the
// caller.
func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)

	user, err := s.store.Read(ctx).Users.GetByEmail(email)
	if err != nil {
		s.recordError(logrus.Fields{"email": email}, err, "looking up user for login")
		return "", eris.Wrap(err, "looking up user for login")
	}

	if user == nil || !s.passwords.Verify(password, user.PasswordHash) {
		return "", eris.Wrap(apperr.ErrAuthentication, "invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.recordError(logrus.Fields{"user_id": user.ID}, err, "issuing token")
		return "", eris.Wrap(err, "issuing token")
	}

	return token, nil
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
