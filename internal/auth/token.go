package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"notebase/app/internal/apperr"
)

// DefaultTokenTTL matches the original 8 hour session length.
const DefaultTokenTTL = 8 * time.Hour

// Tokens issues and validates HS256 bearer tokens carrying a user id as the
// subject.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens constructs the token service. An empty secret is refused so the
// server can never run with unverifiable sessions.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, eris.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the subject expiring after the configured TTL.
func (t *Tokens) Issue(subject uuid.UUID) (string, error) {
	if subject == uuid.Nil {
		return "", eris.New("token subject is required")
	}

	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", eris.Wrap(err, "signing token")
	}

	return signed, nil
}

// Subject validates the token's signature and expiry and returns the user id
// it was issued for. Every failure maps to the authentication error.
func (t *Tokens) Subject(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return uuid.Nil, eris.Wrap(apperr.ErrAuthentication, "invalid token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, eris.Wrap(apperr.ErrAuthentication, "token subject missing")
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, eris.Wrap(apperr.ErrAuthentication, "token subject malformed")
	}

	return subject, nil
}
