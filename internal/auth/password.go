package auth

import (
	"github.com/rotisserie/eris"
	"golang.org/x/crypto/bcrypt"
)

// Passwords hashes and verifies passwords with bcrypt. The plaintext never
// leaves this type.
type Passwords struct {
	cost int
}

// NewPasswords constructs the password hasher with the default bcrypt cost.
func NewPasswords() *Passwords {
	return &Passwords{cost: bcrypt.DefaultCost}
}

// Hash derives a one-way hash of the password.
func (p *Passwords) Hash(password string) (string, error) {
	if password == "" {
		return "", eris.New("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", eris.Wrap(err, "hashing password")
	}

	return string(hash), nil
}

// Verify reports whether the password matches the stored hash.
func (p *Passwords) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
