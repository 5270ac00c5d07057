package store

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserRepository persists user accounts.
type UserRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// GetByEmail returns the user for the provided email or nil when not found.
func (r *UserRepository) GetByEmail(email string) (*User, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, eris.New("email is required")
	}

	var user User
	err := r.db.First(&user, "email = ?", trimmed).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logError(r.logger, logrus.Fields{"email": trimmed}, err, "fetching user by email")
		return nil, eris.Wrapf(err, "fetching user by email: %s", trimmed)
	}

	return &user, nil
}

// GetByID returns the user for the provided id or nil when not found.
func (r *UserRepository) GetByID(id uuid.UUID) (*User, error) {
	var user User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logError(r.logger, logrus.Fields{"user_id": id}, err, "fetching user by id")
		return nil, eris.Wrapf(err, "fetching user: %s", id)
	}

	return &user, nil
}

// Add inserts a new user row.
func (r *UserRepository) Add(user *User) error {
	if user == nil {
		return eris.New("user is nil")
	}

	if err := r.db.Create(user).Error; err != nil {
		logError(r.logger, logrus.Fields{"email": user.Email}, err, "creating user")
		return eris.Wrapf(err, "creating user: %s", user.Email)
	}

	return nil
}
