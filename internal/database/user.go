package database

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// User represents a registered user.
// Username and email are unique as stored, no case normalization is applied.
// The password is stored as a bcrypt hash only, never in plain text.
// Users are never deleted in the current scope.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Ratings      []Rating
	Favorites    []Favorite
}

func (c *Client) CreateUser(ctx context.Context, user *User) error {
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		log.Error("failed to create user", "error", err)
		return err
	}
	return nil
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Error("failed to get user by ID", "error", err)
		return nil, err
	}
	return &user, nil
}

// GetUserByUsernameOrEmail resolves a login identifier, which may be either
// a username or an email address.
func (c *Client) GetUserByUsernameOrEmail(ctx context.Context, identifier string) (*User, error) {
	var user User
	err := c.db.WithContext(ctx).
		Where("username = ?", identifier).
		Or("email = ?", identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Error("failed to get user by identifier", "error", err)
		return nil, err
	}
	return &user, nil
}
