package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

// Sentinel errors returned by the persistence layer. Unique-constraint
// violations racing past an application-level check are translated into the
// same errors as the pre-check path, never leaked as raw storage errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrConflict      = errors.New("record already exists")
	ErrAlreadyExists = errors.New("favorite already exists")
	ErrInvalidRating = errors.New("rating must be between 1 and 10")
)

// DB defines the persistence operations used by the rest of the application.
type DB interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByUsernameOrEmail(ctx context.Context, identifier string) (*User, error)

	UpsertRating(ctx context.Context, userID uint, movieID int, value int) (*Rating, error)
	GetRating(ctx context.Context, userID uint, movieID int) (*Rating, error)
	GetRatingsByUser(ctx context.Context, userID uint) ([]Rating, error)
	GetAverageRating(ctx context.Context, movieID int) (*float64, error)

	AddFavorite(ctx context.Context, userID uint, movieID int) (*Favorite, error)
	RemoveFavorite(ctx context.Context, userID uint, movieID int) error
	GetFavoritesByUser(ctx context.Context, userID uint) ([]Favorite, error)
	IsFavorite(ctx context.Context, userID uint, movieID int) (bool, error)
}

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection and performs migrations.
func New(dbpath string) (*Client, error) {
	db, err := gorm.Open(sqlite.Open(dbpath), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	client := &Client{db: db}
	if err := client.Migrate(); err != nil {
		return nil, err
	}
	return client, nil
}

// Migrate applies the schema migrations.
func (c *Client) Migrate() error {
	if err := c.db.AutoMigrate(
		&User{},
		&Rating{},
		&Favorite{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint violation.
// gorm translates these to ErrDuplicatedKey when TranslateError is enabled,
// the string check covers drivers that slip through untranslated.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
