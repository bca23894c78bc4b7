package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm/clause"
)

// Favorite marks a movie on a user's favorites list. At most one row exists
// per (user, movie), enforced by a composite unique index. Rows are hard
// deleted on removal so the unique index keeps holding for re-added movies.
type Favorite struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_favorite_user_movie"`
	MovieID   int  `gorm:"not null;uniqueIndex:idx_favorite_user_movie"`
}

// AddFavorite adds a movie to the user's favorites. The insert is a single
// atomic statement that does nothing on conflict, so concurrent requests for
// the same (user, movie) leave exactly one row. Returns ErrAlreadyExists
// when the movie was already on the list.
func (c *Client) AddFavorite(ctx context.Context, userID uint, movieID int) (*Favorite, error) {
	favorite := Favorite{
		UserID:  userID,
		MovieID: movieID,
	}
	result := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoNothing: true,
	}).Create(&favorite)
	if result.Error != nil {
		// The DoNothing clause swallows the conflict, but keep the
		// translation for drivers that report it anyway.
		if isUniqueViolation(result.Error) {
			return nil, ErrAlreadyExists
		}
		log.Error("failed to add favorite", "error", result.Error)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyExists
	}
	return &favorite, nil
}

// RemoveFavorite deletes the favorite row, reporting ErrNotFound when the
// movie was not on the user's list.
func (c *Client) RemoveFavorite(ctx context.Context, userID uint, movieID int) error {
	result := c.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&Favorite{})
	if result.Error != nil {
		log.Error("failed to remove favorite", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Client) GetFavoritesByUser(ctx context.Context, userID uint) ([]Favorite, error) {
	var favorites []Favorite
	err := c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		log.Error("failed to get favorites by user", "error", err)
		return nil, err
	}
	return favorites, nil
}

func (c *Client) IsFavorite(ctx context.Context, userID uint, movieID int) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&Favorite{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(&count).Error
	if err != nil {
		log.Error("failed to check favorite", "error", err)
		return false, err
	}
	return count > 0, nil
}
