package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Rating is a single user's rating for a movie. MovieID is the external
// catalog identifier and is not validated locally. At most one row exists
// per (user, movie), enforced by a composite unique index.
//
// Ratings have no soft-delete column: the unique index must keep holding
// for re-rated movies.
type Rating struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_rating_user_movie"`
	MovieID   int  `gorm:"not null;uniqueIndex:idx_rating_user_movie"`
	Value     int  `gorm:"not null"`
}

// UpsertRating inserts the rating or overwrites the value of an existing row
// for the same (user, movie) pair. The conflict is resolved in a single
// atomic statement on the unique index, so two near-simultaneous requests
// can never produce duplicate rows.
func (c *Client) UpsertRating(ctx context.Context, userID uint, movieID int, value int) (*Rating, error) {
	if value < 1 || value > 10 {
		return nil, ErrInvalidRating
	}

	rating := Rating{
		UserID:  userID,
		MovieID: movieID,
		Value:   value,
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      value,
			"updated_at": time.Now(),
		}),
	}).Create(&rating).Error
	if err != nil {
		log.Error("failed to upsert rating", "error", err)
		return nil, err
	}
	return &rating, nil
}

func (c *Client) GetRating(ctx context.Context, userID uint, movieID int) (*Rating, error) {
	var rating Rating
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Error("failed to get rating", "error", err)
		return nil, err
	}
	return &rating, nil
}

func (c *Client) GetRatingsByUser(ctx context.Context, userID uint) ([]Rating, error) {
	var ratings []Rating
	err := c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&ratings).Error
	if err != nil {
		log.Error("failed to get ratings by user", "error", err)
		return nil, err
	}
	return ratings, nil
}

// GetAverageRating returns the mean rating for a movie, or nil when the
// movie has no ratings at all.
func (c *Client) GetAverageRating(ctx context.Context, movieID int) (*float64, error) {
	var avg *float64
	err := c.db.WithContext(ctx).
		Model(&Rating{}).
		Where("movie_id = ?", movieID).
		Select("AVG(value)").
		Scan(&avg).Error
	if err != nil {
		log.Error("failed to get average rating", "error", err)
		return nil, err
	}
	return avg, nil
}
