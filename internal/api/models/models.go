package models

import (
	"time"

	"github.com/jon4hz/cinelog/internal/database"
)

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the payload for logging in. Identifier matches against
// either the username or the email address.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LanguageRequest selects the session language preference.
type LanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

// RatingRequest carries a single rating value.
type RatingRequest struct {
	Value int `json:"value" binding:"required"`
}

// User is the public view of a user account.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Rating is the public view of a stored rating.
type Rating struct {
	MovieID   int       `json:"movie_id"`
	Value     int       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Favorite is the public view of a favorites entry.
type Favorite struct {
	MovieID   int       `json:"movie_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDatabase converts a database user to its public view.
func UserFromDatabase(user *database.User) User {
	return User{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// RatingsFromDatabase converts stored ratings to their public view.
func RatingsFromDatabase(ratings []database.Rating) []Rating {
	result := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		result = append(result, Rating{
			MovieID:   r.MovieID,
			Value:     r.Value,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return result
}

// FavoritesFromDatabase converts stored favorites to their public view.
func FavoritesFromDatabase(favorites []database.Favorite) []Favorite {
	result := make([]Favorite, 0, len(favorites))
	for _, f := range favorites {
		result = append(result, Favorite{
			MovieID:   f.MovieID,
			CreatedAt: f.CreatedAt,
		})
	}
	return result
}
