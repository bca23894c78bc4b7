package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/cinelog/internal/api/models"
	"github.com/jon4hz/cinelog/internal/auth"
	"github.com/jon4hz/cinelog/internal/config"
	"github.com/jon4hz/cinelog/internal/database"
	"github.com/jon4hz/cinelog/internal/movie"
	"github.com/jon4hz/cinelog/internal/tmdb"
)

// Catalog is the slice of the TMDB client the handlers need.
type Catalog interface {
	movie.Catalog
	GetPopularMovies(ctx context.Context, lang string) []tmdb.Movie
	GetGenres(ctx context.Context, lang string) []tmdb.Genre
	SearchMovies(ctx context.Context, query string, genreID int, lang string) []tmdb.Movie
}

// Handler serves the JSON API.
type Handler struct {
	auth    *auth.Service
	db      database.DB
	catalog Catalog
	movies  *movie.Service
}

// New creates a new handler.
func New(authService *auth.Service, db database.DB, catalog Catalog, movies *movie.Service) *Handler {
	return &Handler{
		auth:    authService,
		db:      db,
		catalog: catalog,
		movies:  movies,
	}
}

// Register creates a new account and signs the user in.
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, database.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "username or email is already taken"})
		default:
			log.Error("registration failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	if err := auth.SignIn(c, user); err != nil {
		log.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}
	c.JSON(http.StatusCreated, models.UserFromDatabase(user))
}

// Login verifies credentials and signs the user in. Failures are reported
// uniformly, whatever their cause.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier and password are required"})
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Error("login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if err := auth.SignIn(c, user); err != nil {
		log.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}
	c.JSON(http.StatusOK, models.UserFromDatabase(user))
}

// Logout clears the session.
func (h *Handler) Logout(c *gin.Context) {
	if err := auth.SignOut(c); err != nil {
		log.Error("failed to clear session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SetLanguage stores the session language preference.
func (h *Handler) SetLanguage(c *gin.Context) {
	var req models.LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language is required"})
		return
	}
	if req.Language != config.LanguageHungarian && req.Language != config.LanguageEnglish {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language must be \"hu\" or \"en\""})
		return
	}
	if err := auth.SetLanguage(c, req.Language); err != nil {
		log.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": req.Language})
}

// PopularMovies lists the catalog's popular movies in the session language.
// An empty list may also mean the catalog is unavailable.
func (h *Handler) PopularMovies(c *gin.Context) {
	sess := auth.CurrentSession(c)
	movies := h.catalog.GetPopularMovies(c.Request.Context(), sess.Language)
	c.JSON(http.StatusOK, gin.H{"results": movies})
}

// SearchMovies runs a free-text search, optionally narrowed to a genre.
// A genre of 0 or a non-numeric value means no filter.
func (h *Handler) SearchMovies(c *gin.Context) {
	sess := auth.CurrentSession(c)
	query := c.Query("q")
	genreID, _ := strconv.Atoi(c.Query("genre"))

	movies := h.catalog.SearchMovies(c.Request.Context(), query, genreID, sess.Language)
	c.JSON(http.StatusOK, gin.H{"results": movies})
}

// Genres lists the catalog's genre taxonomy in the session language.
func (h *Handler) Genres(c *gin.Context) {
	sess := auth.CurrentSession(c)
	genres := h.catalog.GetGenres(c.Request.Context(), sess.Language)
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

// MovieDetail returns the combined detail payload for a movie: the remote
// record, the local average rating and, for authenticated callers, their
// own rating and favorite state.
func (h *Handler) MovieDetail(c *gin.Context) {
	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}

	sess := auth.CurrentSession(c)
	detail, err := h.movies.GetDetail(c.Request.Context(), movieID, sess.UserID(), sess.Language)
	if err != nil {
		log.Error("failed to assemble movie detail", "movie", movieID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load movie"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// RateMovie stores or overwrites the caller's rating for a movie.
func (h *Handler) RateMovie(c *gin.Context) {
	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}

	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating value is required"})
		return
	}

	sess := auth.CurrentSession(c)
	rating, err := h.db.UpsertRating(c.Request.Context(), sess.User.ID, movieID, req.Value)
	if err != nil {
		if errors.Is(err, database.ErrInvalidRating) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 10"})
			return
		}
		log.Error("failed to store rating", "movie", movieID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store rating"})
		return
	}
	c.JSON(http.StatusOK, models.Rating{
		MovieID:   rating.MovieID,
		Value:     rating.Value,
		UpdatedAt: rating.UpdatedAt,
	})
}

// MyRatings lists the caller's ratings.
func (h *Handler) MyRatings(c *gin.Context) {
	sess := auth.CurrentSession(c)
	ratings, err := h.db.GetRatingsByUser(c.Request.Context(), sess.User.ID)
	if err != nil {
		log.Error("failed to load ratings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ratings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": models.RatingsFromDatabase(ratings)})
}

// AddFavorite puts a movie on the caller's favorites list. Adding a movie
// that is already on the list is a no-op.
func (h *Handler) AddFavorite(c *gin.Context) {
	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}

	sess := auth.CurrentSession(c)
	favorite, err := h.db.AddFavorite(c.Request.Context(), sess.User.ID, movieID)
	if err != nil {
		if errors.Is(err, database.ErrAlreadyExists) {
			c.JSON(http.StatusOK, gin.H{"status": "already_favorite", "movie_id": movieID})
			return
		}
		log.Error("failed to add favorite", "movie", movieID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
		return
	}
	c.JSON(http.StatusCreated, models.Favorite{
		MovieID:   favorite.MovieID,
		CreatedAt: favorite.CreatedAt,
	})
}

// RemoveFavorite takes a movie off the caller's favorites list. Removing a
// movie that was never added is reported as not found.
func (h *Handler) RemoveFavorite(c *gin.Context) {
	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}

	sess := auth.CurrentSession(c)
	if err := h.db.RemoveFavorite(c.Request.Context(), sess.User.ID, movieID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "not_favorite", "movie_id": movieID})
			return
		}
		log.Error("failed to remove favorite", "movie", movieID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove favorite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed", "movie_id": movieID})
}

// MyFavorites lists the caller's favorites.
func (h *Handler) MyFavorites(c *gin.Context) {
	sess := auth.CurrentSession(c)
	favorites, err := h.db.GetFavoritesByUser(c.Request.Context(), sess.User.ID)
	if err != nil {
		log.Error("failed to load favorites", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load favorites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": models.FavoritesFromDatabase(favorites)})
}
