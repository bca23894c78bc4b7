package movie

import (
	"context"
	"errors"

	"github.com/jon4hz/cinelog/internal/database"
	"github.com/jon4hz/cinelog/internal/tmdb"
	"golang.org/x/sync/errgroup"
)

// Catalog is the slice of the TMDB client the aggregation needs.
type Catalog interface {
	GetMovieDetails(ctx context.Context, movieID int, lang string) (tmdb.Movie, bool)
	GetSimilarMovies(ctx context.Context, movieID, limit int) []tmdb.Movie
}

// Detail is the combined movie-detail payload: the remote record plus the
// local rating and favorite state. Found reports whether the remote detail
// fetch succeeded; when false the Movie section is degraded but the local
// fields are still populated.
type Detail struct {
	Movie         tmdb.Movie   `json:"movie"`
	Found         bool         `json:"found"`
	Similar       []tmdb.Movie `json:"similar"`
	AverageRating *float64     `json:"average_rating"`
	UserRating    *int         `json:"user_rating"`
	IsFavorite    bool         `json:"is_favorite"`
}

// Service composes the remote catalog with the local ratings and favorites.
type Service struct {
	db      database.DB
	catalog Catalog
}

// NewService creates a new movie detail service.
func NewService(db database.DB, catalog Catalog) *Service {
	return &Service{db: db, catalog: catalog}
}

// GetDetail assembles the detail payload for a movie. The four lookups are
// independent and run concurrently, so the end-to-end latency is bounded by
// the slowest single call. userID is nil for unauthenticated requests; the
// user-specific fields then stay at their zero values. A degraded remote
// fetch never suppresses the local data.
func (s *Service) GetDetail(ctx context.Context, movieID int, userID *uint, lang string) (*Detail, error) {
	detail := &Detail{Similar: []tmdb.Movie{}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		detail.Movie, detail.Found = s.catalog.GetMovieDetails(gctx, movieID, lang)
		detail.Similar = s.catalog.GetSimilarMovies(gctx, movieID, tmdb.DefaultSimilarLimit)
		return nil
	})

	g.Go(func() error {
		avg, err := s.db.GetAverageRating(gctx, movieID)
		if err != nil {
			return err
		}
		detail.AverageRating = avg
		return nil
	})

	if userID != nil {
		id := *userID
		g.Go(func() error {
			rating, err := s.db.GetRating(gctx, id, movieID)
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return nil
				}
				return err
			}
			detail.UserRating = &rating.Value
			return nil
		})

		g.Go(func() error {
			favorite, err := s.db.IsFavorite(gctx, id, movieID)
			if err != nil {
				return err
			}
			detail.IsFavorite = favorite
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}
