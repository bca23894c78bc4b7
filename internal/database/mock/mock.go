package mock

import (
	"context"
	"sync"
	"time"

	"github.com/jon4hz/cinelog/internal/database"
)

// MockDB is an in-memory implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	users      map[uint]*database.User
	nextUserID uint

	ratings      map[uint]*database.Rating
	nextRatingID uint

	favorites      map[uint]*database.Favorite
	nextFavoriteID uint

	// Error simulation
	CreateUserError     error
	GetUserError        error
	UpsertRatingError   error
	GetRatingError      error
	AverageRatingError  error
	AddFavoriteError    error
	RemoveFavoriteError error
	GetFavoritesError   error
}

var _ database.DB = (*MockDB)(nil)

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:          make(map[uint]*database.User),
		nextUserID:     1,
		ratings:        make(map[uint]*database.Rating),
		nextRatingID:   1,
		favorites:      make(map[uint]*database.Favorite),
		nextFavoriteID: 1,
	}
}

func (m *MockDB) CreateUser(_ context.Context, user *database.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return database.ErrConflict
		}
	}
	user.ID = m.nextUserID
	user.CreatedAt = time.Now()
	m.nextUserID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockDB) GetUserByID(_ context.Context, id uint) (*database.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (m *MockDB) GetUserByUsernameOrEmail(_ context.Context, identifier string) (*database.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Username == identifier || user.Email == identifier {
			u := *user
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) UpsertRating(_ context.Context, userID uint, movieID int, value int) (*database.Rating, error) {
	if m.UpsertRatingError != nil {
		return nil, m.UpsertRatingError
	}
	if value < 1 || value > 10 {
		return nil, database.ErrInvalidRating
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.ratings {
		if r.UserID == userID && r.MovieID == movieID {
			r.Value = value
			r.UpdatedAt = time.Now()
			rating := *r
			return &rating, nil
		}
	}
	rating := &database.Rating{
		ID:        m.nextRatingID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		UserID:    userID,
		MovieID:   movieID,
		Value:     value,
	}
	m.nextRatingID++
	m.ratings[rating.ID] = rating
	r := *rating
	return &r, nil
}

func (m *MockDB) GetRating(_ context.Context, userID uint, movieID int) (*database.Rating, error) {
	if m.GetRatingError != nil {
		return nil, m.GetRatingError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.ratings {
		if r.UserID == userID && r.MovieID == movieID {
			rating := *r
			return &rating, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) GetRatingsByUser(_ context.Context, userID uint) ([]database.Rating, error) {
	if m.GetRatingError != nil {
		return nil, m.GetRatingError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ratings []database.Rating
	for _, r := range m.ratings {
		if r.UserID == userID {
			ratings = append(ratings, *r)
		}
	}
	return ratings, nil
}

func (m *MockDB) GetAverageRating(_ context.Context, movieID int) (*float64, error) {
	if m.AverageRatingError != nil {
		return nil, m.AverageRatingError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum, count int
	for _, r := range m.ratings {
		if r.MovieID == movieID {
			sum += r.Value
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(count)
	return &avg, nil
}

func (m *MockDB) AddFavorite(_ context.Context, userID uint, movieID int) (*database.Favorite, error) {
	if m.AddFavoriteError != nil {
		return nil, m.AddFavoriteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.favorites {
		if f.UserID == userID && f.MovieID == movieID {
			return nil, database.ErrAlreadyExists
		}
	}
	favorite := &database.Favorite{
		ID:        m.nextFavoriteID,
		CreatedAt: time.Now(),
		UserID:    userID,
		MovieID:   movieID,
	}
	m.nextFavoriteID++
	m.favorites[favorite.ID] = favorite
	f := *favorite
	return &f, nil
}

func (m *MockDB) RemoveFavorite(_ context.Context, userID uint, movieID int) error {
	if m.RemoveFavoriteError != nil {
		return m.RemoveFavoriteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.favorites {
		if f.UserID == userID && f.MovieID == movieID {
			delete(m.favorites, id)
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *MockDB) GetFavoritesByUser(_ context.Context, userID uint) ([]database.Favorite, error) {
	if m.GetFavoritesError != nil {
		return nil, m.GetFavoritesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var favorites []database.Favorite
	for _, f := range m.favorites {
		if f.UserID == userID {
			favorites = append(favorites, *f)
		}
	}
	return favorites, nil
}

func (m *MockDB) IsFavorite(_ context.Context, userID uint, movieID int) (bool, error) {
	if m.GetFavoritesError != nil {
		return false, m.GetFavoritesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.favorites {
		if f.UserID == userID && f.MovieID == movieID {
			return true, nil
		}
	}
	return false, nil
}
