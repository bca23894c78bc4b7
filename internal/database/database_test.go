package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Client {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *Client, username, email string) *User {
	t.Helper()
	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func TestCreateUser_Conflicts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "alice", "alice@example.com")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{name: "duplicate username", username: "alice", email: "other@example.com"},
		{name: "duplicate email", username: "other", email: "alice@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.CreateUser(ctx, &User{
				Username:     tt.username,
				Email:        tt.email,
				PasswordHash: "hash",
			})
			assert.ErrorIs(t, err, ErrConflict)
		})
	}

	// Case differences are distinct values, no normalization is applied.
	err := db.CreateUser(ctx, &User{
		Username:     "Alice",
		Email:        "Alice@example.com",
		PasswordHash: "hash",
	})
	assert.NoError(t, err)
}

func TestGetUserByUsernameOrEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "bob", "bob@example.com")

	byUsername, err := db.GetUserByUsernameOrEmail(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	byEmail, err := db.GetUserByUsernameOrEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = db.GetUserByUsernameOrEmail(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertRating_OverwritesInPlace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "carol", "carol@example.com")

	first, err := db.UpsertRating(ctx, user.ID, 42, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Value)

	_, err = db.UpsertRating(ctx, user.ID, 42, 9)
	require.NoError(t, err)

	// Exactly one row remains, holding the second value.
	ratings, err := db.GetRatingsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 9, ratings[0].Value)

	stored, err := db.GetRating(ctx, user.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.Value)
}

func TestUpsertRating_RejectsOutOfRange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "dave", "dave@example.com")

	for _, value := range []int{0, -1, 11, 100} {
		_, err := db.UpsertRating(ctx, user.ID, 42, value)
		assert.ErrorIs(t, err, ErrInvalidRating, "value %d", value)
	}
}

func TestGetAverageRating(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// No ratings: nil, not zero and no division by zero.
	avg, err := db.GetAverageRating(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, avg)

	u1 := createTestUser(t, db, "erin", "erin@example.com")
	u2 := createTestUser(t, db, "frank", "frank@example.com")

	_, err = db.UpsertRating(ctx, u1.ID, 42, 3)
	require.NoError(t, err)
	_, err = db.UpsertRating(ctx, u2.ID, 42, 5)
	require.NoError(t, err)

	avg, err = db.GetAverageRating(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 0.0001)

	// Ratings for other movies don't leak in.
	_, err = db.UpsertRating(ctx, u1.ID, 7, 10)
	require.NoError(t, err)
	avg, err = db.GetAverageRating(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 0.0001)
}

func TestFavorites_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "grace", "grace@example.com")

	// Removing before adding reports not found.
	err := db.RemoveFavorite(ctx, user.ID, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.AddFavorite(ctx, user.ID, 42)
	require.NoError(t, err)

	exists, err := db.IsFavorite(ctx, user.ID, 42)
	require.NoError(t, err)
	assert.True(t, exists)

	// Adding again is an idempotent no-op.
	_, err = db.AddFavorite(ctx, user.ID, 42)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	favorites, err := db.GetFavoritesByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, favorites, 1)

	require.NoError(t, db.RemoveFavorite(ctx, user.ID, 42))

	favorites, err = db.GetFavoritesByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	// Re-adding after removal works, the unique index still holds.
	_, err = db.AddFavorite(ctx, user.ID, 42)
	assert.NoError(t, err)
}

func TestAddFavorite_ConcurrentRequests(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "heidi", "heidi@example.com")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// One call wins, the other sees the existing row; neither
			// may produce a duplicate.
			_, _ = db.AddFavorite(ctx, user.ID, 42)
		}()
	}
	wg.Wait()

	favorites, err := db.GetFavoritesByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, favorites, 1)
}

func TestRatingsAreScopedToUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u1 := createTestUser(t, db, "ivan", "ivan@example.com")
	u2 := createTestUser(t, db, "judy", "judy@example.com")

	_, err := db.UpsertRating(ctx, u1.ID, 42, 8)
	require.NoError(t, err)
	_, err = db.UpsertRating(ctx, u2.ID, 42, 2)
	require.NoError(t, err)

	r1, err := db.GetRating(ctx, u1.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, 8, r1.Value)

	r2, err := db.GetRating(ctx, u2.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, r2.Value)
}
