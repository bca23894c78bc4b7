package auth

import (
	"context"
	"testing"

	"github.com/jon4hz/cinelog/internal/database"
	"github.com/jon4hz/cinelog/internal/database/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	service := NewService(mock.NewMockDB())

	user, err := service.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)

	// The raw password is never stored.
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)
	assert.True(t, VerifyPassword("correct horse battery", user.PasswordHash))
}

func TestRegister_Conflicts(t *testing.T) {
	ctx := context.Background()
	service := NewService(mock.NewMockDB())

	_, err := service.Register(ctx, "alice", "alice@example.com", "password-one")
	require.NoError(t, err)

	_, err = service.Register(ctx, "alice", "other@example.com", "password-two")
	assert.ErrorIs(t, err, database.ErrConflict)

	_, err = service.Register(ctx, "other", "alice@example.com", "password-two")
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestRegister_InvalidInput(t *testing.T) {
	ctx := context.Background()
	service := NewService(mock.NewMockDB())

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "empty username", username: "", email: "a@example.com", password: "long enough"},
		{name: "empty email", username: "a", email: "", password: "long enough"},
		{name: "empty password", username: "a", email: "a@example.com", password: ""},
		{name: "short password", username: "a", email: "a@example.com", password: "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	service := NewService(mock.NewMockDB())

	registered, err := service.Register(ctx, "bob", "bob@example.com", "super secret pw")
	require.NoError(t, err)

	// Identifier matches username or email.
	byUsername, err := service.Authenticate(ctx, "bob", "super secret pw")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byUsername.ID)

	byEmail, err := service.Authenticate(ctx, "bob@example.com", "super secret pw")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byEmail.ID)
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	ctx := context.Background()
	service := NewService(mock.NewMockDB())

	_, err := service.Register(ctx, "bob", "bob@example.com", "super secret pw")
	require.NoError(t, err)

	// Wrong password and unknown identifier fail with the same error.
	_, err = service.Authenticate(ctx, "bob", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(ctx, "nobody", "super secret pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(ctx, "nobody", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("some password")
	require.NoError(t, err)
	assert.NotEqual(t, "some password", hash)
	assert.True(t, VerifyPassword("some password", hash))
	assert.False(t, VerifyPassword("other password", hash))

	// Hashes are salted: hashing the same password twice gives different hashes.
	hash2, err := HashPassword("some password")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}
