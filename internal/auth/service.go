package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jon4hz/cinelog/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every authentication failure. The
// cause (unknown identifier vs. wrong password) is deliberately not
// distinguishable, so login attempts cannot probe for account existence.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidInput is returned when registration input fails validation.
var ErrInvalidInput = errors.New("invalid input")

const minPasswordLength = 8

// dummyHash is compared against when the identifier resolves to no user, so
// the failure path costs a bcrypt verification either way.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("cinelog-timing-pad"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// Service handles user registration and credential verification.
type Service struct {
	db database.DB
}

// NewService creates a new auth service.
func NewService(db database.DB) *Service {
	return &Service{db: db}
}

// Register creates a new user account. The password is stored as a salted
// bcrypt hash, never in plain text. Duplicate usernames or emails are
// rejected with database.ErrConflict, whether caught by the unique
// constraint or by a racing insert.
func (s *Service) Register(ctx context.Context, username, email, password string) (*database.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &database.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a login. The identifier matches against either the
// username or the email address.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*database.User, error) {
	user, err := s.db.GetUserByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Burn a comparison so unknown identifiers take as long
			// as wrong passwords.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID resolves a persisted session identity back to a user.
func (s *Service) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	return s.db.GetUserByID(ctx, id)
}

// HashPassword returns a salted bcrypt hash of the plain password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plain password matches the stored hash.
// bcrypt's comparison is constant-time relative to the stored hash.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
