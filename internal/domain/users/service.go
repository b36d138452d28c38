package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusconnect/server/internal/auth"
)

var ErrNotFound = errors.New("user not found")

// BcryptCost is the cost factor for password hashing.
const BcryptCost = 12

// User is the authorization subject and ownership key for event
// requests. Token issuance happens out of band; this service only
// manages the records tokens refer to.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
}

type CreateParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// EnsureAdmin creates the bootstrap admin account if no user exists
// with the given email or username. Idempotent across restarts.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (*User, error) {
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check admin email: %w", err)
	}
	if existing, err := s.repo.GetByUsername(ctx, username); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check admin username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         auth.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", username).Msg("bootstrap admin created")
	return user, nil
}

// VerifyCredentials checks an email/password pair and returns the user
// on success, or ErrNotFound for both unknown users and bad passwords
// so callers cannot distinguish them.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrNotFound
	}
	return user, nil
}
