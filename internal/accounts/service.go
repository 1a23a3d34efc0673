// Package accounts handles user registration and login against the users
// collection. Credentials are PBKDF2-SHA256 salted hashes; nothing else
// about authentication (sessions, tokens) lives in this system.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"maidbook/internal/models"
	"maidbook/internal/store"
)

var (
	// ErrUsernameTaken means a registration collided with an existing handle.
	ErrUsernameTaken = errors.New("accounts: username already exists")

	// ErrUnknownUser means no account matches the handle.
	ErrUnknownUser = errors.New("accounts: user not found")

	// ErrBadPassword means the password did not verify.
	ErrBadPassword = errors.New("accounts: invalid password")
)

// Service reads and appends to the users collection.
type Service struct {
	tables          store.Tables
	conflictRetries int
	logger          zerolog.Logger
	now             func() time.Time
}

func NewService(s store.Store, conflictRetries int, logger *zerolog.Logger) *Service {
	if conflictRetries <= 0 {
		conflictRetries = 3
	}
	return &Service{
		tables:          store.Tables{Store: s},
		conflictRetries: conflictRetries,
		logger:          logger.With().Str("component", "accounts").Logger(),
		now:             time.Now,
	}
}

// Register creates an account. Handles are unique case-insensitively; a
// concurrent registration of the same handle loses either on the duplicate
// check or on the write conflict that follows.
func (s *Service) Register(ctx context.Context, username, email, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("accounts: username, email and password are required")
	}
	switch role {
	case models.RoleCustomer, models.RoleWorker, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("accounts: unknown role %q", role)
	}

	for attempt := 0; ; attempt++ {
		users, token, err := s.tables.Users(ctx)
		if err != nil {
			return nil, fmt.Errorf("load users: %w", err)
		}

		for _, u := range users {
			if models.SameHandle(u.Username, username) {
				return nil, ErrUsernameTaken
			}
		}

		salt, hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		user := models.User{
			Username:     username,
			Email:        email,
			Role:         role,
			PasswordSalt: salt,
			PasswordHash: hash,
			CreatedAt:    s.now(),
		}

		_, err = s.tables.SaveUsers(ctx, append(users, user), token)
		if err == nil {
			s.logger.Info().Str("username", username).Str("role", role).Msg("account created")
			return &user, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("persist user: %w", err)
		}
		if attempt >= s.conflictRetries {
			return nil, fmt.Errorf("registration contended: %w", store.ErrConflict)
		}
	}
}

// Authenticate verifies a handle and password, returning the account. The
// distinct unknown-user and bad-password outcomes are preserved for the
// caller's messaging.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if !verifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrBadPassword
	}
	return user, nil
}

// Lookup finds an account by handle, case-insensitively.
func (s *Service) Lookup(ctx context.Context, username string) (*models.User, error) {
	users, _, err := s.tables.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for i := range users {
		if models.SameHandle(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, ErrUnknownUser
}
