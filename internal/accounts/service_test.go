package accounts

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maidbook/internal/models"
	"maidbook/internal/store"
)

func newTestService() *Service {
	logger := zerolog.New(io.Discard)
	return NewService(store.NewMemory(), 3, &logger)
}

func TestPasswordHashing(t *testing.T) {
	salt, hash, err := hashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, salt)
	assert.NotEmpty(t, hash)

	assert.True(t, verifyPassword("s3cret", salt, hash))
	assert.False(t, verifyPassword("wrong", salt, hash))
	assert.False(t, verifyPassword("s3cret", "not-base64!!", hash))

	// A second hash of the same password uses a fresh salt.
	salt2, hash2, err := hashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, salt, salt2)
	assert.NotEqual(t, hash, hash2)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, err := svc.Register(ctx, "ravi", "ravi@example.com", "s3cret", models.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, "ravi", user.Username)
	assert.NotEmpty(t, user.PasswordHash)
	assert.False(t, user.CreatedAt.IsZero())

	t.Run("duplicate handle rejected case-insensitively", func(t *testing.T) {
		_, err := svc.Register(ctx, "RAVI", "other@example.com", "pw", models.RoleCustomer)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "eve", "eve@example.com", "pw", "superuser")
		assert.Error(t, err)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "", "a@b.c", "pw", models.RoleCustomer)
		assert.Error(t, err)
	})

	t.Run("login succeeds with right password", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "Ravi", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "ravi", got.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ravi", "nope")
		assert.ErrorIs(t, err, ErrBadPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ghost", "pw")
		assert.ErrorIs(t, err, ErrUnknownUser)
	})
}
