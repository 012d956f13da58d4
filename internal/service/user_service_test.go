package service

import (
	"context"
	"testing"

	"shareit/internal/apperrors"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	alice := e.user(t, "alice")
	bob := e.user(t, "bob")

	t.Run("InvalidPayload", func(t *testing.T) {
		_, err := e.users.Create(ctx, models.UserCreate{Name: " ", Email: "x@example.com"})
		assert.True(t, apperrors.IsValidation(err))

		_, err = e.users.Create(ctx, models.UserCreate{Name: "x", Email: "not-an-email"})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("DuplicateEmailIsConflict", func(t *testing.T) {
		_, err := e.users.Create(ctx, models.UserCreate{Name: "clone", Email: alice.Email})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)

		_, err = e.users.Update(ctx, bob.ID, models.UserUpdate{Email: alice.Email})
		assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)
	})

	t.Run("PartialUpdateKeepsBlankFields", func(t *testing.T) {
		updated, err := e.users.Update(ctx, alice.ID, models.UserUpdate{Name: "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "Alice", updated.Name)
		assert.Equal(t, alice.Email, updated.Email)

		updated, err = e.users.Update(ctx, alice.ID, models.UserUpdate{Email: "alice@new.org"})
		require.NoError(t, err)
		assert.Equal(t, "Alice", updated.Name)
		assert.Equal(t, "alice@new.org", updated.Email)

		_, err = e.users.Update(ctx, alice.ID, models.UserUpdate{Email: "broken"})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("GetListDelete", func(t *testing.T) {
		users, err := e.users.List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)

		require.NoError(t, e.users.Delete(ctx, bob.ID))
		_, err = e.users.Get(ctx, bob.ID)
		assert.True(t, apperrors.IsNotFound(err))
		assert.True(t, apperrors.IsNotFound(e.users.Delete(ctx, bob.ID)))
	})
}
