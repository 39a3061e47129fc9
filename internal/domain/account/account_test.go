package account

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ownerID := uuid.New()
		acc, err := NewAccount(ownerID, 5000000)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, acc.ID)
		assert.Equal(t, ownerID, acc.OwnerID)
		assert.Equal(t, int64(5000000), acc.Balance)
		assert.Equal(t, 1, acc.Version)
		assert.False(t, acc.CreatedAt.IsZero())
		assert.Equal(t, acc.CreatedAt, acc.UpdatedAt)
	})

	t.Run("zero opening balance", func(t *testing.T) {
		acc, err := NewAccount(uuid.New(), 0)
		require.NoError(t, err)
		assert.Zero(t, acc.Balance)
	})

	t.Run("missing owner", func(t *testing.T) {
		acc, err := NewAccount(uuid.Nil, 100)
		assert.ErrorIs(t, err, ErrMissingOwner)
		assert.Nil(t, acc)
	})

	t.Run("negative opening balance", func(t *testing.T) {
		acc, err := NewAccount(uuid.New(), -1)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Nil(t, acc)
	})
}

func TestAccount_CanCover(t *testing.T) {
	acc, err := NewAccount(uuid.New(), 500)
	require.NoError(t, err)

	assert.True(t, acc.CanCover(499))
	assert.True(t, acc.CanCover(500))
	assert.False(t, acc.CanCover(501))
}

func TestErrAccountNotFound_Is(t *testing.T) {
	id := uuid.New()
	err := ErrAccountNotFound{AccountID: id}

	assert.ErrorIs(t, err, ErrAccountNotFound{})
	assert.ErrorIs(t, err, ErrAccountNotFound{AccountID: id})
	assert.NotErrorIs(t, err, ErrAccountNotFound{AccountID: uuid.New()})
}
