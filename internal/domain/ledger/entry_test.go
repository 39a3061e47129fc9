package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	reference := uuid.New()
	accountID := uuid.New()

	t.Run("credit adds to the balance", func(t *testing.T) {
		entry, err := NewEntry(reference, accountID, DirectionCredit, PurposeDeposit, 250, 1000, nil)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, entry.ID)
		assert.Equal(t, reference, entry.Reference)
		assert.Equal(t, accountID, entry.AccountID)
		assert.Equal(t, int64(1000), entry.BalanceBefore)
		assert.Equal(t, int64(1250), entry.BalanceAfter)
	})

	t.Run("debit subtracts from the balance", func(t *testing.T) {
		entry, err := NewEntry(reference, accountID, DirectionDebit, PurposeWithdrawal, 400, 1000, nil)
		require.NoError(t, err)

		assert.Equal(t, int64(1000), entry.BalanceBefore)
		assert.Equal(t, int64(600), entry.BalanceAfter)
	})

	t.Run("carries metadata", func(t *testing.T) {
		counterparty := uuid.New().String()
		entry, err := NewEntry(reference, accountID, DirectionDebit, PurposeTransfer, 100, 500, map[string]string{
			MetaCounterparty: counterparty,
		})
		require.NoError(t, err)
		assert.Equal(t, counterparty, entry.Metadata[MetaCounterparty])
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewEntry(reference, accountID, DirectionCredit, PurposeDeposit, 0, 100, nil)
		assert.Error(t, err)

		_, err = NewEntry(reference, accountID, DirectionCredit, PurposeDeposit, -5, 100, nil)
		assert.Error(t, err)
	})

	t.Run("rejects unknown direction", func(t *testing.T) {
		_, err := NewEntry(reference, accountID, Direction("SIDEWAYS"), PurposeDeposit, 100, 0, nil)
		assert.ErrorIs(t, err, ErrInvalidDirection)
	})

	t.Run("rejects unknown purpose", func(t *testing.T) {
		_, err := NewEntry(reference, accountID, DirectionCredit, Purpose("GIFT"), 100, 0, nil)
		assert.ErrorIs(t, err, ErrInvalidPurpose)
	})
}

func TestEntry_SignedAmount(t *testing.T) {
	credit, err := NewEntry(uuid.New(), uuid.New(), DirectionCredit, PurposeDeposit, 250, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(250), credit.SignedAmount())

	debit, err := NewEntry(uuid.New(), uuid.New(), DirectionDebit, PurposeWithdrawal, 250, 1000, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-250), debit.SignedAmount())
}

func TestEntry_Inverse(t *testing.T) {
	original, err := NewEntry(uuid.New(), uuid.New(), DirectionCredit, PurposeDeposit, 250, 1000, nil)
	require.NoError(t, err)

	reversalRef := uuid.New()
	inverse, err := original.Inverse(reversalRef, original.BalanceAfter)
	require.NoError(t, err)

	assert.Equal(t, reversalRef, inverse.Reference)
	assert.Equal(t, original.AccountID, inverse.AccountID)
	assert.Equal(t, DirectionDebit, inverse.Direction)
	assert.Equal(t, PurposeReversal, inverse.Purpose)
	assert.Equal(t, original.Amount, inverse.Amount)
	assert.Equal(t, original.BalanceAfter, inverse.BalanceBefore)
	assert.Equal(t, original.BalanceBefore, inverse.BalanceAfter)
	assert.Equal(t, original.Reference.String(), inverse.Metadata[MetaOriginalReference])

	t.Run("inverse of a debit is a credit", func(t *testing.T) {
		debit, err := NewEntry(uuid.New(), uuid.New(), DirectionDebit, PurposeWithdrawal, 400, 1000, nil)
		require.NoError(t, err)

		inv, err := debit.Inverse(uuid.New(), debit.BalanceAfter)
		require.NoError(t, err)
		assert.Equal(t, DirectionCredit, inv.Direction)
		assert.Equal(t, int64(1000), inv.BalanceAfter)
	})
}
