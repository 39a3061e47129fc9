package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wallet-ledger-engine/internal/domain/account"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
)

// MockEntryArchive mocks the EntryArchive read model
type MockEntryArchive struct {
	mock.Mock
}

func (m *MockEntryArchive) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, accountID, limit, offset)
	var entries []*ledger.Entry
	if args.Get(0) != nil {
		entries = args.Get(0).([]*ledger.Entry)
	}
	return entries, args.Error(1)
}

func (m *MockEntryArchive) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

type fakeLedgerRepo struct {
	byReference map[uuid.UUID][]*ledger.Entry
}

func (r *fakeLedgerRepo) Append(ctx context.Context, entry *ledger.Entry) error {
	if r.byReference == nil {
		r.byReference = make(map[uuid.UUID][]*ledger.Entry)
	}
	r.byReference[entry.Reference] = append(r.byReference[entry.Reference], entry)
	return nil
}

func (r *fakeLedgerRepo) GetByReference(ctx context.Context, reference uuid.UUID) ([]*ledger.Entry, error) {
	entries := r.byReference[reference]
	if len(entries) == 0 {
		return nil, ledger.ErrReferenceNotFound{Reference: reference}
	}
	return entries, nil
}

func (r *fakeLedgerRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	return nil, nil
}

func (r *fakeLedgerRepo) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeLedgerRepo) WithTx(tx pgx.Tx) ledger.Repository { return r }

func TestAccountService_GetAccountByOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		accounts := newFakeAccountRepo()
		ownerID := uuid.New()
		acc, err := account.NewAccount(ownerID, 1000)
		require.NoError(t, err)
		require.NoError(t, accounts.Create(ctx, acc))

		svc := NewAccountService(accounts, &fakeLedgerRepo{}, new(MockEntryArchive))

		got, err := svc.GetAccountByOwner(ctx, ownerID)
		require.NoError(t, err)
		assert.Equal(t, acc.ID, got.ID)
	})

	t.Run("owner without account", func(t *testing.T) {
		svc := NewAccountService(newFakeAccountRepo(), &fakeLedgerRepo{}, new(MockEntryArchive))

		got, err := svc.GetAccountByOwner(ctx, uuid.New())
		assert.Nil(t, got)
		var notFound account.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestAccountService_GetEntriesByAccountID(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	entry := &ledger.Entry{
		ID:        uuid.New(),
		Reference: uuid.New(),
		AccountID: accountID,
		Direction: ledger.DirectionCredit,
		Purpose:   ledger.PurposeDeposit,
		Amount:    100,
		CreatedAt: time.Now(),
	}

	t.Run("translates page to offset", func(t *testing.T) {
		archive := new(MockEntryArchive)
		archive.On("GetByAccountID", ctx, accountID, 20, 40).Return([]*ledger.Entry{entry}, nil).Once()
		archive.On("CountByAccountID", ctx, accountID).Return(int64(41), nil).Once()

		svc := NewAccountService(newFakeAccountRepo(), &fakeLedgerRepo{}, archive)

		entries, total, err := svc.GetEntriesByAccountID(ctx, accountID, 3, 20)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(41), total)
		archive.AssertExpectations(t)
	})

	t.Run("first page starts at zero offset", func(t *testing.T) {
		archive := new(MockEntryArchive)
		archive.On("GetByAccountID", ctx, accountID, 10, 0).Return([]*ledger.Entry{}, nil).Once()
		archive.On("CountByAccountID", ctx, accountID).Return(int64(0), nil).Once()

		svc := NewAccountService(newFakeAccountRepo(), &fakeLedgerRepo{}, archive)

		entries, total, err := svc.GetEntriesByAccountID(ctx, accountID, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.Zero(t, total)
		archive.AssertExpectations(t)
	})

	t.Run("archive error", func(t *testing.T) {
		archive := new(MockEntryArchive)
		archive.On("GetByAccountID", ctx, accountID, 10, 0).Return(nil, assert.AnError).Once()

		svc := NewAccountService(newFakeAccountRepo(), &fakeLedgerRepo{}, archive)

		entries, total, err := svc.GetEntriesByAccountID(ctx, accountID, 1, 10)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, entries)
		assert.Zero(t, total)
		archive.AssertExpectations(t)
	})
}

func TestAccountService_GetMovementByReference(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the authoritative log", func(t *testing.T) {
		entries := &fakeLedgerRepo{}
		reference := uuid.New()
		entry, err := ledger.NewEntry(reference, uuid.New(), ledger.DirectionCredit, ledger.PurposeDeposit, 100, 0, nil)
		require.NoError(t, err)
		require.NoError(t, entries.Append(ctx, entry))

		svc := NewAccountService(newFakeAccountRepo(), entries, new(MockEntryArchive))

		got, err := svc.GetMovementByReference(ctx, reference)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, entry.ID, got[0].ID)
	})

	t.Run("unknown reference", func(t *testing.T) {
		svc := NewAccountService(newFakeAccountRepo(), &fakeLedgerRepo{}, new(MockEntryArchive))

		got, err := svc.GetMovementByReference(ctx, uuid.New())
		assert.Nil(t, got)
		var refNotFound ledger.ErrReferenceNotFound
		assert.ErrorAs(t, err, &refNotFound)
	})
}

// Verify interface implementation
var _ EntryArchive = (*MockEntryArchive)(nil)
