package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/wallet-ledger-engine/internal/domain/account"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
)

// AccountServiceImpl implements the AccountService interface. Account state
// and single-movement lookups read the authoritative postgres store; entry
// history reads go to the archive.
type AccountServiceImpl struct {
	accounts account.Repository
	entries  ledger.Repository
	archive  EntryArchive
}

// NewAccountService creates a new account service
func NewAccountService(accounts account.Repository, entries ledger.Repository, archive EntryArchive) AccountService {
	return &AccountServiceImpl{
		accounts: accounts,
		entries:  entries,
		archive:  archive,
	}
}

// GetAccountByID retrieves an account by its ID, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// GetAccountByOwner retrieves the account belonging to a user
func (s *AccountServiceImpl) GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*account.Account, error) {
	acc, err := s.accounts.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, account.ErrAccountNotFound{}
	}
	return acc, nil
}

// GetEntriesByAccountID retrieves paginated entry history from the archive
func (s *AccountServiceImpl) GetEntriesByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error) {
	offset := (page - 1) * perPage

	entries, err := s.archive.GetByAccountID(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.archive.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// GetMovementByReference retrieves the entries of one movement from the
// authoritative log
func (s *AccountServiceImpl) GetMovementByReference(ctx context.Context, reference uuid.UUID) ([]*ledger.Entry, error) {
	return s.entries.GetByReference(ctx, reference)
}
