package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations.
//
// Balance mutations go exclusively through AdjustBalance: the store applies
// the delta and the non-negativity check in a single conditional statement,
// so there is no window between check and update.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Account, error)

	// AdjustBalance atomically applies delta to the account balance and
	// returns the account's post-update state. A negative delta that would
	// drive the balance below zero fails with ErrInsufficientFunds and
	// leaves the row untouched.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) (*Account, error)

	// LockForUpdate acquires a row lock on the account and returns its
	// current state. Only meaningful inside a transaction.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates a missing account.
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// Is matches any ErrAccountNotFound when the target carries a nil id.
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}

// ErrConcurrentModification indicates a store-detected lock or version conflict.
type ErrConcurrentModification struct {
	AccountID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + e.AccountID.String()
}

// ErrDuplicateOwner indicates the owner already has an account.
type ErrDuplicateOwner struct {
	OwnerID uuid.UUID
}

func (e ErrDuplicateOwner) Error() string {
	return "account already exists for owner: " + e.OwnerID.String()
}
