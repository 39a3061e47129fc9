package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMissingOwner      = errors.New("owner id cannot be empty")
)

// Account holds a wallet balance. Balances are stored in minor currency
// units and are never allowed to go negative.
type Account struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Balance   int64     `json:"balance"` // Minor units
	Version   int       `json:"version"` // Bumped on every balance change
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAccount creates an account for the given owner with an opening balance.
func NewAccount(ownerID uuid.UUID, openingBalance int64) (*Account, error) {
	if ownerID == uuid.Nil {
		return nil, ErrMissingOwner
	}
	if openingBalance < 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Account{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Balance:   openingBalance,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanCover reports whether the balance covers a debit of the given amount.
func (a *Account) CanCover(amount int64) bool {
	return a.Balance >= amount
}
