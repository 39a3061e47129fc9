// Package ledger defines the immutable double-entry record of every money
// movement. Entries are only ever appended; a committed entry is corrected
// by appending an inverse entry under a new reference, never by mutation.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Direction is the side of an entry.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// Purpose classifies the movement an entry belongs to.
type Purpose string

const (
	PurposeDeposit    Purpose = "DEPOSIT"
	PurposeWithdrawal Purpose = "WITHDRAWAL"
	PurposeTransfer   Purpose = "TRANSFER"
	PurposeReversal   Purpose = "REVERSAL"
)

// Metadata keys used by the engine.
const (
	MetaCounterparty      = "counterparty_account_id"
	MetaOriginalReference = "original_reference"
)

var (
	ErrInvalidDirection = errors.New("invalid entry direction")
	ErrInvalidPurpose   = errors.New("invalid entry purpose")
)

// Entry records one account-side effect of a money movement. The reference
// groups all entries belonging to the same logical movement: a transfer
// carries two entries under one reference, a deposit carries one.
type Entry struct {
	ID            uuid.UUID         `json:"id" bson:"entry_id"`
	Reference     uuid.UUID         `json:"reference" bson:"reference"`
	AccountID     uuid.UUID         `json:"account_id" bson:"account_id"`
	Direction     Direction         `json:"direction" bson:"direction"`
	Purpose       Purpose           `json:"purpose" bson:"purpose"`
	Amount        int64             `json:"amount" bson:"amount"` // Minor units, always positive
	BalanceBefore int64             `json:"balance_before" bson:"balance_before"`
	BalanceAfter  int64             `json:"balance_after" bson:"balance_after"`
	Metadata      map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"`
}

// NewEntry builds an entry with the balance arithmetic derived from the
// direction: credits add to the balance, debits subtract from it.
func NewEntry(reference, accountID uuid.UUID, direction Direction, purpose Purpose, amount, balanceBefore int64, metadata map[string]string) (*Entry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("entry amount must be positive: %d", amount)
	}
	if direction != DirectionDebit && direction != DirectionCredit {
		return nil, ErrInvalidDirection
	}
	switch purpose {
	case PurposeDeposit, PurposeWithdrawal, PurposeTransfer, PurposeReversal:
	default:
		return nil, ErrInvalidPurpose
	}

	balanceAfter := balanceBefore + amount
	if direction == DirectionDebit {
		balanceAfter = balanceBefore - amount
	}

	return &Entry{
		ID:            uuid.New(),
		Reference:     reference,
		AccountID:     accountID,
		Direction:     direction,
		Purpose:       purpose,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Metadata:      metadata,
		CreatedAt:     time.Now(),
	}, nil
}

// SignedAmount returns the amount with the sign implied by the direction.
func (e *Entry) SignedAmount() int64 {
	if e.Direction == DirectionDebit {
		return -e.Amount
	}
	return e.Amount
}

// Inverse builds the reversing entry for e under the given reference: the
// direction is swapped, the purpose becomes REVERSAL and the metadata points
// back at the original reference. balanceBefore is the account's balance at
// the time the reversal is applied, not the original entry's.
func (e *Entry) Inverse(reference uuid.UUID, balanceBefore int64) (*Entry, error) {
	direction := DirectionCredit
	if e.Direction == DirectionCredit {
		direction = DirectionDebit
	}

	return NewEntry(reference, e.AccountID, direction, PurposeReversal, e.Amount, balanceBefore, map[string]string{
		MetaOriginalReference: e.Reference.String(),
	})
}
