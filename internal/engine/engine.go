// Package engine implements the ledger transaction engine: deposits,
// withdrawals, transfers and reversals applied as atomic double-entry
// movements over the account store and the append-only transaction log.
//
// The engine holds no mutable state of its own. Every operation validates
// its inputs, opens one transactional unit, mutates balances exclusively
// through the store's conditional delta primitive and appends the matching
// ledger entries before committing. Any failure inside the unit rolls the
// whole movement back; readers never observe a half-applied movement.
package engine

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wallet-ledger-engine/internal/domain/account"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
)

// TxRunner is the transactional boundary the engine composes its stores
// inside. fn runs within one unit; returning an error rolls everything back.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Notifier receives movements after their transaction has committed.
// Implementations must not block the calling operation on delivery and must
// never fail it: the postgres log is authoritative, notifications are a
// downstream convenience.
type Notifier interface {
	MovementCommitted(ctx context.Context, movement *Movement)
}

// Service is the engine's public surface. It is the only way balances change
// after an account is opened.
type Service interface {
	Deposit(ctx context.Context, accountID uuid.UUID, amount int64) (*Movement, error)
	Withdraw(ctx context.Context, accountID uuid.UUID, amount int64) (*Movement, error)
	Transfer(ctx context.Context, senderID, recipientID uuid.UUID, amount int64, purpose ledger.Purpose) (*Movement, error)
	Reverse(ctx context.Context, reference uuid.UUID) (*Movement, error)
}

// Engine implements Service.
type Engine struct {
	db       TxRunner
	accounts account.Repository
	entries  ledger.Repository
	notifier Notifier // optional
	logger   *slog.Logger
}

// New creates a ledger engine. notifier may be nil.
func New(db TxRunner, accounts account.Repository, entries ledger.Repository, notifier Notifier, logger *slog.Logger) *Engine {
	return &Engine{
		db:       db,
		accounts: accounts,
		entries:  entries,
		notifier: notifier,
		logger:   logger,
	}
}

// Deposit credits amount to the account and appends a single credit entry
// under a fresh reference.
func (e *Engine) Deposit(ctx context.Context, accountID uuid.UUID, amount int64) (*Movement, error) {
	if err := validateMovement(accountID, amount); err != nil {
		return nil, err
	}

	reference := uuid.New()
	var entry *ledger.Entry

	err := e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := e.accounts.WithTx(tx)
		entries := e.entries.WithTx(tx)

		acc, err := accounts.AdjustBalance(ctx, accountID, amount)
		if err != nil {
			return err
		}

		entry, err = ledger.NewEntry(reference, accountID, ledger.DirectionCredit, ledger.PurposeDeposit, amount, acc.Balance-amount, nil)
		if err != nil {
			return err
		}
		return entries.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	movement := e.committed(ctx, reference, ledger.PurposeDeposit, entry)
	e.logger.Info("deposit committed", "reference", reference.String(), "account_id", accountID.String(), "amount", amount)
	return movement, nil
}

// Withdraw debits amount from the account and appends a single debit entry.
// The sufficient-funds check happens inside the store's conditional update,
// in the same unit as the decrement, so a concurrent withdrawal cannot slip
// between check and mutation.
func (e *Engine) Withdraw(ctx context.Context, accountID uuid.UUID, amount int64) (*Movement, error) {
	if err := validateMovement(accountID, amount); err != nil {
		return nil, err
	}

	reference := uuid.New()
	var entry *ledger.Entry

	err := e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := e.accounts.WithTx(tx)
		entries := e.entries.WithTx(tx)

		acc, err := accounts.AdjustBalance(ctx, accountID, -amount)
		if err != nil {
			return err
		}

		entry, err = ledger.NewEntry(reference, accountID, ledger.DirectionDebit, ledger.PurposeWithdrawal, amount, acc.Balance+amount, nil)
		if err != nil {
			return err
		}
		return entries.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	movement := e.committed(ctx, reference, ledger.PurposeWithdrawal, entry)
	e.logger.Info("withdrawal committed", "reference", reference.String(), "account_id", accountID.String(), "amount", amount)
	return movement, nil
}

// committed assembles the movement result and hands it to the notifier.
func (e *Engine) committed(ctx context.Context, reference uuid.UUID, purpose ledger.Purpose, entries ...*ledger.Entry) *Movement {
	movement := &Movement{
		Reference:   reference,
		Purpose:     purpose,
		Entries:     entries,
		CommittedAt: entries[len(entries)-1].CreatedAt,
	}
	if e.notifier != nil {
		e.notifier.MovementCommitted(ctx, movement)
	}
	return movement
}

func validateMovement(accountID uuid.UUID, amount int64) error {
	if accountID == uuid.Nil {
		return ValidationError{Field: "account_id", Reason: "must not be empty"}
	}
	if amount <= 0 {
		return ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}

// accountOrder reports whether a sorts before b. Row access for multi-account
// movements always follows this order so that two concurrent movements over
// the same pair of accounts cannot deadlock.
func accountOrder(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
