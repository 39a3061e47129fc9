// Package postgres provides PostgreSQL implementations of the domain
// repositories. Accounts and the ledger share one database so a movement's
// balance update and its entries commit in the same transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wallet-ledger-engine/internal/domain/account"
	"github.com/wallet-ledger-engine/internal/platform/persistence"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx rebinds the repository to a transaction so account mutations join
// the caller's atomic unit.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new account.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (id, owner_id, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.OwnerID,
		acc.Balance,
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create account", "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, owner_id, balance, version, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&acc.ID,
		&acc.OwnerID,
		&acc.Balance,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

// GetByOwner retrieves the account belonging to an owner. Returns nil, nil
// when the owner has no account.
func (r *AccountRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, owner_id, balance, version, created_at, updated_at
		FROM accounts
		WHERE owner_id = $1
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, ownerID).Scan(
		&acc.ID,
		&acc.OwnerID,
		&acc.Balance,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by owner", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to get account by owner: %w", err)
	}

	return &acc, nil
}

// AdjustBalance applies delta and the non-negativity check in one
// conditional UPDATE, so the sufficient-funds decision and the decrement are
// race-free: a competing writer either sees this update or wins the row lock
// first. When the condition fails the row is untouched and the error tells
// the caller whether the account was missing or short of funds.
func (r *AccountRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) (*account.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND balance + $1 >= 0
		RETURNING id, owner_id, balance, version, created_at, updated_at
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, delta, id).Scan(
		&acc.ID,
		&acc.OwnerID,
		&acc.Balance,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err == nil {
		return &acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("Failed to adjust account balance", "id", id.String(), "delta", delta, "error", err)
		return nil, fmt.Errorf("failed to adjust account balance: %w", err)
	}

	// No row matched: either the account does not exist or the delta would
	// drive the balance negative.
	var exists bool
	if checkErr := r.querier.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
		r.logger.Error("Failed to check account existence", "id", id.String(), "error", checkErr)
		return nil, fmt.Errorf("failed to check account existence: %w", checkErr)
	}
	if !exists {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	return nil, account.ErrInsufficientFunds
}

// LockForUpdate obtains a row lock on the account and returns its current
// state. Must be called inside a transaction.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, owner_id, balance, version, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&acc.ID,
		&acc.OwnerID,
		&acc.Balance,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return &acc, nil
}
