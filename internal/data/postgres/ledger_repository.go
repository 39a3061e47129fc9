package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
	"github.com/wallet-ledger-engine/internal/platform/persistence"
)

// LedgerRepository implements the ledger.Repository interface for
// PostgreSQL. The table is append-only; there are intentionally no UPDATE or
// DELETE statements in this file.
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository.
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx rebinds the repository to a transaction so entries commit with the
// balance updates they describe.
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append stores a new ledger entry.
func (r *LedgerRepository) Append(ctx context.Context, entry *ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, reference, account_id, direction, purpose, amount, balance_before, balance_after, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.Reference,
		entry.AccountID,
		entry.Direction,
		entry.Purpose,
		entry.Amount,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.Metadata,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append ledger entry",
			"entry_id", entry.ID.String(),
			"reference", entry.Reference.String(),
			"error", err,
		)
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// GetByReference returns all entries of one movement in creation order.
func (r *LedgerRepository) GetByReference(ctx context.Context, reference uuid.UUID) ([]*ledger.Entry, error) {
	query := `
		SELECT id, reference, account_id, direction, purpose, amount, balance_before, balance_after, metadata, created_at
		FROM ledger_entries
		WHERE reference = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, reference)
	if err != nil {
		r.logger.Error("Failed to get ledger entries by reference", "reference", reference.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entries by reference: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		r.logger.Error("Failed to scan ledger entries", "reference", reference.String(), "error", err)
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ledger.ErrReferenceNotFound{Reference: reference}
	}

	return entries, nil
}

// GetByAccountID returns paginated entries for an account, newest first.
func (r *LedgerRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	query := `
		SELECT id, reference, account_id, direction, purpose, amount, balance_before, balance_after, metadata, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get ledger entries by account", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entries by account: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		r.logger.Error("Failed to scan ledger entries", "account_id", accountID.String(), "error", err)
		return nil, err
	}

	return entries, nil
}

// CountByAccountID counts all entries for an account.
func (r *LedgerRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM ledger_entries
		WHERE account_id = $1
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		r.logger.Error("Failed to count ledger entries", "account_id", accountID.String(), "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

func scanEntries(rows pgx.Rows) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry
	for rows.Next() {
		var entry ledger.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.Reference,
			&entry.AccountID,
			&entry.Direction,
			&entry.Purpose,
			&entry.Amount,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.Metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over ledger entries: %w", err)
	}

	return entries, nil
}
