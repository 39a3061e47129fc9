package engine

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
)

// Reverse appends the arithmetic inverse of every entry recorded under
// reference, grouped under one new reference. The original entries are left
// untouched; the inverse entries carry the original reference in their
// metadata. All legs are applied sequentially inside one unit and the whole
// reversal aborts if any leg would break an invariant.
//
// A reference produced by an earlier reversal is reversed like any other:
// chained reversals need no special handling.
func (e *Engine) Reverse(ctx context.Context, reference uuid.UUID) (*Movement, error) {
	if reference == uuid.Nil {
		return nil, ValidationError{Field: "reference", Reason: "must not be empty"}
	}

	newReference := uuid.New()
	var inverses []*ledger.Entry

	err := e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := e.accounts.WithTx(tx)
		entries := e.entries.WithTx(tx)

		originals, err := entries.GetByReference(ctx, reference)
		if err != nil {
			return err
		}

		// Lock every affected account up front, in ascending id order, then
		// vet all legs against the locked balances before mutating anything.
		// That way a doomed reversal reports every failing leg instead of
		// just the first one.
		projected := make(map[uuid.UUID]int64)
		var failures []LegFailure
		for _, id := range affectedAccounts(originals) {
			acc, err := accounts.LockForUpdate(ctx, id)
			if err != nil {
				return err
			}
			projected[id] = acc.Balance
		}

		for _, orig := range originals {
			delta := -orig.SignedAmount()
			if projected[orig.AccountID]+delta < 0 {
				failures = append(failures, LegFailure{
					EntryID:   orig.ID,
					AccountID: orig.AccountID,
					Reason:    "reversal would drive balance negative",
				})
				continue
			}
			projected[orig.AccountID] += delta
		}
		if len(failures) > 0 {
			return ReversalLegFailure{Reference: reference, Legs: failures}
		}

		inverses = make([]*ledger.Entry, 0, len(originals))
		for _, orig := range originals {
			delta := -orig.SignedAmount()
			acc, err := accounts.AdjustBalance(ctx, orig.AccountID, delta)
			if err != nil {
				return err
			}

			inverse, err := orig.Inverse(newReference, acc.Balance-delta)
			if err != nil {
				return err
			}
			if err := entries.Append(ctx, inverse); err != nil {
				return err
			}
			inverses = append(inverses, inverse)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	movement := e.committed(ctx, newReference, ledger.PurposeReversal, inverses...)
	e.logger.Info("reversal committed",
		"reference", newReference.String(),
		"original_reference", reference.String(),
		"legs", len(inverses),
	)
	return movement, nil
}

// affectedAccounts returns the distinct account ids of the entries in
// ascending id order.
func affectedAccounts(entries []*ledger.Entry) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(entries))
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		ids = append(ids, e.AccountID)
	}
	sort.Slice(ids, func(i, j int) bool { return accountOrder(ids[i], ids[j]) })
	return ids
}
