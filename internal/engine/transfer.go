package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
)

// Transfer moves amount from sender to recipient as one atomic movement:
// a debit entry against the sender and a credit entry against the recipient,
// sharing one reference. Either both legs commit or neither does.
//
// purpose defaults to TRANSFER; a REVERSAL purpose is rejected because
// reversals may only be produced by Reverse.
func (e *Engine) Transfer(ctx context.Context, senderID, recipientID uuid.UUID, amount int64, purpose ledger.Purpose) (*Movement, error) {
	if err := validateMovement(senderID, amount); err != nil {
		return nil, err
	}
	if recipientID == uuid.Nil {
		return nil, ValidationError{Field: "recipient_id", Reason: "must not be empty"}
	}
	if senderID == recipientID {
		return nil, ValidationError{Field: "recipient_id", Reason: "sender and recipient must differ"}
	}
	if purpose == "" {
		purpose = ledger.PurposeTransfer
	}
	if purpose != ledger.PurposeTransfer {
		return nil, ValidationError{Field: "purpose", Reason: "unsupported transfer purpose"}
	}

	reference := uuid.New()
	var debit, credit *ledger.Entry

	err := e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := e.accounts.WithTx(tx)
		entries := e.entries.WithTx(tx)

		// Balance rows are touched in ascending account-id order regardless
		// of which side is the sender, so opposite-direction transfers over
		// the same pair serialize instead of deadlocking.
		legs := []struct {
			accountID uuid.UUID
			delta     int64
		}{
			{senderID, -amount},
			{recipientID, amount},
		}
		if !accountOrder(senderID, recipientID) {
			legs[0], legs[1] = legs[1], legs[0]
		}

		balances := make(map[uuid.UUID]int64, 2)
		for _, leg := range legs {
			acc, err := accounts.AdjustBalance(ctx, leg.accountID, leg.delta)
			if err != nil {
				return err
			}
			balances[leg.accountID] = acc.Balance
		}

		var err error
		debit, err = ledger.NewEntry(reference, senderID, ledger.DirectionDebit, purpose, amount, balances[senderID]+amount, map[string]string{
			ledger.MetaCounterparty: recipientID.String(),
		})
		if err != nil {
			return err
		}
		credit, err = ledger.NewEntry(reference, recipientID, ledger.DirectionCredit, purpose, amount, balances[recipientID]-amount, map[string]string{
			ledger.MetaCounterparty: senderID.String(),
		})
		if err != nil {
			return err
		}

		if err := entries.Append(ctx, debit); err != nil {
			return err
		}
		return entries.Append(ctx, credit)
	})
	if err != nil {
		return nil, err
	}

	movement := e.committed(ctx, reference, purpose, debit, credit)
	e.logger.Info("transfer committed",
		"reference", reference.String(),
		"sender_id", senderID.String(),
		"recipient_id", recipientID.String(),
		"amount", amount,
	)
	return movement, nil
}
