package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ValidationError reports a malformed movement request. Validation failures
// are detected before any transaction is opened, so no mutation occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// LegFailure describes one reversal leg that could not be applied.
type LegFailure struct {
	EntryID   uuid.UUID `json:"entry_id"`
	AccountID uuid.UUID `json:"account_id"`
	Reason    string    `json:"reason"`
}

// ReversalLegFailure aggregates every failing leg of a reversal. The whole
// reversal is rolled back when any leg fails; the caller decides whether to
// retry.
type ReversalLegFailure struct {
	Reference uuid.UUID
	Legs      []LegFailure
}

func (e ReversalLegFailure) Error() string {
	reasons := make([]string, 0, len(e.Legs))
	for _, leg := range e.Legs {
		reasons = append(reasons, fmt.Sprintf("account %s: %s", leg.AccountID, leg.Reason))
	}
	return fmt.Sprintf("reversal of %s failed: %s", e.Reference, strings.Join(reasons, "; "))
}
