package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository is the append-only transaction log. There is deliberately no
// update or delete operation: committed entries are immutable.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error

	// GetByReference returns all entries of one logical movement in
	// creation order. Returns ErrReferenceNotFound when no entry exists
	// under the reference.
	GetByReference(ctx context.Context, reference uuid.UUID) ([]*Entry, error)

	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrReferenceNotFound indicates that no entries exist under a reference.
type ErrReferenceNotFound struct {
	Reference uuid.UUID
}

func (e ErrReferenceNotFound) Error() string {
	return "no ledger entries for reference: " + e.Reference.String()
}

// Is matches any ErrReferenceNotFound when the target carries a nil reference.
func (e ErrReferenceNotFound) Is(target error) bool {
	t, ok := target.(ErrReferenceNotFound)
	if !ok {
		return false
	}
	if t.Reference == uuid.Nil {
		return true
	}
	return e.Reference == t.Reference
}

// ErrDuplicateEntry indicates an entry id collision on append.
type ErrDuplicateEntry struct {
	EntryID uuid.UUID
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate ledger entry: " + e.EntryID.String()
}
