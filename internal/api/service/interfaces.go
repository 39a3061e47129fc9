package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wallet-ledger-engine/internal/domain/account"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
	"github.com/wallet-ledger-engine/internal/domain/user"
)

var (
	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords so the response does not leak which one failed.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken is returned for malformed, forged or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// AuthService defines the interface for registration, login and token
// verification
type AuthService interface {
	// Register creates a user and their wallet account with the configured
	// opening balance, both inside one atomic unit.
	// Returns ErrDuplicateUsername if the username is taken.
	Register(ctx context.Context, username, password string) (*user.User, *account.Account, error)

	// Login verifies the password and issues a signed token carrying the
	// user id. Returns ErrInvalidCredentials on any mismatch.
	Login(ctx context.Context, username, password string) (string, *user.User, error)

	// VerifyToken validates a token and returns the user id it carries.
	VerifyToken(tokenString string) (uuid.UUID, error)
}

// AccountService defines the interface for account and entry-history reads
type AccountService interface {
	// GetAccountByID retrieves an account by its ID
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// GetAccountByOwner retrieves the account belonging to a user
	// Returns ErrAccountNotFound if the user has no account
	GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*account.Account, error)

	// GetEntriesByAccountID retrieves a paginated entry history for an
	// account from the archive, newest first.
	// Returns entries, total count of all entries, and any error
	GetEntriesByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error)

	// GetMovementByReference retrieves all entries of one movement from the
	// authoritative log. Returns ErrReferenceNotFound if none exist.
	GetMovementByReference(ctx context.Context, reference uuid.UUID) ([]*ledger.Entry, error)
}

// EntryArchive is the archive read model the account service serves entry
// history from.
type EntryArchive interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ledger.Entry, error)
	CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)
}
