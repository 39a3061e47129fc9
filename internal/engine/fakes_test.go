package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wallet-ledger-engine/internal/domain/account"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
)

// fakeStore is an in-memory stand-in for the postgres store. The tx runner
// snapshots it before each unit and restores the snapshot on error, giving
// the tests real rollback semantics.
type fakeStore struct {
	accounts map[uuid.UUID]*account.Account
	entries  []*ledger.Entry

	// failAppend, when set, is consulted before every ledger append.
	failAppend func(e *ledger.Entry) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[uuid.UUID]*account.Account),
	}
}

func (s *fakeStore) addAccount(balance int64) uuid.UUID {
	acc, _ := account.NewAccount(uuid.New(), balance)
	s.accounts[acc.ID] = acc
	return acc.ID
}

func (s *fakeStore) balance(id uuid.UUID) int64 {
	return s.accounts[id].Balance
}

func (s *fakeStore) snapshot() (map[uuid.UUID]*account.Account, []*ledger.Entry) {
	accounts := make(map[uuid.UUID]*account.Account, len(s.accounts))
	for id, acc := range s.accounts {
		cp := *acc
		accounts[id] = &cp
	}
	entries := make([]*ledger.Entry, len(s.entries))
	copy(entries, s.entries)
	return accounts, entries
}

func (s *fakeStore) restore(accounts map[uuid.UUID]*account.Account, entries []*ledger.Entry) {
	s.accounts = accounts
	s.entries = entries
}

// fakeTxRunner serializes units with a mutex and rolls the store back to its
// pre-unit snapshot when fn fails.
type fakeTxRunner struct {
	mu    sync.Mutex
	store *fakeStore
}

func (r *fakeTxRunner) ExecuteTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, entries := r.store.snapshot()
	if err := fn(nil); err != nil {
		r.store.restore(accounts, entries)
		return err
	}
	return nil
}

type fakeAccountRepo struct {
	store *fakeStore
}

func (r *fakeAccountRepo) WithTx(pgx.Tx) account.Repository { return r }

func (r *fakeAccountRepo) Create(_ context.Context, acc *account.Account) error {
	cp := *acc
	r.store.accounts[acc.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	acc, ok := r.store.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	cp := *acc
	return &cp, nil
}

func (r *fakeAccountRepo) GetByOwner(_ context.Context, ownerID uuid.UUID) (*account.Account, error) {
	for _, acc := range r.store.accounts {
		if acc.OwnerID == ownerID {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) AdjustBalance(_ context.Context, id uuid.UUID, delta int64) (*account.Account, error) {
	acc, ok := r.store.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	if acc.Balance+delta < 0 {
		return nil, account.ErrInsufficientFunds
	}
	acc.Balance += delta
	acc.Version++
	cp := *acc
	return &cp, nil
}

func (r *fakeAccountRepo) LockForUpdate(_ context.Context, id uuid.UUID) (*account.Account, error) {
	acc, ok := r.store.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	cp := *acc
	return &cp, nil
}

type fakeLedgerRepo struct {
	store *fakeStore
}

func (r *fakeLedgerRepo) WithTx(pgx.Tx) ledger.Repository { return r }

func (r *fakeLedgerRepo) Append(_ context.Context, entry *ledger.Entry) error {
	if r.store.failAppend != nil {
		if err := r.store.failAppend(entry); err != nil {
			return err
		}
	}
	r.store.entries = append(r.store.entries, entry)
	return nil
}

func (r *fakeLedgerRepo) GetByReference(_ context.Context, reference uuid.UUID) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range r.store.entries {
		if e.Reference == reference {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, ledger.ErrReferenceNotFound{Reference: reference}
	}
	return out, nil
}

func (r *fakeLedgerRepo) GetByAccountID(_ context.Context, accountID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range r.store.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLedgerRepo) CountByAccountID(_ context.Context, accountID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range r.store.entries {
		if e.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

// fakeNotifier records every committed movement it is handed.
type fakeNotifier struct {
	mu        sync.Mutex
	movements []*Movement
}

func (n *fakeNotifier) MovementCommitted(_ context.Context, movement *Movement) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.movements = append(n.movements, movement)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.movements)
}
