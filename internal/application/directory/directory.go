// Package directory owns the in-memory list of accounts and enforces its
// invariants: usernames are unique ignoring case, at least one Admin always
// exists, and the "admin" account cannot be removed.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"classroll/internal/adapters/metrics"
	"classroll/internal/domain/account"
)

// Store is the persistence the directory needs.
type Store interface {
	Load(ctx context.Context) ([]account.Account, bool, error)
	Save(ctx context.Context, accounts []account.Account) error
}

// Directory holds the account list. Mutations check the invariants against
// the full current list, persist a candidate copy, and only then publish it.
type Directory struct {
	mu       sync.RWMutex
	accounts []account.Account
	store    Store
}

// New creates an empty Directory backed by store. Call Load before use.
func New(store Store) *Directory {
	return &Directory{store: store}
}

// Load reads the persisted directory, seeding demo accounts when nothing
// usable is stored and restoring the default admin when it is missing.
// PRE: none
// POST: The directory contains an account named "admin"
func (d *Directory) Load(ctx context.Context) error {
	accounts, found, err := d.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load directory: %w", err)
	}

	dirty := false
	if !found {
		accounts = account.SeedAccounts()
		dirty = true
		slog.Info("directory_event", "event", "seeded", "accounts", len(accounts))
	}
	if account.IndexOf(accounts, account.ProtectedUsername) == -1 {
		accounts = append([]account.Account{account.DefaultAdmin()}, accounts...)
		dirty = true
		slog.Info("directory_event", "event", "admin_restored")
	}

	if dirty {
		if err := d.store.Save(ctx, accounts); err != nil {
			return fmt.Errorf("save directory: %w", err)
		}
	}

	d.mu.Lock()
	d.accounts = accounts
	d.mu.Unlock()
	return nil
}

// List returns the accounts in insertion order.
// INVARIANT: the returned slice is a copy
func (d *Directory) List() []account.Account {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]account.Account(nil), d.accounts...)
}

// FindByUsername returns the account whose username matches name ignoring case.
// PRE: none
// POST: Returns account.ErrAccountNotFound if no account matches
func (d *Directory) FindByUsername(name string) (account.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := account.IndexOf(d.accounts, name)
	if i == -1 {
		return account.Account{}, account.ErrAccountNotFound
	}
	return d.accounts[i], nil
}

// Add appends a new account.
// PRE: acct passes Validate
// POST: acct is persisted at the end of the list
// INVARIANT: usernames stay unique ignoring case
func (d *Directory) Add(ctx context.Context, acct account.Account) (account.Account, error) {
	acct.Username = strings.TrimSpace(acct.Username)
	acct.FullName = strings.TrimSpace(acct.FullName)
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if account.IndexOf(d.accounts, acct.Username) != -1 {
		return account.Account{}, account.ErrDuplicateUsername
	}

	next := make([]account.Account, len(d.accounts), len(d.accounts)+1)
	copy(next, d.accounts)
	next = append(next, acct)

	if err := d.commit(ctx, next); err != nil {
		return account.Account{}, err
	}
	metrics.Mutations.WithLabelValues("directory", "add").Inc()
	slog.Info("directory_event", "event", "account_added", "username", acct.Username, "role", acct.Role)
	return acct, nil
}

// Update applies a partial edit to the account named username.
// PRE: username identifies an existing account (ignoring case)
// POST: The edited account is persisted in place
// INVARIANT: usernames stay unique; at least one Admin remains; "admin" keeps its name
func (d *Directory) Update(ctx context.Context, username string, u account.Update) (account.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := account.IndexOf(d.accounts, username)
	if i == -1 {
		return account.Account{}, account.ErrAccountNotFound
	}

	updated := d.accounts[i].Apply(u)
	if err := updated.Validate(); err != nil {
		return account.Account{}, err
	}
	if d.accounts[i].IsProtected() && !updated.IsProtected() {
		return account.Account{}, account.ErrProtectedAccount
	}
	if j := account.IndexOf(d.accounts, updated.Username); j != -1 && j != i {
		return account.Account{}, account.ErrDuplicateUsername
	}

	if d.accounts[i].IsAdmin() && !updated.IsAdmin() && account.CountAdmins(d.accounts) == 1 {
		return account.Account{}, account.ErrLastAdmin
	}

	next := append([]account.Account(nil), d.accounts...)
	next[i] = updated

	if err := d.commit(ctx, next); err != nil {
		return account.Account{}, err
	}
	metrics.Mutations.WithLabelValues("directory", "update").Inc()
	slog.Info("directory_event", "event", "account_updated", "username", updated.Username, "role", updated.Role)
	return updated, nil
}

// Remove deletes the account named username.
// PRE: none
// POST: The account is gone from the persisted list
// INVARIANT: "admin" is never removed; at least one Admin remains
func (d *Directory) Remove(ctx context.Context, username string) (account.Account, error) {
	if account.IsProtectedUsername(username) {
		return account.Account{}, account.ErrProtectedAccount
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := account.IndexOf(d.accounts, username)
	if i == -1 {
		return account.Account{}, account.ErrAccountNotFound
	}
	removed := d.accounts[i]
	if removed.IsAdmin() && account.CountAdmins(d.accounts) == 1 {
		return account.Account{}, account.ErrLastAdmin
	}

	next := make([]account.Account, 0, len(d.accounts)-1)
	next = append(next, d.accounts[:i]...)
	next = append(next, d.accounts[i+1:]...)

	if err := d.commit(ctx, next); err != nil {
		return account.Account{}, err
	}
	metrics.Mutations.WithLabelValues("directory", "remove").Inc()
	slog.Info("directory_event", "event", "account_removed", "username", removed.Username)
	return removed, nil
}

// Authenticate returns the account matching username (ignoring case) and
// password (exactly).
// PRE: none
// POST: ok is false if no account matches both
func (d *Directory) Authenticate(username, password string) (account.Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.accounts {
		if a.SameUsername(username) && a.CheckPassword(password) {
			return a, true
		}
	}
	return account.Account{}, false
}

// commit persists next and publishes it. Caller holds d.mu.
func (d *Directory) commit(ctx context.Context, next []account.Account) error {
	if err := d.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save directory: %w", err)
	}
	d.accounts = next
	return nil
}
