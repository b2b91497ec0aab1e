// Package session tracks which account is signed in and answers role
// questions for the rest of the application. The signed-in account is
// persisted so it survives a restart.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"classroll/internal/adapters/metrics"
	"classroll/internal/domain/account"
)

// DefaultLoginDelay is the pause before credentials are checked.
const DefaultLoginDelay = 600 * time.Millisecond

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrLoginPending       = errors.New("a login attempt is already in progress")
	ErrNotAuthenticated   = errors.New("not signed in")
	ErrForbidden          = errors.New("your role does not allow this action")
)

// Directory is the account lookup the session needs.
type Directory interface {
	Authenticate(username, password string) (account.Account, bool)
	FindByUsername(name string) (account.Account, error)
}

// Store persists the signed-in account.
type Store interface {
	Load(ctx context.Context) (account.Account, bool, error)
	Save(ctx context.Context, acct account.Account) error
	Clear(ctx context.Context) error
}

// Session is the process-wide sign-in state.
type Session struct {
	mu       sync.RWMutex
	current  account.Account
	signedIn bool

	pending atomic.Bool
	dir     Directory
	store   Store
	delay   time.Duration
}

// New creates a signed-out Session. A negative delay disables the pause.
func New(dir Directory, store Store, delay time.Duration) *Session {
	if delay < 0 {
		delay = 0
	}
	return &Session{dir: dir, store: store, delay: delay}
}

// Login checks credentials after the configured delay and signs in on success.
// PRE: none
// POST: On success the account is current and persisted
// INVARIANT: at most one login attempt is in flight
func (s *Session) Login(ctx context.Context, username, password string) (account.Account, error) {
	if !s.pending.CompareAndSwap(false, true) {
		return account.Account{}, ErrLoginPending
	}
	defer s.pending.Store(false)

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return account.Account{}, ctx.Err()
		case <-t.C:
		}
	}

	acct, ok := s.dir.Authenticate(username, password)
	if !ok {
		metrics.AuthEvents.WithLabelValues("login_failed").Inc()
		slog.Info("auth_event", "event", "login_failed", "username", username)
		return account.Account{}, ErrInvalidCredentials
	}

	if err := s.store.Save(ctx, acct); err != nil {
		return account.Account{}, fmt.Errorf("save session: %w", err)
	}
	s.set(acct)

	metrics.AuthEvents.WithLabelValues("login_success").Inc()
	slog.Info("auth_event", "event", "login_success", "username", acct.Username, "role", acct.Role)
	return acct, nil
}

// Logout signs out and removes the persisted session.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	username := s.current.Username
	s.current, s.signedIn = account.Account{}, false
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	metrics.AuthEvents.WithLabelValues("logout").Inc()
	slog.Info("auth_event", "event", "logout", "username", username)
	return nil
}

// Current returns the signed-in account, if any.
func (s *Session) Current() (account.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.signedIn
}

// CurrentRole returns the role of the signed-in account, if any.
func (s *Session) CurrentRole() (account.Role, bool) {
	acct, ok := s.Current()
	return acct.Role, ok
}

// CanEditAttendance is false when signed out.
func (s *Session) CanEditAttendance() bool {
	role, ok := s.CurrentRole()
	return ok && role.CanEditAttendance()
}

// CanManageUsers is false when signed out.
func (s *Session) CanManageUsers() bool {
	role, ok := s.CurrentRole()
	return ok && role.CanManageUsers()
}

// Restore reloads the persisted session. The directory's copy of the account
// replaces the stored one; a session for a vanished account is cleared.
// PRE: the directory is loaded
// POST: Either signed in as an existing account or signed out
func (s *Session) Restore(ctx context.Context) error {
	stored, found, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !found {
		return nil
	}

	acct, err := s.dir.FindByUsername(stored.Username)
	if err != nil {
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			return fmt.Errorf("clear session: %w", clearErr)
		}
		metrics.AuthEvents.WithLabelValues("restore_dropped").Inc()
		slog.Info("auth_event", "event", "restore_dropped", "username", stored.Username)
		return nil
	}

	if acct != stored {
		if err := s.store.Save(ctx, acct); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	s.set(acct)
	metrics.AuthEvents.WithLabelValues("restore").Inc()
	slog.Info("auth_event", "event", "restore", "username", acct.Username, "role", acct.Role)
	return nil
}

// Refresh replaces the signed-in account after it was edited in the
// directory. It does nothing unless previousUsername is the current account.
func (s *Session) Refresh(ctx context.Context, previousUsername string, acct account.Account) error {
	s.mu.RLock()
	match := s.signedIn && s.current.SameUsername(previousUsername)
	s.mu.RUnlock()
	if !match {
		return nil
	}

	if err := s.store.Save(ctx, acct); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.set(acct)
	return nil
}

// Drop signs out if username is the current account.
func (s *Session) Drop(ctx context.Context, username string) error {
	s.mu.RLock()
	match := s.signedIn && s.current.SameUsername(username)
	s.mu.RUnlock()
	if !match {
		return nil
	}
	return s.Logout(ctx)
}

func (s *Session) set(acct account.Account) {
	s.mu.Lock()
	s.current, s.signedIn = acct, true
	s.mu.Unlock()
}

// Current is the read side of a Session.
type Current interface {
	Current() (account.Account, bool)
}

// Require returns the signed-in account if allowed accepts its role.
// A nil allowed accepts any signed-in account.
// PRE: none
// POST: Returns ErrNotAuthenticated when signed out, ErrForbidden when the role is rejected
func Require(c Current, allowed func(account.Role) bool) (account.Account, error) {
	acct, ok := c.Current()
	if !ok {
		return account.Account{}, ErrNotAuthenticated
	}
	if allowed != nil && !allowed(acct.Role) {
		return account.Account{}, ErrForbidden
	}
	return acct, nil
}

// IsStudent accepts the Student role.
func IsStudent(r account.Role) bool {
	return r == account.RoleStudent
}
