// Package app builds the application context handed to the presentation
// layer: the user directory, the attendance ledger and the session.
package app

import (
	"context"
	"fmt"
	"time"

	accountStore "classroll/internal/adapters/storage/account"
	attendanceStore "classroll/internal/adapters/storage/attendance"
	"classroll/internal/adapters/storage/kv"
	sessionStore "classroll/internal/adapters/storage/session"
	"classroll/internal/application/directory"
	"classroll/internal/application/ledger"
	"classroll/internal/application/session"
)

// Options tunes the application context.
type Options struct {
	// LoginDelay is the pause before credentials are checked.
	// Zero uses session.DefaultLoginDelay; negative disables it.
	LoginDelay time.Duration
}

// App is the shared application context.
type App struct {
	Directory *directory.Directory
	Ledger    *ledger.Ledger
	Session   *session.Session
}

// New loads the directory and ledger from store, then restores the session.
// PRE: store is reachable
// POST: Directory contains "admin"; Session is signed in only as an existing account
func New(ctx context.Context, store kv.Store, opts Options) (*App, error) {
	delay := opts.LoginDelay
	if delay == 0 {
		delay = session.DefaultLoginDelay
	}

	dir := directory.New(accountStore.NewKVStore(store))
	if err := dir.Load(ctx); err != nil {
		return nil, fmt.Errorf("init app: %w", err)
	}

	led := ledger.New(attendanceStore.NewKVStore(store))
	if err := led.Load(ctx); err != nil {
		return nil, fmt.Errorf("init app: %w", err)
	}

	sess := session.New(dir, sessionStore.NewKVStore(store), delay)
	if err := sess.Restore(ctx); err != nil {
		return nil, fmt.Errorf("init app: %w", err)
	}

	return &App{Directory: dir, Ledger: led, Session: sess}, nil
}
