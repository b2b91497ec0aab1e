package orchestrators

import (
	"context"
	"log/slog"

	"classroll/internal/application/session"
	"classroll/internal/domain/account"
)

// DirectoryForDeleteUser defines the directory interface needed by DeleteUser.
type DirectoryForDeleteUser interface {
	Remove(ctx context.Context, username string) (account.Account, error)
}

// SessionForDeleteUser defines the session interface needed by DeleteUser.
type SessionForDeleteUser interface {
	session.Current
	Drop(ctx context.Context, username string) error
}

// DeleteUserInput names the account to remove.
type DeleteUserInput struct {
	Username string
}

// DeleteUserDeps holds dependencies for DeleteUser.
type DeleteUserDeps struct {
	Directory DirectoryForDeleteUser
	Session   SessionForDeleteUser
}

// ExecuteDeleteUser removes an account.
// PRE: The signed-in account is an Admin
// POST: The account is gone; if it was signed in, the session is dropped
func ExecuteDeleteUser(ctx context.Context, input DeleteUserInput, deps DeleteUserDeps) (account.Account, error) {
	actor, err := session.Require(deps.Session, account.Role.CanManageUsers)
	if err != nil {
		return account.Account{}, err
	}

	removed, err := deps.Directory.Remove(ctx, input.Username)
	if err != nil {
		slog.Info("user_event", "event", "remove_rejected", "actor", actor.Username, "username", input.Username, "reason", err.Error())
		return account.Account{}, err
	}
	if err := deps.Session.Drop(ctx, removed.Username); err != nil {
		return account.Account{}, err
	}
	return removed, nil
}
