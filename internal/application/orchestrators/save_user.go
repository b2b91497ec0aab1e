package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"classroll/internal/application/session"
	"classroll/internal/domain/account"
)

// DirectoryForSaveUser defines the directory interface needed by SaveUser.
type DirectoryForSaveUser interface {
	Add(ctx context.Context, acct account.Account) (account.Account, error)
	Update(ctx context.Context, username string, u account.Update) (account.Account, error)
}

// SessionForSaveUser defines the session interface needed by SaveUser.
type SessionForSaveUser interface {
	session.Current
	Refresh(ctx context.Context, previousUsername string, acct account.Account) error
}

// SaveUserInput carries the user form. An empty OriginalUsername adds a new
// account; otherwise the named account is updated. On update an empty
// Password keeps the existing one.
type SaveUserInput struct {
	OriginalUsername string
	Username         string
	Password         string
	FullName         string
	Role             account.Role
}

// SaveUserDeps holds dependencies for SaveUser.
type SaveUserDeps struct {
	Directory DirectoryForSaveUser
	Session   SessionForSaveUser
}

// ExecuteSaveUser adds or updates an account.
// PRE: The signed-in account is an Admin
// POST: The account is persisted; the session follows edits to the signed-in account
// INVARIANT: Directory invariants are enforced by the directory
func ExecuteSaveUser(ctx context.Context, input SaveUserInput, deps SaveUserDeps) (account.Account, error) {
	actor, err := session.Require(deps.Session, account.Role.CanManageUsers)
	if err != nil {
		return account.Account{}, err
	}

	original := strings.TrimSpace(input.OriginalUsername)
	if original == "" {
		saved, err := deps.Directory.Add(ctx, account.Account{
			Username: input.Username,
			Password: input.Password,
			FullName: input.FullName,
			Role:     input.Role,
		})
		if err != nil {
			slog.Info("user_event", "event", "add_rejected", "actor", actor.Username, "username", input.Username, "reason", err.Error())
			return account.Account{}, err
		}
		return saved, nil
	}

	u := account.Update{
		Username: &input.Username,
		FullName: &input.FullName,
		Role:     &input.Role,
	}
	if input.Password != "" {
		u.Password = &input.Password
	}

	saved, err := deps.Directory.Update(ctx, original, u)
	if err != nil {
		slog.Info("user_event", "event", "update_rejected", "actor", actor.Username, "username", original, "reason", err.Error())
		return account.Account{}, err
	}
	if err := deps.Session.Refresh(ctx, original, saved); err != nil {
		return account.Account{}, err
	}
	return saved, nil
}
