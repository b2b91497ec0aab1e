package orchestrators

import (
	"context"

	"classroll/internal/domain/account"
)

// SessionForLogin defines the session interface needed by Login.
type SessionForLogin interface {
	Login(ctx context.Context, username, password string) (account.Account, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult carries the signed-in account's public fields.
type LoginResult struct {
	Username string
	FullName string
	Role     account.Role
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Session SessionForLogin
}

// ExecuteLogin signs in with the given credentials.
// PRE: none
// POST: Returns the account on success; session.ErrInvalidCredentials on mismatch
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	acct, err := deps.Session.Login(ctx, input.Username, input.Password)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Username: acct.Username,
		FullName: acct.FullName,
		Role:     acct.Role,
	}, nil
}

// SessionForLogout defines the session interface needed by Logout.
type SessionForLogout interface {
	Logout(ctx context.Context) error
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Session SessionForLogout
}

// ExecuteLogout signs out. Signing out while signed out is not an error.
func ExecuteLogout(ctx context.Context, deps LogoutDeps) error {
	return deps.Session.Logout(ctx)
}
