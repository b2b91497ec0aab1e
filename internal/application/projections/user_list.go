package projections

import (
	"context"

	"classroll/internal/application/session"
	"classroll/internal/domain/account"
)

// UserRow is one account in the management table. Passwords are not listed.
type UserRow struct {
	Username  string       `json:"username"`
	FullName  string       `json:"fullName"`
	Role      account.Role `json:"role"`
	Protected bool         `json:"protected"`
}

// UserListResult carries the management table.
type UserListResult struct {
	Users []UserRow `json:"users"`
}

// UserListDeps holds dependencies for UserList.
type UserListDeps struct {
	Directory DirectoryLister
	Session   session.Current
}

// QueryUserList returns every account in insertion order.
// PRE: The signed-in account is an Admin
// POST: Protected is true only for the default admin
func QueryUserList(_ context.Context, deps UserListDeps) (UserListResult, error) {
	if _, err := session.Require(deps.Session, account.Role.CanManageUsers); err != nil {
		return UserListResult{}, err
	}

	accounts := deps.Directory.List()
	rows := make([]UserRow, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		rows = append(rows, UserRow{
			Username:  a.Username,
			FullName:  a.FullName,
			Role:      a.Role,
			Protected: a.IsProtected(),
		})
	}
	return UserListResult{Users: rows}, nil
}
