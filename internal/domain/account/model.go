package account

import (
	"errors"
	"strings"
)

// Role is the access level of an Account.
type Role string

// Role constants
const (
	RoleAdmin   Role = "Admin"
	RoleTeacher Role = "Teacher"
	RoleStudent Role = "Student"
)

// ProtectedUsername is the account that can never be removed.
const ProtectedUsername = "admin"

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

// Domain errors
var (
	ErrEmptyUsername     = errors.New("username cannot be empty")
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrEmptyFullName     = errors.New("full name cannot be empty")
	ErrInvalidRole       = errors.New("role must be one of: Admin, Teacher, Student")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrAccountNotFound   = errors.New("account not found")
	ErrProtectedAccount  = errors.New("default admin cannot be deleted or renamed")
	ErrLastAdmin         = errors.New("cannot remove the last Admin")
)

// Account is a login-capable identity in the directory.
// Password is kept and compared in plain text.
type Account struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// Update carries a partial edit of an Account. Nil fields are left unchanged.
type Update struct {
	Username *string
	Password *string
	FullName *string
	Role     *Role
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return ErrEmptyUsername
	}
	if a.Password == "" {
		return ErrEmptyPassword
	}
	if strings.TrimSpace(a.FullName) == "" {
		return ErrEmptyFullName
	}
	if !a.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// Apply returns a copy of the account with the non-nil update fields set.
// INVARIANT: the receiver is not mutated
func (a Account) Apply(u Update) Account {
	if u.Username != nil {
		a.Username = strings.TrimSpace(*u.Username)
	}
	if u.Password != nil {
		a.Password = *u.Password
	}
	if u.FullName != nil {
		a.FullName = strings.TrimSpace(*u.FullName)
	}
	if u.Role != nil {
		a.Role = *u.Role
	}
	return a
}

// SameUsername reports whether name matches the account's username, ignoring case.
func (a *Account) SameUsername(name string) bool {
	return strings.EqualFold(a.Username, strings.TrimSpace(name))
}

// CheckPassword compares the plaintext password exactly (case-sensitive).
func (a *Account) CheckPassword(password string) bool {
	return a.Password == password
}

// IsProtected returns true for the default admin account.
func (a *Account) IsProtected() bool {
	return IsProtectedUsername(a.Username)
}

// IsAdmin returns true if the account has admin role.
// INVARIANT: Account fields are not mutated
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanEditAttendance returns true if the account may edit attendance records.
// INVARIANT: Account fields are not mutated
func (a *Account) CanEditAttendance() bool {
	return a.Role.CanEditAttendance()
}

// CanManageUsers returns true if the account may manage the directory.
// INVARIANT: Account fields are not mutated
func (a *Account) CanManageUsers() bool {
	return a.Role.CanManageUsers()
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

// CanEditAttendance is true for Admin and Teacher.
func (r Role) CanEditAttendance() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// CanManageUsers is true for Admin only.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

// IsProtectedUsername reports whether name is the undeletable admin username.
func IsProtectedUsername(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), ProtectedUsername)
}

// CountAdmins returns the number of Admin accounts in list.
func CountAdmins(list []Account) int {
	n := 0
	for i := range list {
		if list[i].IsAdmin() {
			n++
		}
	}
	return n
}

// IndexOf returns the position of the account whose username matches name
// case-insensitively, or -1.
func IndexOf(list []Account, name string) int {
	for i := range list {
		if list[i].SameUsername(name) {
			return i
		}
	}
	return -1
}

// DefaultAdmin is the account restored whenever "admin" is missing.
func DefaultAdmin() Account {
	return Account{Username: "admin", Password: "1234", FullName: "Admin User", Role: RoleAdmin}
}

// SeedAccounts returns the demo directory used when nothing is persisted.
func SeedAccounts() []Account {
	return []Account{
		DefaultAdmin(),
		{Username: "teacher1", Password: "teach123", FullName: "Dr. Sarah Johnson", Role: RoleTeacher},
		{Username: "student1", Password: "stud123", FullName: "John Smith", Role: RoleStudent},
	}
}
