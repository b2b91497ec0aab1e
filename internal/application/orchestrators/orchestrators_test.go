package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"classroll/internal/adapters/storage/kv"
	"classroll/internal/application/app"
	"classroll/internal/application/session"
	"classroll/internal/domain/account"
	"classroll/internal/domain/attendance"
)

func newApp(t *testing.T, username, password string) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), kv.NewMemoryStore(), app.Options{LoginDelay: -1})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	if username != "" {
		if _, err := ExecuteLogin(context.Background(), LoginInput{Username: username, Password: password}, LoginDeps{Session: a.Session}); err != nil {
			t.Fatalf("login %s: %v", username, err)
		}
	}
	return a
}

func saveDeps(a *app.App) SaveUserDeps {
	return SaveUserDeps{Directory: a.Directory, Session: a.Session}
}

// TestExecuteLogin returns public account fields.
func TestExecuteLogin(t *testing.T) {
	a := newApp(t, "", "")
	res, err := ExecuteLogin(context.Background(), LoginInput{Username: "Admin", Password: "1234"}, LoginDeps{Session: a.Session})
	if err != nil {
		t.Fatalf("ExecuteLogin: %v", err)
	}
	if res.Username != "admin" || res.FullName != "Admin User" || res.Role != account.RoleAdmin {
		t.Errorf("result = %+v", res)
	}

	if _, err := ExecuteLogin(context.Background(), LoginInput{Username: "admin", Password: "1234X"}, LoginDeps{Session: a.Session}); !errors.Is(err, session.ErrInvalidCredentials) {
		t.Errorf("bad password error = %v", err)
	}
}

// TestExecuteLogout signs out.
func TestExecuteLogout(t *testing.T) {
	a := newApp(t, "admin", "1234")
	if err := ExecuteLogout(context.Background(), LogoutDeps{Session: a.Session}); err != nil {
		t.Fatalf("ExecuteLogout: %v", err)
	}
	if _, ok := a.Session.Current(); ok {
		t.Error("still signed in")
	}
}

// TestExecuteSaveUser_Authorization rejects non-admins.
func TestExecuteSaveUser_Authorization(t *testing.T) {
	input := SaveUserInput{Username: "new", Password: "pw", FullName: "New", Role: account.RoleStudent}
	tests := []struct {
		name               string
		username, password string
		want               error
	}{
		{"signed out", "", "", session.ErrNotAuthenticated},
		{"teacher", "teacher1", "teach123", session.ErrForbidden},
		{"student", "student1", "stud123", session.ErrForbidden},
		{"admin", "admin", "1234", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newApp(t, tt.username, tt.password)
			_, err := ExecuteSaveUser(context.Background(), input, saveDeps(a))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestExecuteSaveUser_AddAndUpdate covers both branches of the user form.
func TestExecuteSaveUser_AddAndUpdate(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, "admin", "1234")

	added, err := ExecuteSaveUser(ctx, SaveUserInput{Username: " emma ", Password: "pw", FullName: "Emma Davis", Role: account.RoleStudent}, saveDeps(a))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.Username != "emma" {
		t.Errorf("added username = %q", added.Username)
	}

	if _, err := ExecuteSaveUser(ctx, SaveUserInput{Username: "EMMA", Password: "pw", FullName: "Other", Role: account.RoleStudent}, saveDeps(a)); !errors.Is(err, account.ErrDuplicateUsername) {
		t.Errorf("duplicate add error = %v", err)
	}

	updated, err := ExecuteSaveUser(ctx, SaveUserInput{OriginalUsername: "emma", Username: "emma.d", FullName: "Emma D", Role: account.RoleTeacher}, saveDeps(a))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Password != "pw" || updated.Role != account.RoleTeacher || updated.Username != "emma.d" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := ExecuteSaveUser(ctx, SaveUserInput{OriginalUsername: "admin", Username: "admin", FullName: "Admin User", Role: account.RoleTeacher}, saveDeps(a)); !errors.Is(err, account.ErrLastAdmin) {
		t.Errorf("demote sole admin error = %v", err)
	}
}

// TestExecuteSaveUser_RefreshesOwnSession keeps the session in sync with self-edits.
func TestExecuteSaveUser_RefreshesOwnSession(t *testing.T) {
	a := newApp(t, "admin", "1234")
	_, err := ExecuteSaveUser(context.Background(), SaveUserInput{OriginalUsername: "admin", Username: "admin", FullName: "Head Admin", Role: account.RoleAdmin}, saveDeps(a))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, _ := a.Session.Current(); got.FullName != "Head Admin" {
		t.Errorf("session FullName = %q", got.FullName)
	}
}

// TestExecuteDeleteUser covers protection and session drop.
func TestExecuteDeleteUser(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, "admin", "1234")
	deps := DeleteUserDeps{Directory: a.Directory, Session: a.Session}

	if _, err := ExecuteDeleteUser(ctx, DeleteUserInput{Username: "ADMIN"}, deps); !errors.Is(err, account.ErrProtectedAccount) {
		t.Errorf("delete admin error = %v", err)
	}

	ExecuteSaveUser(ctx, SaveUserInput{Username: "boss", Password: "pw", FullName: "Boss", Role: account.RoleAdmin}, saveDeps(a))
	ExecuteLogout(ctx, LogoutDeps{Session: a.Session})
	ExecuteLogin(ctx, LoginInput{Username: "boss", Password: "pw"}, LoginDeps{Session: a.Session})

	removed, err := ExecuteDeleteUser(ctx, DeleteUserInput{Username: "boss"}, deps)
	if err != nil {
		t.Fatalf("delete self: %v", err)
	}
	if removed.Username != "boss" {
		t.Errorf("removed = %+v", removed)
	}
	if _, ok := a.Session.Current(); ok {
		t.Error("session survived deleting its own account")
	}
}

// TestExecuteEditAttendance allows Admin and Teacher only.
func TestExecuteEditAttendance(t *testing.T) {
	tests := []struct {
		username, password string
		want               error
	}{
		{"admin", "1234", nil},
		{"teacher1", "teach123", nil},
		{"student1", "stud123", session.ErrForbidden},
		{"", "", session.ErrNotAuthenticated},
	}
	for _, tt := range tests {
		t.Run("as "+tt.username, func(t *testing.T) {
			a := newApp(t, tt.username, tt.password)
			id := a.Ledger.List("")[0].ID
			rec, err := ExecuteEditAttendance(context.Background(), EditAttendanceInput{ID: id, Subject: "Physics", Semester: 2, Status: attendance.StatusAbsent}, EditAttendanceDeps{Ledger: a.Ledger, Session: a.Session})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if tt.want == nil && (rec.Subject != "Physics" || rec.Status != attendance.StatusAbsent) {
				t.Errorf("record = %+v", rec)
			}
		})
	}
}

// TestExecuteCheckIn records the signed-in account at the given clock time.
func TestExecuteCheckIn(t *testing.T) {
	a := newApp(t, "student1", "stud123")
	clock := func() time.Time { return time.Date(2025, 11, 12, 8, 5, 9, 0, time.UTC) }

	rec, err := ExecuteCheckIn(context.Background(), CheckInInput{Subject: "Mathematics"}, CheckInDeps{Ledger: a.Ledger, Session: a.Session, Now: clock})
	if err != nil {
		t.Fatalf("ExecuteCheckIn: %v", err)
	}
	if rec.Name != "John Smith" || rec.Role != account.RoleStudent || rec.Date != "2025-11-12" || rec.Time != "08:05:09" || rec.Semester != 1 || rec.Status != attendance.StatusPresent {
		t.Errorf("record = %+v", rec)
	}
	if got := a.Ledger.List("")[0]; got.ID != rec.ID {
		t.Errorf("newest record = %+v, want %s", got, rec.ID)
	}

	signedOut := newApp(t, "", "")
	if _, err := ExecuteCheckIn(context.Background(), CheckInInput{}, CheckInDeps{Ledger: signedOut.Ledger, Session: signedOut.Session}); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Errorf("signed out error = %v", err)
	}
}
