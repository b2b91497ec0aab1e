package orchestrators

import (
	"context"

	"classroll/internal/application/session"
	"classroll/internal/domain/account"
	"classroll/internal/domain/attendance"
)

// LedgerForEdit defines the ledger interface needed by EditAttendance.
type LedgerForEdit interface {
	Edit(ctx context.Context, id string, e attendance.Edit) (attendance.Record, error)
}

// EditAttendanceInput carries the edit form for one record.
type EditAttendanceInput struct {
	ID       string
	Subject  string
	Semester int
	Status   attendance.Status
}

// EditAttendanceDeps holds dependencies for EditAttendance.
type EditAttendanceDeps struct {
	Ledger  LedgerForEdit
	Session session.Current
}

// ExecuteEditAttendance changes the subject, semester and status of a record.
// PRE: The signed-in account is an Admin or Teacher
// POST: The record is persisted with the new values
func ExecuteEditAttendance(ctx context.Context, input EditAttendanceInput, deps EditAttendanceDeps) (attendance.Record, error) {
	if _, err := session.Require(deps.Session, account.Role.CanEditAttendance); err != nil {
		return attendance.Record{}, err
	}
	return deps.Ledger.Edit(ctx, input.ID, attendance.Edit{
		Subject:  input.Subject,
		Semester: input.Semester,
		Status:   input.Status,
	})
}
