package orchestrators

import (
	"context"
	"time"

	"classroll/internal/application/session"
	"classroll/internal/domain/attendance"
)

// LedgerForCheckIn defines the ledger interface needed by CheckIn.
type LedgerForCheckIn interface {
	Append(ctx context.Context, rec attendance.Record) (attendance.Record, error)
}

// CheckInInput carries the optional class details for a check-in.
type CheckInInput struct {
	Subject  string
	Semester int
}

// CheckInDeps holds dependencies for CheckIn.
type CheckInDeps struct {
	Ledger  LedgerForCheckIn
	Session session.Current
	Now     func() time.Time
}

// ExecuteCheckIn records a Present event for the signed-in account.
// PRE: Someone is signed in
// POST: A record with the account's full name and role is appended
func ExecuteCheckIn(ctx context.Context, input CheckInInput, deps CheckInDeps) (attendance.Record, error) {
	acct, err := session.Require(deps.Session, nil)
	if err != nil {
		return attendance.Record{}, err
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	rec := attendance.Record{
		Name:     acct.FullName,
		Role:     acct.Role,
		Subject:  input.Subject,
		Semester: input.Semester,
		Status:   attendance.StatusPresent,
	}
	rec.FromTime(now())
	return deps.Ledger.Append(ctx, rec)
}
