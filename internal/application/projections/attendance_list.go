package projections

import (
	"context"

	"classroll/internal/application/session"
	"classroll/internal/domain/attendance"
)

// AttendanceListQuery carries the name filter.
type AttendanceListQuery struct {
	Filter string
}

// AttendanceListResult is the table shown on the dashboard.
type AttendanceListResult struct {
	Records []attendance.Record `json:"records"`
	CanEdit bool                `json:"canEdit"`
}

// AttendanceListDeps holds dependencies for AttendanceList.
type AttendanceListDeps struct {
	Ledger  LedgerLister
	Session session.Current
}

// QueryAttendanceList returns records whose name contains the filter, newest first.
// PRE: Someone is signed in
// POST: CanEdit reflects whether the signed-in role may edit records
func QueryAttendanceList(_ context.Context, query AttendanceListQuery, deps AttendanceListDeps) (AttendanceListResult, error) {
	acct, err := session.Require(deps.Session, nil)
	if err != nil {
		return AttendanceListResult{}, err
	}
	return AttendanceListResult{
		Records: deps.Ledger.List(query.Filter),
		CanEdit: acct.CanEditAttendance(),
	}, nil
}
