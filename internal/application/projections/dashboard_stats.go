package projections

import (
	"context"
	"time"

	"classroll/internal/application/session"
	"classroll/internal/domain/attendance"
)

// NoCheckInYet is shown as the latest check-in time on an empty ledger.
const NoCheckInYet = "--:--"

// DashboardStatsQuery pins the instant whose UTC date counts as today.
// A zero AsOf means now.
type DashboardStatsQuery struct {
	AsOf time.Time
}

// DashboardStatsResult holds the dashboard counters.
type DashboardStatsResult struct {
	AsOfDate     string `json:"asOfDate"`
	Total        int    `json:"total"`
	Today        int    `json:"today"`
	LastCheckIn  string `json:"lastCheckIn"`
	HasCheckedIn bool   `json:"hasCheckedIn"`
}

// DashboardStatsDeps holds dependencies for DashboardStats.
type DashboardStatsDeps struct {
	Ledger  LedgerStats
	Session session.Current
}

// QueryDashboardStats counts all records and today's records, where today is
// the UTC calendar date of AsOf.
// PRE: Someone is signed in
// POST: LastCheckIn is the time of the latest record, or NoCheckInYet
func QueryDashboardStats(_ context.Context, query DashboardStatsQuery, deps DashboardStatsDeps) (DashboardStatsResult, error) {
	if _, err := session.Require(deps.Session, nil); err != nil {
		return DashboardStatsResult{}, err
	}

	asOf := query.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	date := asOf.UTC().Format(attendance.DateLayout)
	stats := deps.Ledger.Stats(date)

	res := DashboardStatsResult{
		AsOfDate:     date,
		Total:        stats.Total,
		Today:        stats.TodayCount,
		LastCheckIn:  NoCheckInYet,
		HasCheckedIn: stats.HasMostRecent,
	}
	if stats.HasMostRecent {
		res.LastCheckIn = stats.MostRecentTime
	}
	return res, nil
}
