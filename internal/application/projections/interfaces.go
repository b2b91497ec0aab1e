package projections

import (
	"classroll/internal/domain/account"
	"classroll/internal/domain/attendance"
)

// LedgerLister lists attendance records newest first.
type LedgerLister interface {
	List(filter string) []attendance.Record
}

// LedgerStats derives dashboard counters.
type LedgerStats interface {
	Stats(asOfDate string) attendance.Stats
}

// LedgerSummarizer builds per-subject absence summaries.
type LedgerSummarizer interface {
	StudentSummary(fullName string) []attendance.SubjectSummary
}

// DirectoryLister lists accounts in insertion order.
type DirectoryLister interface {
	List() []account.Account
}
