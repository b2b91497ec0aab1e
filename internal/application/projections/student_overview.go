package projections

import (
	"context"
	"fmt"
	"strings"

	"classroll/internal/application/session"
	"classroll/internal/domain/attendance"
)

// SubjectRow is one line of the student overview.
type SubjectRow struct {
	Label      string  `json:"label"`
	Subject    string  `json:"subject"`
	Semester   int     `json:"semester"`
	Total      int     `json:"total"`
	Absent     int     `json:"absent"`
	AbsentRate float64 `json:"absentRate"`
	AtRisk     bool    `json:"atRisk"`
	Status     string  `json:"status"`
}

// StudentOverviewResult is the signed-in student's absence breakdown.
// Markdown renders the same rows as a report.
type StudentOverviewResult struct {
	FullName string       `json:"fullName"`
	Subjects []SubjectRow `json:"subjects"`
	Markdown string       `json:"markdown"`
}

// StudentOverviewDeps holds dependencies for StudentOverview.
type StudentOverviewDeps struct {
	Ledger  LedgerSummarizer
	Session session.Current
}

// QueryStudentOverview summarizes absences per (subject, semester) for the
// signed-in student, matched by full name.
// PRE: The signed-in account is a Student
// POST: Subjects are in order of first appearance in the ledger
func QueryStudentOverview(_ context.Context, deps StudentOverviewDeps) (StudentOverviewResult, error) {
	acct, err := session.Require(deps.Session, session.IsStudent)
	if err != nil {
		return StudentOverviewResult{}, err
	}

	summaries := deps.Ledger.StudentSummary(acct.FullName)
	rows := make([]SubjectRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, SubjectRow{
			Label:      s.Label,
			Subject:    s.Subject,
			Semester:   s.Semester,
			Total:      s.Total,
			Absent:     s.Absent,
			AbsentRate: s.AbsentRate,
			AtRisk:     s.AtRisk,
			Status:     s.Status,
		})
	}

	return StudentOverviewResult{
		FullName: acct.FullName,
		Subjects: rows,
		Markdown: overviewMarkdown(acct.FullName, rows),
	}, nil
}

func overviewMarkdown(fullName string, rows []SubjectRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Attendance overview for %s\n\n", escapeMarkdown(fullName))
	if len(rows) == 0 {
		b.WriteString("No attendance recorded yet.\n")
		return b.String()
	}
	b.WriteString("| Subject | Absent | Rate | Status |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range rows {
		status := r.Status
		if r.AtRisk {
			status = "**" + status + "**"
		}
		fmt.Fprintf(&b, "| %s | %d / %d | %.1f%% | %s |\n", escapeMarkdown(r.Label), r.Absent, r.Total, r.AbsentRate, status)
	}
	fmt.Fprintf(&b, "\nSubjects above %.0f%% absence are marked at risk.\n", attendance.AtRiskThreshold)
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", `\<`, "#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
