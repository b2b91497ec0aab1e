package attendance

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"classroll/internal/domain/account"
)

// Date and time layouts used for persisted records.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Status is the outcome recorded for a check-in.
type Status string

// Status constants. Anything other than Present counts as an absence.
const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
)

// UnknownSubject labels records without a subject in summaries.
const UnknownSubject = "Unknown"

// AtRiskThreshold is the absence percentage above which a subject is flagged.
const AtRiskThreshold = 15.0

// Summary status labels
const (
	SummaryAtRisk = "At risk"
	SummaryOK     = "OK"
)

// Domain errors
var (
	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrEmptyName       = errors.New("attendance must be associated with a name")
	ErrInvalidDate     = errors.New("date must be formatted YYYY-MM-DD")
	ErrInvalidTime     = errors.New("time must be formatted HH:MM:SS")
	ErrInvalidSemester = errors.New("semester must be a positive number")
	ErrEmptyStatus     = errors.New("status cannot be empty")
)

// Record is one check-in event. Name is a loose textual link to an
// account's full name; nothing enforces that the account exists.
type Record struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Role     account.Role `json:"role"`
	Subject  string       `json:"subject"`
	Semester int          `json:"semester"`
	Date     string       `json:"date"`
	Time     string       `json:"time"`
	Status   Status       `json:"status"`
}

// Edit carries the mutable fields of a Record.
type Edit struct {
	Subject  string
	Semester int
	Status   Status
}

// Stats are the dashboard counters derived from the ledger.
type Stats struct {
	Total          int
	TodayCount     int
	MostRecentTime string
	HasMostRecent  bool
}

// SubjectSummary is the absence breakdown for one (subject, semester) group.
type SubjectSummary struct {
	Subject    string
	Semester   int
	Label      string
	Total      int
	Absent     int
	AbsentRate float64
	AtRisk     bool
	Status     string
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Date and Time parse with the record layouts
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse(TimeLayout, r.Time); err != nil {
		return ErrInvalidTime
	}
	if r.Semester < 1 {
		return ErrInvalidSemester
	}
	if r.Status == "" {
		return ErrEmptyStatus
	}
	return nil
}

// IsPresent returns true if the record counts as attended.
func (r *Record) IsPresent() bool {
	return r.Status == StatusPresent
}

// Before reports whether r happened strictly before other by (Date, Time).
// Both fields are fixed-width, so string order is chronological order.
func (r *Record) Before(other *Record) bool {
	if r.Date != other.Date {
		return r.Date < other.Date
	}
	return r.Time < other.Time
}

// Apply sets the mutable fields from e.
// PRE: e has been normalized
// POST: Subject, Semester and Status replaced; other fields untouched
func (r *Record) Apply(e Edit) {
	r.Subject = e.Subject
	r.Semester = e.Semester
	r.Status = e.Status
}

// Normalize trims input and applies the semester default.
// PRE: none
// POST: Semester 0 becomes 1; negative semesters are rejected
func (e Edit) Normalize() (Edit, error) {
	e.Subject = strings.TrimSpace(e.Subject)
	if e.Semester == 0 {
		e.Semester = 1
	}
	if e.Semester < 0 {
		return Edit{}, ErrInvalidSemester
	}
	if e.Status == "" {
		return Edit{}, ErrEmptyStatus
	}
	return e, nil
}

// FromTime fills Date and Time from t.
func (r *Record) FromTime(t time.Time) {
	r.Date = t.Format(DateLayout)
	r.Time = t.Format(TimeLayout)
}

// Filter returns the records whose name contains query, ignoring case.
// An empty query matches everything.
func Filter(records []Record, query string) []Record {
	q := strings.ToLower(query)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

// SortNewestFirst orders records by (Date, Time) descending in place.
// Ties keep their original relative order.
func SortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[j].Before(&records[i])
	})
}

// ComputeStats derives dashboard counters as of the given date.
// PRE: asOfDate is formatted YYYY-MM-DD
// POST: Returns counts over all records; MostRecentTime is the time of the latest record
func ComputeStats(records []Record, asOfDate string) Stats {
	stats := Stats{Total: len(records)}
	var latest *Record
	for i := range records {
		r := &records[i]
		if r.Date == asOfDate {
			stats.TodayCount++
		}
		if latest == nil || latest.Before(r) {
			latest = r
		}
	}
	if latest != nil {
		stats.MostRecentTime = latest.Time
		stats.HasMostRecent = true
	}
	return stats
}

// Summarize groups the records of one person by (subject, semester) and
// computes absence rates. Groups appear in order of first occurrence.
// PRE: fullName is the exact name recorded on the person's check-ins
// POST: Every group has Total >= 1
func Summarize(records []Record, fullName string) []SubjectSummary {
	type key struct {
		subject  string
		semester int
	}
	index := make(map[key]int)
	var out []SubjectSummary

	for _, r := range records {
		if r.Name != fullName {
			continue
		}
		k := key{subject: r.Subject, semester: r.Semester}
		if k.subject == "" {
			k.subject = UnknownSubject
		}
		if k.semester < 1 {
			k.semester = 1
		}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, SubjectSummary{
				Subject:  k.subject,
				Semester: k.semester,
				Label:    fmt.Sprintf("%s (S%d)", k.subject, k.semester),
			})
		}
		out[i].Total++
		if !r.IsPresent() {
			out[i].Absent++
		}
	}

	for i := range out {
		s := &out[i]
		s.AbsentRate = roundTenth(float64(s.Absent) / float64(s.Total) * 100)
		s.AtRisk = s.AbsentRate > AtRiskThreshold
		s.Status = SummaryOK
		if s.AtRisk {
			s.Status = SummaryAtRisk
		}
	}
	return out
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// SeedRecords returns the demo ledger used when nothing is persisted.
// IDs are left empty for the ledger to assign.
func SeedRecords() []Record {
	return []Record{
		{Name: "John Smith", Role: account.RoleStudent, Subject: "Mathematics", Semester: 1, Date: "2025-11-11", Time: "09:15:23", Status: StatusPresent},
		{Name: "Emma Davis", Role: account.RoleStudent, Subject: "Computer Science", Semester: 1, Date: "2025-11-11", Time: "09:16:45", Status: StatusPresent},
		{Name: "Dr. Sarah Johnson", Role: account.RoleTeacher, Subject: "Mathematics", Semester: 1, Date: "2025-11-11", Time: "09:10:12", Status: StatusPresent},
	}
}
