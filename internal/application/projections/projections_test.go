package projections

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"classroll/internal/adapters/storage/kv"
	"classroll/internal/application/app"
	"classroll/internal/application/session"
	"classroll/internal/domain/account"
	"classroll/internal/domain/attendance"
)

func newApp(t *testing.T, username, password string) *app.App {
	t.Helper()
	ctx := context.Background()
	a, err := app.New(ctx, kv.NewMemoryStore(), app.Options{LoginDelay: -1})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	if username != "" {
		if _, err := a.Session.Login(ctx, username, password); err != nil {
			t.Fatalf("login %s: %v", username, err)
		}
	}
	return a
}

// TestQueryAttendanceList reports edit rights per role.
func TestQueryAttendanceList(t *testing.T) {
	tests := []struct {
		username, password string
		canEdit            bool
		wantErr            error
	}{
		{"admin", "1234", true, nil},
		{"teacher1", "teach123", true, nil},
		{"student1", "stud123", false, nil},
		{"", "", false, session.ErrNotAuthenticated},
	}
	for _, tt := range tests {
		t.Run("as "+tt.username, func(t *testing.T) {
			a := newApp(t, tt.username, tt.password)
			res, err := QueryAttendanceList(context.Background(), AttendanceListQuery{}, AttendanceListDeps{Ledger: a.Ledger, Session: a.Session})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if res.CanEdit != tt.canEdit {
				t.Errorf("CanEdit = %v, want %v", res.CanEdit, tt.canEdit)
			}
			if len(res.Records) != 3 || res.Records[0].Name != "Emma Davis" {
				t.Errorf("records = %+v", res.Records)
			}
		})
	}
}

// TestQueryAttendanceList_Filter matches names ignoring case.
func TestQueryAttendanceList_Filter(t *testing.T) {
	a := newApp(t, "admin", "1234")
	res, err := QueryAttendanceList(context.Background(), AttendanceListQuery{Filter: "JOHN"}, AttendanceListDeps{Ledger: a.Ledger, Session: a.Session})
	if err != nil {
		t.Fatalf("QueryAttendanceList: %v", err)
	}
	var names []string
	for _, r := range res.Records {
		names = append(names, r.Name)
	}
	if want := []string{"John Smith", "Dr. Sarah Johnson"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

// TestQueryDashboardStats counts today's records and the latest time.
func TestQueryDashboardStats(t *testing.T) {
	a := newApp(t, "student1", "stud123")
	deps := DashboardStatsDeps{Ledger: a.Ledger, Session: a.Session}

	res, err := QueryDashboardStats(context.Background(), DashboardStatsQuery{AsOf: time.Date(2025, 11, 11, 12, 0, 0, 0, time.UTC)}, deps)
	if err != nil {
		t.Fatalf("QueryDashboardStats: %v", err)
	}
	want := DashboardStatsResult{AsOfDate: "2025-11-11", Total: 3, Today: 3, LastCheckIn: "09:16:45", HasCheckedIn: true}
	if res != want {
		t.Errorf("stats = %+v, want %+v", res, want)
	}
}

// TestQueryDashboardStats_TodayIsUTCDate counts today by the UTC date of AsOf.
func TestQueryDashboardStats_TodayIsUTCDate(t *testing.T) {
	a := newApp(t, "student1", "stud123")
	deps := DashboardStatsDeps{Ledger: a.Ledger, Session: a.Session}

	tests := []struct {
		name      string
		asOf      time.Time
		wantDate  string
		wantToday int
	}{
		{"ahead of UTC past midnight", time.Date(2025, 11, 12, 1, 0, 0, 0, time.FixedZone("UTC+5", 5*3600)), "2025-11-11", 3},
		{"behind UTC before midnight", time.Date(2025, 11, 10, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)), "2025-11-11", 3},
		{"next UTC day", time.Date(2025, 11, 11, 23, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)), "2025-11-12", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := QueryDashboardStats(context.Background(), DashboardStatsQuery{AsOf: tt.asOf}, deps)
			if err != nil {
				t.Fatalf("QueryDashboardStats: %v", err)
			}
			if res.AsOfDate != tt.wantDate || res.Today != tt.wantToday {
				t.Errorf("date %s today %d, want %s %d", res.AsOfDate, res.Today, tt.wantDate, tt.wantToday)
			}
		})
	}
}

// TestQueryDashboardStats_Empty shows the placeholder time.
func TestQueryDashboardStats_Empty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	kv.SaveJSON(ctx, store, kv.KeyAttendance, []attendance.Record{})
	a, err := app.New(ctx, store, app.Options{LoginDelay: -1})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	a.Session.Login(ctx, "admin", "1234")

	res, err := QueryDashboardStats(ctx, DashboardStatsQuery{}, DashboardStatsDeps{Ledger: a.Ledger, Session: a.Session})
	if err != nil {
		t.Fatalf("QueryDashboardStats: %v", err)
	}
	if res.Total != 0 || res.LastCheckIn != NoCheckInYet || res.HasCheckedIn {
		t.Errorf("stats = %+v", res)
	}
}

// TestQueryStudentOverview flags subjects above the threshold.
func TestQueryStudentOverview(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, "student1", "stud123")
	for i := 0; i < 9; i++ {
		r := attendance.Record{Name: "John Smith", Role: account.RoleStudent, Subject: "Mathematics", Semester: 1, Date: "2025-11-12", Time: fmt.Sprintf("09:%02d:00", i), Status: attendance.StatusPresent}
		if i < 2 {
			r.Status = attendance.StatusAbsent
		}
		if _, err := a.Ledger.Append(ctx, r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	res, err := QueryStudentOverview(ctx, StudentOverviewDeps{Ledger: a.Ledger, Session: a.Session})
	if err != nil {
		t.Fatalf("QueryStudentOverview: %v", err)
	}
	if len(res.Subjects) != 1 {
		t.Fatalf("subjects = %+v", res.Subjects)
	}
	s := res.Subjects[0]
	if s.Label != "Mathematics (S1)" || s.Total != 10 || s.Absent != 2 || s.AbsentRate != 20.0 || !s.AtRisk || s.Status != attendance.SummaryAtRisk {
		t.Errorf("row = %+v", s)
	}
	if !strings.Contains(res.Markdown, "| Mathematics (S1) | 2 / 10 | 20.0% | **At risk** |") {
		t.Errorf("markdown missing row:\n%s", res.Markdown)
	}
}

// TestQueryStudentOverview_StudentOnly rejects other roles.
func TestQueryStudentOverview_StudentOnly(t *testing.T) {
	for _, tc := range []struct{ u, p string }{{"admin", "1234"}, {"teacher1", "teach123"}} {
		a := newApp(t, tc.u, tc.p)
		if _, err := QueryStudentOverview(context.Background(), StudentOverviewDeps{Ledger: a.Ledger, Session: a.Session}); !errors.Is(err, session.ErrForbidden) {
			t.Errorf("%s error = %v, want ErrForbidden", tc.u, err)
		}
	}
}

// TestOverviewMarkdown_Escapes keeps names from injecting markup.
func TestOverviewMarkdown_Escapes(t *testing.T) {
	md := overviewMarkdown("A|B <script>", nil)
	if !strings.Contains(md, `A\|B \<script>`) {
		t.Errorf("name not escaped:\n%s", md)
	}
	if !strings.Contains(md, "No attendance recorded yet.") {
		t.Errorf("empty overview text missing:\n%s", md)
	}
}

// TestQueryUserList lists accounts for admins only.
func TestQueryUserList(t *testing.T) {
	a := newApp(t, "admin", "1234")
	res, err := QueryUserList(context.Background(), UserListDeps{Directory: a.Directory, Session: a.Session})
	if err != nil {
		t.Fatalf("QueryUserList: %v", err)
	}
	want := []UserRow{
		{Username: "admin", FullName: "Admin User", Role: account.RoleAdmin, Protected: true},
		{Username: "teacher1", FullName: "Dr. Sarah Johnson", Role: account.RoleTeacher},
		{Username: "student1", FullName: "John Smith", Role: account.RoleStudent},
	}
	if !reflect.DeepEqual(res.Users, want) {
		t.Errorf("users = %+v, want %+v", res.Users, want)
	}

	teacher := newApp(t, "teacher1", "teach123")
	if _, err := QueryUserList(context.Background(), UserListDeps{Directory: teacher.Directory, Session: teacher.Session}); !errors.Is(err, session.ErrForbidden) {
		t.Errorf("teacher error = %v, want ErrForbidden", err)
	}
}

// TestQueryExportAttendance writes a readable workbook.
func TestQueryExportAttendance(t *testing.T) {
	a := newApp(t, "teacher1", "teach123")
	now := time.Date(2025, 11, 12, 10, 0, 0, 0, time.UTC)

	res, err := QueryExportAttendance(context.Background(), ExportAttendanceQuery{Filter: "smith", Now: now}, ExportAttendanceDeps{Ledger: a.Ledger, Session: a.Session})
	if err != nil {
		t.Fatalf("QueryExportAttendance: %v", err)
	}
	if res.Filename != "attendance-2025-11-12.xlsx" || res.Rows != 1 {
		t.Errorf("result = %s rows=%d", res.Filename, res.Rows)
	}

	f, err := excelize.OpenReader(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(ExportSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	want := [][]string{
		{"Name", "Role", "Subject", "Semester", "Date", "Time", "Status"},
		{"John Smith", "Student", "Mathematics", "1", "2025-11-11", "09:15:23", "Present"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

// TestQueryExportAttendance_Forbidden rejects students.
func TestQueryExportAttendance_Forbidden(t *testing.T) {
	a := newApp(t, "student1", "stud123")
	if _, err := QueryExportAttendance(context.Background(), ExportAttendanceQuery{}, ExportAttendanceDeps{Ledger: a.Ledger, Session: a.Session}); !errors.Is(err, session.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}
