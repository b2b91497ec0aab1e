package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"classroll/internal/application/orchestrators"
	"classroll/internal/application/projections"
	"classroll/internal/domain/attendance"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type editAttendanceRequest struct {
	Subject  string            `json:"subject"`
	Semester int               `json:"semester"`
	Status   attendance.Status `json:"status"`
}

type checkInRequest struct {
	Subject  string `json:"subject"`
	Semester int    `json:"semester"`
}

// handleAttendanceList handles GET /api/attendance?q=.
func (s *server) handleAttendanceList(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryAttendanceList(r.Context(), projections.AttendanceListQuery{
		Filter: r.URL.Query().Get("q"),
	}, projections.AttendanceListDeps{Ledger: s.app.Ledger, Session: s.app.Session})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAttendanceEdit handles PUT /api/attendance/{id}.
func (s *server) handleAttendanceEdit(w http.ResponseWriter, r *http.Request) {
	var req editAttendanceRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := orchestrators.ExecuteEditAttendance(r.Context(), orchestrators.EditAttendanceInput{
		ID:       r.PathValue("id"),
		Subject:  req.Subject,
		Semester: req.Semester,
		Status:   req.Status,
	}, orchestrators.EditAttendanceDeps{Ledger: s.app.Ledger, Session: s.app.Session})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleCheckIn handles POST /api/checkin. The body is optional.
func (s *server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if r.ContentLength != 0 {
		if err := strictDecode(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	rec, err := orchestrators.ExecuteCheckIn(r.Context(), orchestrators.CheckInInput{
		Subject:  req.Subject,
		Semester: req.Semester,
	}, orchestrators.CheckInDeps{Ledger: s.app.Ledger, Session: s.app.Session, Now: s.now})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleAttendanceExport handles GET /api/attendance/export?q=.
func (s *server) handleAttendanceExport(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryExportAttendance(r.Context(), projections.ExportAttendanceQuery{
		Filter: r.URL.Query().Get("q"),
		Now:    s.now(),
	}, projections.ExportAttendanceDeps{Ledger: s.app.Ledger, Session: s.app.Session})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", projections.ExportContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

// handleStats handles GET /api/stats.
func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryDashboardStats(r.Context(), projections.DashboardStatsQuery{
		AsOf: s.now(),
	}, projections.DashboardStatsDeps{Ledger: s.app.Ledger, Session: s.app.Session})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleOverview handles GET /api/overview. Browsers asking for HTML get
// the rendered report instead of JSON.
func (s *server) handleOverview(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryStudentOverview(r.Context(), projections.StudentOverviewDeps{
		Ledger:  s.app.Ledger,
		Session: s.app.Session,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if !strings.Contains(r.Header.Get("Accept"), "text/html") {
		writeJSON(w, http.StatusOK, res)
		return
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(res.Markdown), &buf); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
