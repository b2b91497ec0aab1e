package projections

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"classroll/internal/application/session"
	"classroll/internal/domain/account"
	"classroll/internal/domain/attendance"
)

// ExportSheet is the worksheet holding the exported records.
const ExportSheet = "Attendance"

// ExportContentType is the MIME type of the exported workbook.
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeader = []any{"Name", "Role", "Subject", "Semester", "Date", "Time", "Status"}

// ExportAttendanceQuery carries the name filter applied before export.
type ExportAttendanceQuery struct {
	Filter string
	Now    time.Time
}

// ExportAttendanceResult is an XLSX workbook ready to download.
type ExportAttendanceResult struct {
	Filename string
	Rows     int
	Data     []byte
}

// ExportAttendanceDeps holds dependencies for ExportAttendance.
type ExportAttendanceDeps struct {
	Ledger  LedgerLister
	Session session.Current
}

// QueryExportAttendance writes the filtered attendance list to a workbook,
// newest first, one record per row under a header row.
// PRE: The signed-in account is an Admin or Teacher
// POST: Rows equals the number of exported records
func QueryExportAttendance(_ context.Context, query ExportAttendanceQuery, deps ExportAttendanceDeps) (ExportAttendanceResult, error) {
	if _, err := session.Require(deps.Session, account.Role.CanEditAttendance); err != nil {
		return ExportAttendanceResult{}, err
	}

	records := deps.Ledger.List(query.Filter)
	data, err := buildWorkbook(records)
	if err != nil {
		return ExportAttendanceResult{}, fmt.Errorf("export attendance: %w", err)
	}

	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}
	return ExportAttendanceResult{
		Filename: fmt.Sprintf("attendance-%s.xlsx", now.Format(attendance.DateLayout)),
		Rows:     len(records),
		Data:     data,
	}, nil
}

func buildWorkbook(records []attendance.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportHeader))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ExportSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{r.Name, string(r.Role), r.Subject, r.Semester, r.Date, r.Time, string(r.Status)}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(ExportSheet, "A", lastCol, 18); err != nil {
		return nil, err
	}
	if err := f.SetPanes(ExportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
