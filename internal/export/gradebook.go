// Package export renders reports into spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/school-ledger-api/internal/dto"
)

const (
	gradebookSheet = "Gradebook"
	unitsSheet     = "Units"
	maxColumnWidth = 40.0
	minColumnWidth = 10.0
)

// WriteGradebook renders the report as an xlsx workbook with one row per student
// and a second sheet describing the score units.
func WriteGradebook(w io.Writer, report dto.GradebookResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gradebookSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"No", "Student number", "Name"}
	for _, unit := range report.Units {
		header = append(header, fmt.Sprintf("%s (/%g)", unit.Name, unit.MaxScore))
	}
	header = append(header, "Total %", "Letter", "Grade point", "Attendance %")

	rows := make([][]interface{}, 0, len(report.Rows)+1)
	rows = append(rows, header)
	for i, row := range report.Rows {
		line := []interface{}{i + 1, row.StudentNumber, row.Name}
		for _, unit := range report.Units {
			if score, ok := row.Scores[unit.ID]; ok {
				line = append(line, score)
			} else {
				line = append(line, "")
			}
		}
		line = append(line, row.Percentage, row.Letter, row.GradePoint, row.Attendance.Percentage)
		rows = append(rows, line)
	}
	if err := writeSheet(f, gradebookSheet, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(unitsSheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	unitRows := [][]interface{}{{"Unit", "Max score", "Weight %", "Note"}}
	for _, unit := range report.Units {
		unitRows = append(unitRows, []interface{}{unit.Name, unit.MaxScore, unit.Weight, unit.Note})
	}
	unitRows = append(unitRows, []interface{}{"Total", "", report.TotalWeight, weightNote(report)})
	if err := writeSheet(f, unitsSheet, unitRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func weightNote(report dto.GradebookResponse) string {
	if report.WeightWarning {
		return "weights do not add up to 100"
	}
	return ""
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("set row %d on %s: %w", r+1, sheet, err)
		}
	}

	columns := len(rows[0])
	last, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", last+"1", bold)
	}
	_ = f.AutoFilter(sheet, "A1:"+last+"1", nil)

	for c := 0; c < columns; c++ {
		width := minColumnWidth
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			if w := float64(len([]rune(fmt.Sprint(row[c])))) * 1.1; w > width {
				width = w
			}
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		name, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(sheet, name, name, width)
	}
	return nil
}

var invalidFileChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// GradebookFilename builds the download name for a class gradebook.
func GradebookFilename(report dto.GradebookResponse) string {
	name := strings.TrimSpace(report.ClassCode)
	if name == "" {
		name = report.ClassID
	}
	name = invalidFileChars.ReplaceAllString(strings.Join(strings.Fields(name), "_"), "_")
	return fmt.Sprintf("gradebook_%s_%s.xlsx", name, report.GeneratedAt.Format("2006-01-02"))
}
