package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/models"
)

func sampleReport() dto.GradebookResponse {
	return dto.GradebookResponse{
		ClassID:   "c1",
		ClassCode: "MTH 101",
		ClassName: "Mathematics",
		Units: []models.ScoreUnit{
			{Meta: models.Meta{ID: "u1"}, Name: "Quiz", MaxScore: 20, Weight: 40},
			{Meta: models.Meta{ID: "u2"}, Name: "Exam", MaxScore: 100, Weight: 40},
		},
		TotalWeight:   80,
		WeightWarning: true,
		Rows: []dto.GradebookRow{
			{
				StudentID:     "s1",
				StudentNumber: "1001",
				Name:          "Ayu",
				Scores:        map[string]float64{"u1": 18, "u2": 80},
				Percentage:    68,
				Letter:        "C+",
				GradePoint:    2.5,
				Attendance:    models.AttendanceStats{Percentage: 100, Present: 1, Total: 1},
			},
			{
				StudentID:     "s2",
				StudentNumber: "1002",
				Name:          "Budi",
				Scores:        map[string]float64{"u2": 40},
				Percentage:    16,
				Letter:        "F",
			},
		},
		GeneratedAt: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
	}
}

func TestWriteGradebook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGradebook(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Gradebook", "Units"}, f.GetSheetList())

	rows, err := f.GetRows("Gradebook")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"No", "Student number", "Name", "Quiz (/20)", "Exam (/100)", "Total %", "Letter", "Grade point", "Attendance %"}, rows[0])
	require.Equal(t, "1001", rows[1][1])
	require.Equal(t, "18", rows[1][3])
	require.Equal(t, "C+", rows[1][6])
	require.Equal(t, "", rows[2][3])

	units, err := f.GetRows("Units")
	require.NoError(t, err)
	require.Len(t, units, 4)
	require.Equal(t, "weights do not add up to 100", units[3][3])
}

func TestGradebookFilename(t *testing.T) {
	require.Equal(t, "gradebook_MTH_101_2024-03-04.xlsx", GradebookFilename(sampleReport()))

	report := sampleReport()
	report.ClassCode = ""
	require.Equal(t, "gradebook_c1_2024-03-04.xlsx", GradebookFilename(report))
}
