package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/dto"
)

func TestParseScoreCSV(t *testing.T) {
	rows, err := parseScoreCSV([]byte("student_number,score\n1001, 18\n1002,abc\n1003\n"))
	require.NoError(t, err)
	require.Equal(t, []dto.ScoreImportRow{
		{Line: 2, StudentNumber: "1001", Score: "18"},
		{Line: 3, StudentNumber: "1002", Score: "abc"},
		{Line: 4, StudentNumber: "1003", Score: ""},
	}, rows)

	rows, err = parseScoreCSV([]byte("1001,18\n"))
	require.NoError(t, err)
	require.Equal(t, []dto.ScoreImportRow{{Line: 1, StudentNumber: "1001", Score: "18"}}, rows)

	_, err = parseScoreCSV([]byte("  \n"))
	require.Error(t, err)

	_, err = parseScoreCSV([]byte("1001,\"18\n"))
	require.Error(t, err)
}

func TestRawScore(t *testing.T) {
	require.Equal(t, "37.5", rawScore(37.5))
	require.Equal(t, "abc", rawScore("abc"))
	require.Equal(t, "", rawScore(nil))
	require.Equal(t, "true", rawScore(true))
}
