package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"meetscribe/internal/app/model"
	"meetscribe/internal/app/testutil"
)

func TestToExcelWritesSummaryAndTranscriptSheets(t *testing.T) {
	m1 := testutil.NewTestMeeting("Roadmap Review")
	m1.ID = "id-1"
	m2 := testutil.NewTestMeeting("Empty One")
	m2.ID = "id-2"
	m2.Status = model.StatusRecorded
	m2.Utterances = nil

	out := filepath.Join(t.TempDir(), "meetings.xlsx")
	require.NoError(t, ToExcel([]*model.Meeting{m1, m2}, out))

	file, err := xlsx.OpenFile(out)
	require.NoError(t, err)

	// Summary sheet plus one transcript sheet for the meeting with utterances.
	require.Len(t, file.Sheets, 2)
	summary := file.Sheets[0]
	assert.Equal(t, "Meetings", summary.Name)
	require.Len(t, summary.Rows, 3)
	assert.Equal(t, "id-1", summary.Rows[1].Cells[0].Value)

	transcript := file.Sheets[1]
	require.Len(t, transcript.Rows, len(m1.Utterances)+1)
	assert.Equal(t, "Alice", transcript.Rows[1].Cells[2].Value, "speaker names are resolved")
}

func TestSheetNameStaysWithinLimit(t *testing.T) {
	m := testutil.NewTestMeeting("A very long meeting name that would overflow the sheet title limit")
	name := sheetName(m, 0)
	assert.LessOrEqual(t, len(name), 31)
	assert.Contains(t, name, "(1)")
}
