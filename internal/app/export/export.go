package export

import (
	"fmt"

	"github.com/tealeg/xlsx"

	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/model"
	"meetscribe/internal/app/speaker"
	"meetscribe/internal/app/store"
)

// ToExcel writes one sheet per meeting: a summary header block followed by
// the resolved utterances, one per row.
func ToExcel(meetings []*model.Meeting, outputFilePath string) error {
	file := xlsx.NewFile()

	summary, err := file.AddSheet("Meetings")
	if err != nil {
		return errors.Wrap(err, "adding summary sheet")
	}
	headerRow := summary.AddRow()
	headerRow.AddCell().Value = "ID"
	headerRow.AddCell().Value = "Name"
	headerRow.AddCell().Value = "Created"
	headerRow.AddCell().Value = "Duration"
	headerRow.AddCell().Value = "Status"
	headerRow.AddCell().Value = "Error"

	for i, m := range meetings {
		row := summary.AddRow()
		row.AddCell().Value = m.ID
		row.AddCell().Value = m.Name
		row.AddCell().Value = m.CreatedAt.Format("2006-01-02 15:04")
		row.AddCell().Value = store.FormatTimestamp(m.DurationMs)
		row.AddCell().Value = string(m.Status)
		row.AddCell().Value = m.Error

		if len(m.Utterances) == 0 {
			continue
		}
		sheet, err := file.AddSheet(sheetName(m, i))
		if err != nil {
			return errors.Wrapf(err, "adding sheet for meeting %s", m.ID)
		}
		th := sheet.AddRow()
		th.AddCell().Value = "Start"
		th.AddCell().Value = "End"
		th.AddCell().Value = "Speaker"
		th.AddCell().Value = "Text"
		th.AddCell().Value = "Confidence"
		for _, u := range speaker.Resolve(m.Utterances, m.SpeakerMap) {
			row := sheet.AddRow()
			row.AddCell().Value = store.FormatTimestamp(u.Start)
			row.AddCell().Value = store.FormatTimestamp(u.End)
			row.AddCell().Value = u.SpeakerName
			row.AddCell().Value = u.Text
			row.AddCell().Value = fmt.Sprintf("%.2f", u.Confidence)
		}
	}

	if err := file.Save(outputFilePath); err != nil {
		return errors.Wrapf(err, "saving %s", outputFilePath)
	}
	return nil
}

// sheetName keeps sheet titles unique and under the xlsx 31-character limit.
func sheetName(m *model.Meeting, i int) string {
	name := m.Name
	if name == "" {
		name = "meeting"
	}
	suffix := fmt.Sprintf(" (%d)", i+1)
	if len(name)+len(suffix) > 31 {
		name = name[:31-len(suffix)]
	}
	return name + suffix
}
