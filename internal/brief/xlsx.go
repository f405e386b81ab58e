package brief

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/patent-scout/internal/model"
)

// SummaryHeader is the first row of the summary workbook.
var SummaryHeader = []string{"Rank", "Title", "Industry", "Priority", "Label", "Companies", "Brief", "Run"}

// XLSXSink writes a one-sheet workbook summarizing the run's briefs.
type XLSXSink struct {
	Path string
}

// Name implements Sink.
func (XLSXSink) Name() string { return "xlsx" }

// Deliver implements Sink.
func (x XLSXSink) Deliver(_ context.Context, run *model.Run, briefs []model.Brief) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Opportunities")
	if err != nil {
		return eris.Wrap(err, "brief: add sheet")
	}
	addRow(sheet, SummaryHeader...)

	runID := ""
	if run != nil {
		runID = run.ID
	}
	for i, b := range ByPriority(briefs) {
		row := sheet.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(b.Title)
		row.AddCell().SetString(b.Industry)
		row.AddCell().SetFloatWithFormat(b.Priority, "0.00")
		row.AddCell().SetString(b.PriorityLabel)
		row.AddCell().SetInt(b.CompanyCount)
		row.AddCell().SetString(b.Path)
		row.AddCell().SetString(runID)
	}

	if dir := filepath.Dir(x.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "brief: create xlsx dir")
		}
	}
	if err := f.Save(x.Path); err != nil {
		return eris.Wrap(err, "brief: save xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// ReadSummary reads back the workbook rows as strings, header included.
func ReadSummary(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "brief: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("brief: xlsx has no sheets")
	}
	var rows [][]string
	for _, r := range f.Sheets[0].Rows {
		cells := make([]string, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = c.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
