package filter

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteXLSX renders the metadata table as a single-sheet workbook, for the
// curation spreadsheets the wet-lab side works from.
func (t *MetadataTable) WriteXLSX(path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("metadata")
	if err != nil {
		return eris.Wrap(err, "metadata: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range t.Columns() {
		header.AddCell().Value = col
	}

	for _, m := range t.rows {
		row := sheet.AddRow()
		for _, cell := range t.row(m) {
			row.AddCell().Value = cell
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "metadata: save %s", path)
	}
	return nil
}
