package output

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/use-agent/mapscout/models"
)

// XLSXSink writes one spreadsheet file per query under Dir.
type XLSXSink struct {
	Dir string
}

func (s *XLSXSink) Write(query string, batch models.RecordBatch) error {
	if err := ensureDir(s.Dir); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range batch {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, recordRow(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	path := filepath.Join(s.Dir, BatchName(query)+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// recordRow keeps native cell types (numbers stay numbers) and leaves
// absent optional fields as empty cells.
func recordRow(rec models.PlaceRecord) *[]interface{} {
	cells := []interface{}{
		rec.Name,
		rec.Address,
		rec.Website,
		rec.PhoneNumber,
		nil, nil, nil, nil,
	}
	if rec.ReviewsCount != nil {
		cells[4] = *rec.ReviewsCount
	}
	if rec.ReviewsAverage != nil {
		cells[5] = *rec.ReviewsAverage
	}
	if rec.Latitude != nil {
		cells[6] = *rec.Latitude
	}
	if rec.Longitude != nil {
		cells[7] = *rec.Longitude
	}
	return &cells
}
