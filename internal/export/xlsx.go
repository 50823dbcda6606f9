package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"carcatalog/internal/catalog"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

var columns = []any{
	"brand_id",
	"brand_name",
	"factory_name",
	"series_id",
	"series_name",
	"price_range",
	"level",
	"status",
	"fuel_types",
}

// Filename is `<prefix>_YYYYMMDD_HHMMSS.xlsx` inside `dir`.
func Filename(dir, prefix string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", prefix, at.Format("20060102_150405")))
}

func seriesRow(s catalog.Series) []any {
	return []any{
		s.BrandID,
		s.BrandName,
		s.FactoryName,
		s.SeriesID,
		s.SeriesName,
		s.PriceRange,
		s.Level,
		s.Status.Label(),
		s.FuelTypeList(),
	}
}

// WriteXLSX writes one header row followed by one row per series.
func WriteXLSX(path string, records []catalog.Series) error {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	err = f.SetSheetRow(sheetName, "A1", &columns)
	if err != nil {
		return err
	}
	for i, s := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := seriesRow(s)
		err = f.SetSheetRow(sheetName, cell, &row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	err = f.SaveAs(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
