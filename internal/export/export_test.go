package export

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"carcatalog/internal/catalog"
	"carcatalog/internal/components/chrono"
	"carcatalog/internal/components/telemetry"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixtureRecords() []catalog.Series {
	return []catalog.Series{
		{BrandID: 1, BrandName: "X", FactoryName: "F", SeriesID: 100, SeriesName: "S1", PriceRange: "10-20", Level: "SUV", Status: catalog.StatusOnSale, FuelTypes: []string{"纯电动", "油电混合"}},
		{BrandID: 1, BrandName: "X", FactoryName: "F", SeriesID: 101, SeriesName: "S2", PriceRange: "-", Status: catalog.StatusDiscontinued, FuelTypes: []string{"汽油"}},
		// seen again as discontinued, the on-sale record wins
		{BrandID: 1, BrandName: "X", FactoryName: "F", SeriesID: 100, SeriesName: "S1", PriceRange: "10-20", Level: "SUV", Status: catalog.StatusDiscontinued, FuelTypes: []string{"纯电动"}},
		{BrandID: 2, BrandName: "Y", FactoryName: "G", SeriesID: 200, SeriesName: "S3", PriceRange: "5-8", Status: catalog.StatusOnSale, FuelTypes: []string{catalog.FuelUnknown}},
	}
}

func TestDedup(t *testing.T) {
	records := fixtureRecords()

	once := Dedup(records)
	require.Len(t, once, 3)
	require.Equal(t, int64(100), once[0].SeriesID)
	require.Equal(t, catalog.StatusOnSale, once[0].Status)
	require.Equal(t, int64(101), once[1].SeriesID)
	require.Equal(t, int64(200), once[2].SeriesID)

	require.Equal(t, once, Dedup(once))
	require.Len(t, records, 4)
}

func TestNewReport(t *testing.T) {
	records := fixtureRecords()
	report := NewReport("out.xlsx", records, Dedup(records))

	require.Equal(t, 4, report.Before)
	require.Equal(t, 3, report.After)
	require.Equal(t, 2, report.OnSale)
	require.Equal(t, 1, report.Discontinued)
	require.Equal(t, []FuelCount{
		{Label: "纯电动", Count: 2},
		{Label: "油电混合", Count: 1},
		{Label: "汽油", Count: 1},
		{Label: catalog.FuelUnknown, Count: 1},
	}, report.Fuel)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 5, 7, 9, 3, 1, 0, time.UTC)
	require.Equal(t, filepath.Join("out", "car_data_20240507_090301.xlsx"), Filename("out", "car_data", at))
}

type fakeMirror struct {
	saved [][]catalog.Series
	err   error
}

func (m *fakeMirror) SaveSeries(ctx context.Context, records []catalog.Series) error {
	m.saved = append(m.saved, records)
	return m.err
}

func TestPersisterSave(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 5, 7, 9, 3, 1, 0, time.UTC)
	mirror := &fakeMirror{err: errors.New("locked")}
	rec := telemetry.NewRecorder()
	var out bytes.Buffer

	persister := NewPersister(Options{
		Dir:    filepath.Join(dir, "nested"),
		Prefix: "car_data",
		Out:    &out,
		Mirror: mirror,
	}, chrono.FixedImpl{At: at}, rec)

	report, err := persister.Save(context.Background(), fixtureRecords())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "nested", "car_data_20240507_090301.xlsx"), report.Filename)
	require.Contains(t, out.String(), "Records after dedup")
	require.Contains(t, out.String(), "油电混合")

	require.Len(t, mirror.saved, 1)
	require.Len(t, mirror.saved[0], 3)
	require.Len(t, rec.Warnings(report_persister_mirror), 1)

	f, err := excelize.OpenFile(report.Filename)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, []string{
		"brand_id", "brand_name", "factory_name", "series_id", "series_name",
		"price_range", "level", "status", "fuel_types",
	}, rows[0])
	require.Equal(t, []string{"1", "X", "F", "100", "S1", "10-20", "SUV", "在售", "纯电动, 油电混合"}, rows[1])
	require.Equal(t, "停售", rows[2][7])
	require.Equal(t, "200", rows[3][3])

	// persisting the same working set again yields the same row count
	second, err := persister.Save(context.Background(), fixtureRecords())
	require.NoError(t, err)
	require.Equal(t, report.After, second.After)
}

func TestPersisterEmpty(t *testing.T) {
	dir := t.TempDir()
	persister := NewPersister(Options{Dir: dir}, chrono.FixedImpl{At: time.Now()}, telemetry.NewRecorder())

	report, err := persister.Save(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, report)

	matches, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	require.NoError(t, err)
	require.Empty(t, matches)
}
