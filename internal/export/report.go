package export

import (
	"fmt"
	"io"

	"carcatalog/internal/catalog"

	"github.com/jedib0t/go-pretty/v6/table"
)

type FuelCount struct {
	Label string
	Count int
}

// Report describes a single persisted snapshot.
type Report struct {
	Filename string
	Before   int
	After    int
	// OnSale and Discontinued count the deduplicated records.
	OnSale       int
	Discontinued int
	// Fuel tallies every label over the records before deduplication, in
	// order of first appearance. A series counts once per label it has.
	Fuel []FuelCount
}

func NewReport(filename string, records, deduped []catalog.Series) Report {
	report := Report{
		Filename: filename,
		Before:   len(records),
		After:    len(deduped),
	}
	for _, s := range deduped {
		switch s.Status {
		case catalog.StatusOnSale:
			report.OnSale++
		case catalog.StatusDiscontinued:
			report.Discontinued++
		}
	}

	index := map[string]int{}
	for _, s := range records {
		for _, label := range s.FuelTypes {
			i, ok := index[label]
			if !ok {
				i = len(report.Fuel)
				index[label] = i
				report.Fuel = append(report.Fuel, FuelCount{Label: label})
			}
			report.Fuel[i].Count++
		}
	}
	return report
}

func (r Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Saved %s", r.Filename))
	t.AppendRows([]table.Row{
		{"Records before dedup", r.Before},
		{"Records after dedup", r.After},
		{catalog.StatusOnSale.Label(), r.OnSale},
		{catalog.StatusDiscontinued.Label(), r.Discontinued},
	})
	t.AppendSeparator()
	for _, fc := range r.Fuel {
		t.AppendRow(table.Row{fc.Label, fc.Count})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
