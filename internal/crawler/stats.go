package crawler

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Stats summarizes a run. Series counts cover the working set before
// deduplication.
type Stats struct {
	// TotalBrands is the size of the brand list before filtering.
	TotalBrands  int
	Processed    int
	// Completed counts processed brands whose series were all fetched.
	Completed    int
	OnSale       int
	Discontinued int
	Total        int
	// Errors counts brands whose series could not be fully fetched.
	Errors      int
	Interrupted bool
}

func (s Stats) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Crawl statistics")
	t.AppendRows([]table.Row{
		{"Total brands", s.TotalBrands},
		{"Processed brands", s.Processed},
		{"Completed brands", s.Completed},
		{"On-sale series", s.OnSale},
		{"Discontinued series", s.Discontinued},
		{"Total series", s.Total},
		{"Errors", s.Errors},
	})
	if s.Interrupted {
		t.AppendRow(table.Row{"Interrupted", "yes"})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
