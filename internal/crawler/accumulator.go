package crawler

import (
	"slices"

	"carcatalog/internal/catalog"
)

// Accumulator is the working set of one run: every series collected so far
// in collection order and the brands that were fully processed.
type Accumulator struct {
	records   []catalog.Series
	processed map[int]struct{}
}

func NewAccumulator() *Accumulator {
	return &Accumulator{processed: map[int]struct{}{}}
}

func (a *Accumulator) Add(series ...catalog.Series) {
	a.records = append(a.records, series...)
}

func (a *Accumulator) MarkProcessed(brandID int) {
	a.processed[brandID] = struct{}{}
}

// ProcessedBrands is the number of distinct brands marked processed, brands
// with a failed series fetch are not marked.
func (a *Accumulator) ProcessedBrands() int {
	return len(a.processed)
}

func (a *Accumulator) Len() int {
	return len(a.records)
}

// Records returns a copy of the collected series.
func (a *Accumulator) Records() []catalog.Series {
	return slices.Clone(a.records)
}

// CountStatus counts the collected series in `status`, duplicates included.
func (a *Accumulator) CountStatus(status catalog.Status) int {
	count := 0
	for _, s := range a.records {
		if s.Status == status {
			count++
		}
	}
	return count
}
