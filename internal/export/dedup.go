package export

import "carcatalog/internal/catalog"

// Dedup keeps the first occurrence of every series id, order is preserved.
func Dedup(records []catalog.Series) []catalog.Series {
	seen := make(map[int64]struct{}, len(records))
	result := make([]catalog.Series, 0, len(records))
	for _, s := range records {
		if _, ok := seen[s.SeriesID]; ok {
			continue
		}
		seen[s.SeriesID] = struct{}{}
		result = append(result, s)
	}
	return result
}
