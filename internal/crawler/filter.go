package crawler

import (
	"errors"
	"fmt"
	"strconv"

	"carcatalog/internal/catalog"
	"carcatalog/lib/textutil"

	"github.com/antzucaro/matchr"
)

var ErrBrandNotFound = errors.New("brand not found")

// Filter narrows the brand list of a run. It is applied in field order:
// Brand replaces the list with the matching brand, Resume drops every brand
// before the first one named Resume, TestMode keeps the first brands only.
type Filter struct {
	// Brand is a brand id, or an exact brand name when it is not a number.
	Brand  string
	Resume string
	// TestMode caps the list at the runner's test limit.
	TestMode bool
}

func (f Filter) Apply(brands []catalog.Brand, testLimit int) ([]catalog.Brand, error) {
	if f.Brand != "" {
		var matched []catalog.Brand
		id, err := strconv.Atoi(f.Brand)
		for _, b := range brands {
			if err == nil && b.ID == id {
				matched = append(matched, b)
			}
			if err != nil && b.Name == f.Brand {
				matched = append(matched, b)
			}
		}
		if len(matched) == 0 {
			return nil, notFound(f.Brand, brands)
		}
		brands = matched
	}

	if f.Resume != "" {
		start := -1
		for i, b := range brands {
			if b.Name == f.Resume {
				start = i
				break
			}
		}
		if start < 0 {
			return nil, notFound(f.Resume, brands)
		}
		brands = brands[start:]
	}

	if f.TestMode && testLimit > 0 && len(brands) > testLimit {
		brands = brands[:testLimit]
	}
	return brands, nil
}

// notFound builds an ErrBrandNotFound suggesting the most similar name.
func notFound(name string, brands []catalog.Brand) error {
	best := ""
	bestSimilarity := 0.0
	normalized := textutil.NormalizeName(name)
	for _, b := range brands {
		similarity := matchr.JaroWinkler(normalized, textutil.NormalizeName(b.Name), false)
		if similarity > bestSimilarity {
			best = b.Name
			bestSimilarity = similarity
		}
	}
	if best == "" || bestSimilarity < 0.7 {
		return fmt.Errorf("%w: %s", ErrBrandNotFound, name)
	}
	return fmt.Errorf("%w: %s (did you mean %s?)", ErrBrandNotFound, name, best)
}
