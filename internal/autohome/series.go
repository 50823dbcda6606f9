package autohome

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"carcatalog/internal/catalog"
	"carcatalog/lib/restyutil"

	"go.opentelemetry.io/otel/attribute"
)

// page size assumed when a listing page omits it
const defaultPageSize = 15

// looseString accepts a json string, number or null and keeps its text.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		err := json.Unmarshal(data, &str)
		if err != nil {
			return err
		}
		*s = looseString(str)
		return nil
	}
	*s = looseString(data)
	return nil
}

// seriesID returns the integer id, 0 when absent or not an integer.
func (s looseString) seriesID() int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(string(s)), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

type seriesEntry struct {
	ID       looseString `json:"seriesid"`
	Name     string      `json:"seriesname"`
	MinPrice looseString `json:"seriesminprice"`
	MaxPrice looseString `json:"seriesmaxprice"`
	Level    string      `json:"levelname"`
}

type factoryGroup struct {
	Name   string        `json:"name"`
	Series []seriesEntry `json:"seriesgrouplist"`
}

type seriesList struct {
	Factories []factoryGroup `json:"fctinfo"`
	Total     *int           `json:"total"`
	Size      *int           `json:"size"`
}

type listingPage struct {
	PageProps struct {
		Redirect   string      `json:"__N_REDIRECT"`
		SeriesList *seriesList `json:"seriesList"`
	} `json:"pageProps"`
}

func (l *seriesList) total() int {
	if l.Total == nil {
		return 0
	}
	return *l.Total
}

func (l *seriesList) size() int {
	if l.Size == nil {
		return defaultPageSize
	}
	return *l.Size
}

// matches the sale status segment of `brand-<brand>-<factory>-<status>-`
var listingStatusRegex = regexp.MustCompile(`brand-(\d+)-([^-/]+)-(\d+)-`)

// statusRedirected reports whether the url the listing was served from
// belongs to a different sale status than `want`.
func statusRedirected(finalURL string, want catalog.Status) bool {
	if !strings.Contains(finalURL, "brand-") {
		return false
	}
	groups := listingStatusRegex.FindStringSubmatch(finalURL)
	if len(groups) < 4 {
		return !strings.Contains(finalURL, fmt.Sprintf("-%d-", want))
	}
	got, err := strconv.Atoi(groups[3])
	if err != nil {
		return true
	}
	return got != int(want)
}

func (c *Client) listingURL(brandID int, status catalog.Status, page int) string {
	return fmt.Sprintf(
		"%s/_next/data/%s/cars/brand-%d-x-%d-%s-x-%d.html.json",
		strings.TrimSuffix(c.opts.SiteURL, "/"),
		c.opts.BuildID,
		brandID, status, c.opts.Energy, page,
	)
}

func (c *Client) fetchListingPage(ctx context.Context, brandID int, status catalog.Status, page int) (*seriesList, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"brandId":   strconv.Itoa(brandID),
			"factoryId": "x",
			"sellingId": strconv.Itoa(int(status)),
			"energyId":  c.opts.Energy,
			"sortId":    "x",
			"pageIdx":   strconv.Itoa(page),
		}).
		Get(c.listingURL(brandID, status, page))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	finalURL := restyutil.FinalURL(res)
	if statusRedirected(finalURL, status) {
		return nil, fmt.Errorf("%w: %s", ErrRedirected, finalURL)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, res.StatusCode())
	}

	var listing listingPage
	err = json.Unmarshal(res.Body(), &listing)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if listing.PageProps.Redirect != "" {
		return nil, fmt.Errorf("%w: %s", ErrRedirected, listing.PageProps.Redirect)
	}
	if listing.PageProps.SeriesList == nil {
		return nil, fmt.Errorf("%w: missing seriesList", ErrMalformed)
	}
	return listing.PageProps.SeriesList, nil
}

// FetchSeries walks the listing pages of a brand in one sale status.
//
// The walk ends when the reported total is covered, after MaxPages pages, or
// on the first failure. Series collected before a failure are returned along
// with the error. A listing that redirects to another sale status means the
// brand has no series in `status`, that returns no series and ErrRedirected.
func (c *Client) FetchSeries(ctx context.Context, brand catalog.Brand, status catalog.Status) ([]catalog.Series, error) {
	ctx, span := tracer.Start(ctx, "client:FetchSeries")
	defer span.End()
	span.SetAttributes(
		attribute.Int("brand_id", brand.ID),
		attribute.String("status", status.String()),
	)

	var result []catalog.Series
	seen := map[int64]struct{}{}
	// the total reported by the first page, -1 when it was not reported
	limit := -1

	for page := 1; page <= c.opts.MaxPages; page++ {
		c.tel.ReportDebug("fetch series page", brand.ID, brand.Name, status.String(), page)

		list, err := c.fetchListingPage(ctx, brand.ID, status, page)
		if errors.Is(err, ErrRedirected) {
			c.tel.ReportDebug("brand has no series in status", brand.Name, status.String(), err)
			return nil, err
		}
		if err != nil {
			c.tel.ReportBroken(report_client_fetch_series, err, brand.ID, status.String(), page)
			return result, err
		}

		if page == 1 && list.Total != nil {
			limit = *list.Total
		}

	factories:
		for _, factory := range list.Factories {
			for _, entry := range factory.Series {
				if limit >= 0 && len(result) >= limit {
					break factories
				}
				id := entry.ID.seriesID()
				if id == 0 {
					continue
				}
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}

				result = append(result, catalog.Series{
					BrandID:     brand.ID,
					BrandName:   brand.Name,
					FactoryName: factory.Name,
					SeriesID:    id,
					SeriesName:  entry.Name,
					PriceRange:  fmt.Sprintf("%s-%s", entry.MinPrice, entry.MaxPrice),
					Level:       entry.Level,
					Status:      status,
				})
			}
		}

		if page*list.size() >= list.total() {
			return result, nil
		}
		if page == c.opts.MaxPages {
			break
		}

		err = c.sleep(ctx, c.jitter())
		if err != nil {
			return result, err
		}
	}

	c.tel.ReportWarning(report_client_fetch_series, "page limit reached", brand.ID, status.String(), c.opts.MaxPages)
	return result, nil
}
