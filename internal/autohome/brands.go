package autohome

import (
	"context"
	"fmt"
	"math"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"carcatalog/internal/catalog"
	"carcatalog/internal/components/telemetry"

	"github.com/titanous/json5"
	"golang.org/x/net/html/charset"
)

// the brand list is an array literal assigned to a global in the compare script
var brandListRegex = regexp.MustCompile(`(?s)var\s+listCompare\$100\s*=\s*(\[.*?\]);`)

// FetchBrands downloads the brand script and extracts every well formed
// brand from it. Entries missing an integer id or a name are skipped.
func (c *Client) FetchBrands(ctx context.Context) ([]catalog.Brand, error) {
	ctx, span := tracer.Start(ctx, "client:FetchBrands")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.opts.BrandsURL)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTransport, err)
		c.tel.ReportBroken(report_client_fetch_brands, err)
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		err = fmt.Errorf("%w: %d", ErrHTTPStatus, res.StatusCode())
		c.tel.ReportBroken(report_client_fetch_brands, err, c.opts.BrandsURL)
		return nil, err
	}

	body, err := decodeBody(res.Body(), res.Header().Get("Content-Type"))
	if err != nil {
		err = fmt.Errorf("%w: decode charset: %w", ErrMalformed, err)
		c.tel.ReportBroken(report_client_fetch_brands, err)
		return nil, err
	}

	brands, err := parseBrandScript(body, c.tel)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_brands, err)
		return nil, err
	}
	c.tel.ReportCount(report_client_fetch_brands, int64(len(brands)))
	return brands, nil
}

// decodeBody converts the body to utf-8 when the content type declares another charset.
func decodeBody(body []byte, contentType string) ([]byte, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil
	}
	name, ok := params["charset"]
	if !ok {
		return body, nil
	}
	enc, canonical := charset.Lookup(name)
	if enc == nil || canonical == "utf-8" {
		return body, nil
	}
	return enc.NewDecoder().Bytes(body)
}

func parseBrandScript(script []byte, tel telemetry.API) ([]catalog.Brand, error) {
	groups := brandListRegex.FindSubmatch(script)
	if len(groups) < 2 {
		return nil, fmt.Errorf("%w: brand list variable", ErrExtraction)
	}

	var entries []any
	err := json5.Unmarshal(groups[1], &entries)
	if err != nil {
		return nil, fmt.Errorf("%w: brand list: %w", ErrMalformed, err)
	}

	brands := make([]catalog.Brand, 0, len(entries))
	for i, entry := range entries {
		brand, err := parseBrand(entry)
		if err != nil {
			tel.ReportWarning(report_client_fetch_brands, fmt.Errorf("skip brand %d: %w", i, err))
			continue
		}
		brands = append(brands, brand)
	}
	return brands, nil
}

func parseBrand(entry any) (catalog.Brand, error) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return catalog.Brand{}, fmt.Errorf("entry is %T, not an object", entry)
	}

	id, err := parseBrandID(obj["I"])
	if err != nil {
		return catalog.Brand{}, err
	}

	name, ok := obj["N"].(string)
	if !ok {
		return catalog.Brand{}, fmt.Errorf("name is %T, not a string", obj["N"])
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return catalog.Brand{}, fmt.Errorf("brand %d has an empty name", id)
	}

	return catalog.Brand{ID: id, Name: name}, nil
}

func parseBrandID(value any) (int, error) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("id %v is not an integer", v)
		}
		return int(v), nil
	case string:
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("id %q: %w", v, err)
		}
		return id, nil
	}
	return 0, fmt.Errorf("id is %T, not a number", value)
}
