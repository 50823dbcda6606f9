package autohome

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"carcatalog/internal/catalog"

	"go.opentelemetry.io/otel/attribute"
)

// MatchFuelTypes returns every label of catalog.FuelTypes contained in
// `text`, in catalog order.
//
// This is a substring heuristic over the whole configuration payload, not a
// field lookup: a label appearing anywhere in the payload counts.
func MatchFuelTypes(text string) []string {
	var found []string
	for _, label := range catalog.FuelTypes {
		if strings.Contains(text, label) {
			found = append(found, label)
		}
	}
	return found
}

// FetchFuelTypes resolves the fuel types of a series from its configuration.
// It never fails: any error, or a payload without a known label, yields
// []string{catalog.FuelUnknown}.
func (c *Client) FetchFuelTypes(ctx context.Context, seriesID int64) []string {
	if cached, ok := c.fuelCache.Get(seriesID); ok {
		return slices.Clone(cached)
	}

	found, err := c.fetchFuelTypes(ctx, seriesID)
	if err != nil {
		c.tel.ReportWarning(report_client_fetch_fuel_types, err, seriesID)
		return []string{catalog.FuelUnknown}
	}
	if len(found) == 0 {
		c.tel.ReportDebug("no fuel type label in configuration", seriesID)
		return []string{catalog.FuelUnknown}
	}

	c.fuelCache.Set(seriesID, found, 1)
	return slices.Clone(found)
}

func (c *Client) fetchFuelTypes(ctx context.Context, seriesID int64) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchFuelTypes")
	defer span.End()
	span.SetAttributes(attribute.Int64("series_id", seriesID))

	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"mode":     "1",
			"site":     "1",
			"seriesid": strconv.FormatInt(seriesID, 10),
		}).
		SetHeader("Accept", "application/json").
		SetHeader("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	if c.opts.Origin != "" {
		req.SetHeader("Origin", c.opts.Origin)
	}
	if c.opts.Referer != "" {
		req.SetHeader("Referer", c.opts.Referer)
	}

	res, err := req.Get(c.opts.ParamConfURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, res.StatusCode())
	}

	text, err := configurationText(res.Body())
	if err != nil {
		return nil, err
	}
	return MatchFuelTypes(text), nil
}

// configurationText validates the response envelope and re-serializes the
// payload so that escaped unicode in the response body is searchable.
func configurationText(body []byte) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload map[string]any
	err := decoder.Decode(&payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	code, ok := payload["returncode"].(json.Number)
	if !ok {
		return "", fmt.Errorf("%w: missing returncode", ErrMalformed)
	}
	if code.String() != "0" {
		return "", fmt.Errorf("%w: returncode %s", ErrMalformed, code)
	}

	var out bytes.Buffer
	encoder := json.NewEncoder(&out)
	encoder.SetEscapeHTML(false)
	err = encoder.Encode(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return out.String(), nil
}
