// Package autohome is a client for the three autohome endpoints the crawler
// depends on: the brand list script, the paginated series listing and the
// series configuration (fuel type) api.
package autohome

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"carcatalog/internal/components/telemetry"
	"carcatalog/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch_brands     = "client.fetch-brands"
	report_client_fetch_series     = "client.fetch-series"
	report_client_fetch_fuel_types = "client.fetch-fuel-types"
)

var (
	ErrTransport  = errors.New("transport failure")
	ErrHTTPStatus = errors.New("unexpected http status")
	ErrExtraction = errors.New("expected pattern not found")
	ErrRedirected = errors.New("listing redirected to another sale status")
	ErrMalformed  = errors.New("malformed response")
)

var tracer = otel.Tracer("carcatalog/autohome")

// upper bound on the pages walked per brand and status
const maxListingPages = 10

type Options struct {
	// BrandsURL is the javascript asset that embeds the brand list.
	BrandsURL string
	// SiteURL is the origin serving the series listing data routes.
	SiteURL string
	// BuildID is the Next.js build id in the listing data route.
	BuildID string
	// ParamConfURL is the series configuration endpoint.
	ParamConfURL string
	Origin       string
	Referer      string
	UserAgent    string

	Timeout time.Duration
	// RequestsPerSecond caps the request rate over all endpoints, 0 disables the cap.
	RequestsPerSecond float64

	// MaxPages bounds a single series listing walk, it is clamped to 10.
	MaxPages     int
	PageDelayMin time.Duration
	PageDelayMax time.Duration
	// Energy is the listing `energyId` filter, "x" means all.
	Energy string

	// HttpDump receives every request/response pair, it may be nil.
	HttpDump restyutil.InstrumentOutput
}

type Client struct {
	http *resty.Client
	opts Options
	tel  telemetry.API

	fuelCache *ristretto.Cache[int64, []string]

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	tel = telemetry.NewScopedAPI("autohome", tel)

	if opts.MaxPages <= 0 || opts.MaxPages > maxListingPages {
		opts.MaxPages = maxListingPages
	}
	if opts.Energy == "" {
		opts.Energy = "x"
	}
	if opts.PageDelayMax < opts.PageDelayMin {
		opts.PageDelayMax = opts.PageDelayMin
	}

	httpClient := resty.New()
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		httpClient.SetHeader("User-Agent", opts.UserAgent)
	}
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	if opts.RequestsPerSecond > 0 {
		// burst of 1 keeps requests evenly spaced
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}
	restyutil.InstrumentClient(httpClient, tracer, opts.HttpDump)

	fuelCache, err := ristretto.NewCache(&ristretto.Config[int64, []string]{
		NumCounters: 1e5,
		MaxCost:     1 << 14,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("fuel type cache: %w", err)
	}

	c := &Client{
		http:      httpClient,
		opts:      opts,
		tel:       tel,
		fuelCache: fuelCache,
		sleep:     sleepContext,
	}
	c.jitter = c.pageDelay
	return c, nil
}

// Close releases the client's cache.
func (c *Client) Close() {
	c.fuelCache.Close()
}

// pageDelay picks a uniformly random pause in [PageDelayMin, PageDelayMax].
func (c *Client) pageDelay() time.Duration {
	span := c.opts.PageDelayMax - c.opts.PageDelayMin
	if span <= 0 {
		return c.opts.PageDelayMin
	}
	return c.opts.PageDelayMin + rand.N(span+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
