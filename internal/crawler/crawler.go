// Package crawler walks every brand of the catalog, collects the series of
// each one in both sale statuses along with their fuel types and hands the
// working set to a Persister periodically.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"carcatalog/internal/autohome"
	"carcatalog/internal/catalog"
	"carcatalog/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_runner_run           = "runner.run"
	report_runner_process_brand = "runner.process-brand"
	report_runner_flush         = "runner.flush"
	report_runner_publish       = "runner.publish"
)

var ErrNoBrands = errors.New("brand list is empty")

var (
	tracer = otel.Tracer("carcatalog/crawler")
	meter  = otel.Meter("carcatalog/crawler")
)

var brandsCounter, _ = meter.Int64Counter(
	"crawler.brands_processed",
	metric.WithDescription("Brands the crawler has walked."),
)
var seriesCounter, _ = meter.Int64Counter(
	"crawler.series_collected",
	metric.WithDescription("Series records appended to the working set."),
)
var brandErrorCounter, _ = meter.Int64Counter(
	"crawler.brand_errors",
	metric.WithDescription("Brands whose series could not be fully fetched."),
)

// Catalog is the data source walked by the Runner.
type Catalog interface {
	FetchBrands(ctx context.Context) ([]catalog.Brand, error)
	// FetchSeries returns what it collected even when it fails.
	FetchSeries(ctx context.Context, brand catalog.Brand, status catalog.Status) ([]catalog.Series, error)
	// FetchFuelTypes never fails, unresolved series get catalog.FuelUnknown.
	FetchFuelTypes(ctx context.Context, seriesID int64) []string
}

// Persister stores a snapshot of the working set, it receives the whole
// accumulator every time.
type Persister interface {
	Persist(ctx context.Context, records []catalog.Series) error
}

// Publisher receives the series of each brand once the brand is processed.
type Publisher interface {
	PublishBrand(ctx context.Context, brand catalog.Brand, series []catalog.Series) error
}

type Options struct {
	// SaveEvery triggers a flush after every SaveEvery brands, 0 disables
	// interim flushes.
	SaveEvery int
	// TestLimit is the brand cap applied by Filter.TestMode.
	TestLimit int
	// Publisher is optional.
	Publisher Publisher
}

type Runner struct {
	catalog   Catalog
	persister Persister
	opts      Options
	tel       telemetry.API
}

func NewRunner(cat Catalog, persister Persister, opts Options, tel telemetry.API) *Runner {
	return &Runner{
		catalog:   cat,
		persister: persister,
		opts:      opts,
		tel:       telemetry.NewScopedAPI("crawler", tel),
	}
}

// Run crawls the brands selected by `filter`.
//
// The run only fails when the brand list cannot be obtained or the filter
// matches nothing. Cancelling `ctx` stops the run before the next brand, the
// final flush still happens and Stats.Interrupted is set.
func (r *Runner) Run(ctx context.Context, filter Filter) (Stats, error) {
	ctx, span := tracer.Start(ctx, "runner:Run")
	defer span.End()

	brands, err := r.catalog.FetchBrands(ctx)
	if err != nil {
		r.tel.ReportBroken(report_runner_run, err)
		return Stats{}, fmt.Errorf("fetch brands: %w", err)
	}
	if len(brands) == 0 {
		r.tel.ReportBroken(report_runner_run, ErrNoBrands)
		return Stats{}, ErrNoBrands
	}

	stats := Stats{TotalBrands: len(brands)}

	brands, err = filter.Apply(brands, r.opts.TestLimit)
	if err != nil {
		return stats, err
	}
	span.SetAttributes(attribute.Int("brands", len(brands)))

	acc := NewAccumulator()
	for _, brand := range brands {
		if ctx.Err() != nil {
			stats.Interrupted = true
			break
		}

		stats.Processed++
		slog.Info(
			"processing brand",
			"index", stats.Processed,
			"total", stats.TotalBrands,
			"brand", brand.Name,
		)

		err := r.processBrand(ctx, acc, brand)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			stats.Interrupted = true
			break
		}
		if err != nil {
			stats.Errors++
			brandErrorCounter.Add(ctx, 1)
			r.tel.ReportBroken(report_runner_process_brand, err, brand.ID, brand.Name)
		}
		brandsCounter.Add(ctx, 1)

		if r.opts.SaveEvery > 0 && stats.Processed%r.opts.SaveEvery == 0 {
			slog.Info("saving interim data", "processed", stats.Processed)
			r.flush(ctx, acc)
		}
	}

	// the final flush must happen even if the run was interrupted
	r.flush(context.WithoutCancel(ctx), acc)

	stats.OnSale = acc.CountStatus(catalog.StatusOnSale)
	stats.Discontinued = acc.CountStatus(catalog.StatusDiscontinued)
	stats.Total = acc.Len()
	stats.Completed = acc.ProcessedBrands()
	return stats, nil
}

// processBrand collects the on-sale then the discontinued series of a brand,
// resolves their fuel types and appends them to `acc`. Series fetched before
// an error are kept.
func (r *Runner) processBrand(ctx context.Context, acc *Accumulator, brand catalog.Brand) error {
	ctx, span := tracer.Start(ctx, "runner:processBrand")
	defer span.End()
	span.SetAttributes(attribute.Int("brand_id", brand.ID))

	var errs []error

	onSale, err := r.catalog.FetchSeries(ctx, brand, catalog.StatusOnSale)
	if err != nil && !errors.Is(err, autohome.ErrRedirected) {
		errs = append(errs, fmt.Errorf("on-sale series: %w", err))
	}
	discontinued, err := r.catalog.FetchSeries(ctx, brand, catalog.StatusDiscontinued)
	if err != nil && !errors.Is(err, autohome.ErrRedirected) {
		errs = append(errs, fmt.Errorf("discontinued series: %w", err))
	}

	series := append(onSale, discontinued...)
	resolved := make([]catalog.Series, 0, len(series))
	for _, s := range series {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		s.FuelTypes = r.catalog.FetchFuelTypes(ctx, s.SeriesID)
		resolved = append(resolved, s)
	}
	acc.Add(resolved...)
	seriesCounter.Add(ctx, int64(len(resolved)))

	if r.opts.Publisher != nil && len(resolved) > 0 {
		err = r.opts.Publisher.PublishBrand(ctx, brand, resolved)
		if err != nil {
			r.tel.ReportWarning(report_runner_publish, err, brand.ID)
		}
	}

	err = errors.Join(errs...)
	if err == nil {
		acc.MarkProcessed(brand.ID)
	}
	return err
}

func (r *Runner) flush(ctx context.Context, acc *Accumulator) {
	if acc.Len() == 0 {
		slog.Info("no data to save")
		return
	}
	err := r.persister.Persist(ctx, acc.Records())
	if err != nil {
		r.tel.ReportBroken(report_runner_flush, err, acc.Len())
	}
}
