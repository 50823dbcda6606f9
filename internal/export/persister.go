// Package export writes snapshots of the crawled series to disk.
package export

import (
	"context"
	"io"
	"log/slog"

	"carcatalog/internal/catalog"
	"carcatalog/internal/components/chrono"
	"carcatalog/internal/components/telemetry"
)

const report_persister_mirror = "persister.mirror"

// Mirror is an additional destination for the deduplicated records.
type Mirror interface {
	SaveSeries(ctx context.Context, records []catalog.Series) error
}

type Options struct {
	Dir    string
	Prefix string
	// Out receives the rendered report of every snapshot, it may be nil.
	Out io.Writer
	// Mirror is optional.
	Mirror Mirror
}

type Persister struct {
	opts  Options
	clock chrono.API
	tel   telemetry.API
}

func NewPersister(opts Options, clock chrono.API, tel telemetry.API) *Persister {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Prefix == "" {
		opts.Prefix = "car_data"
	}
	return &Persister{
		opts:  opts,
		clock: clock,
		tel:   telemetry.NewScopedAPI("export", tel),
	}
}

// Save deduplicates `records` and writes them to a new timestamped xlsx
// file. Nothing is written when `records` is empty, the returned Report is
// then the zero value.
func (p *Persister) Save(ctx context.Context, records []catalog.Series) (Report, error) {
	if len(records) == 0 {
		slog.Info("no data to save")
		return Report{}, nil
	}

	deduped := Dedup(records)
	filename := Filename(p.opts.Dir, p.opts.Prefix, p.clock.Now())
	err := WriteXLSX(filename, deduped)
	if err != nil {
		return Report{}, err
	}
	slog.Info("saved series", "file", filename, "rows", len(deduped))

	if p.opts.Mirror != nil {
		err = p.opts.Mirror.SaveSeries(ctx, deduped)
		if err != nil {
			p.tel.ReportWarning(report_persister_mirror, err, len(deduped))
		}
	}

	report := NewReport(filename, records, deduped)
	if p.opts.Out != nil {
		report.Render(p.opts.Out)
	}
	return report, nil
}

func (p *Persister) Persist(ctx context.Context, records []catalog.Series) error {
	_, err := p.Save(ctx, records)
	return err
}
