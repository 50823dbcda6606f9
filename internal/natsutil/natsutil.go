// Package natsutil publishes crawled series to NATS as JSON with
// OpenTelemetry trace propagation.
package natsutil

import (
	"context"
	"encoding/json"
	"time"

	"carcatalog/internal/catalog"
	"carcatalog/internal/components/chrono"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// MsgPublisher is satisfied by *nats.Conn.
type MsgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Publish serializes v as JSON and publishes to the given subject.
// Trace context from ctx is injected into NATS message headers.
func Publish[T any](ctx context.Context, nc MsgPublisher, subject string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	return nc.PublishMsg(msg)
}

// BrandBatch is the message published for every processed brand.
type BrandBatch struct {
	RunID       string           `json:"run_id"`
	Brand       catalog.Brand    `json:"brand"`
	Series      []catalog.Series `json:"series"`
	PublishedAt time.Time        `json:"published_at"`
}

type SeriesPublisher struct {
	nc      MsgPublisher
	subject string
	runID   string
	clock   chrono.API
}

func NewSeriesPublisher(nc MsgPublisher, subject, runID string, clock chrono.API) *SeriesPublisher {
	return &SeriesPublisher{
		nc:      nc,
		subject: subject,
		runID:   runID,
		clock:   clock,
	}
}

func (p *SeriesPublisher) PublishBrand(ctx context.Context, brand catalog.Brand, series []catalog.Series) error {
	return Publish(ctx, p.nc, p.subject, BrandBatch{
		RunID:       p.runID,
		Brand:       brand,
		Series:      series,
		PublishedAt: p.clock.Now(),
	})
}
