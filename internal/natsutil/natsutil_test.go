package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"carcatalog/internal/catalog"
	"carcatalog/internal/components/chrono"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type capturePublisher struct {
	msgs []*nats.Msg
	err  error
}

func (c *capturePublisher) PublishMsg(msg *nats.Msg) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestNatsHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	require.Equal(t, "", carrier.Get("missing"))
	require.Nil(t, carrier.Keys())

	carrier.Set("traceparent", "00-abc-def-01")
	require.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	require.Len(t, carrier.Keys(), 1)
}

func TestPublishBrand(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	at := time.Date(2024, 5, 7, 9, 3, 1, 0, time.UTC)
	nc := &capturePublisher{}
	publisher := NewSeriesPublisher(nc, "carcatalog.series", "run-1", chrono.FixedImpl{At: at})

	brand := catalog.Brand{ID: 1, Name: "X"}
	err = publisher.PublishBrand(ctx, brand, []catalog.Series{{
		BrandID:   1,
		BrandName: "X",
		SeriesID:  100,
		Status:    catalog.StatusOnSale,
		FuelTypes: []string{"纯电动"},
	}})
	require.NoError(t, err)
	require.Len(t, nc.msgs, 1)

	msg := nc.msgs[0]
	require.Equal(t, "carcatalog.series", msg.Subject)
	require.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", msg.Header.Get("traceparent"))

	var batch BrandBatch
	require.NoError(t, json.Unmarshal(msg.Data, &batch))
	require.Equal(t, "run-1", batch.RunID)
	require.Equal(t, brand, batch.Brand)
	require.True(t, at.Equal(batch.PublishedAt))
	require.Len(t, batch.Series, 1)
	require.Equal(t, int64(100), batch.Series[0].SeriesID)
	require.Contains(t, string(msg.Data), `"status":"on-sale"`)
}

func TestPublishError(t *testing.T) {
	nc := &capturePublisher{err: nats.ErrConnectionClosed}
	publisher := NewSeriesPublisher(nc, "s", "run", chrono.FixedImpl{At: time.Now()})

	err := publisher.PublishBrand(context.Background(), catalog.Brand{ID: 1}, nil)
	require.True(t, errors.Is(err, nats.ErrConnectionClosed))
}
