package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "thumbs"

// ThumbnailMetrics records pipeline counters through an OTel meter backed by a Prometheus
// registry. All methods are safe on a nil receiver.
type ThumbnailMetrics struct {
	registry      *prometheus.Registry
	provider      *sdkmetric.MeterProvider
	requests      metric.Int64Counter
	originFetches metric.Int64Counter
	transcodes    metric.Int64Counter
	persistFails  metric.Int64Counter
	sharedBuilds  metric.Int64Counter
	buildDuration metric.Float64Histogram
}

// NewThumbnailMetrics builds a fresh registry so tests and servers never share state.
func NewThumbnailMetrics() (*ThumbnailMetrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(meterName)

	m := &ThumbnailMetrics{registry: registry, provider: provider}

	if m.requests, err = meter.Int64Counter("thumbs.requests",
		metric.WithDescription("Thumbnail requests by outcome")); err != nil {
		return nil, err
	}
	if m.originFetches, err = meter.Int64Counter("thumbs.origin.fetches",
		metric.WithDescription("Origin fetch attempts by result")); err != nil {
		return nil, err
	}
	if m.transcodes, err = meter.Int64Counter("thumbs.transcodes",
		metric.WithDescription("Transcode attempts by format and mode")); err != nil {
		return nil, err
	}
	if m.persistFails, err = meter.Int64Counter("thumbs.persist.failures",
		metric.WithDescription("Artifacts that could not be written to the cache store")); err != nil {
		return nil, err
	}
	if m.sharedBuilds, err = meter.Int64Counter("thumbs.builds.shared",
		metric.WithDescription("Requests that joined an in-flight build")); err != nil {
		return nil, err
	}
	if m.buildDuration, err = meter.Float64Histogram("thumbs.build.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Time spent building an artifact on cache miss")); err != nil {
		return nil, err
	}

	return m, nil
}

// RegisterStoreGauge exposes the size of the artifact store, sampled on scrape.
func (m *ThumbnailMetrics) RegisterStoreGauge(sizeBytes func() int64) error {
	if m == nil || sizeBytes == nil {
		return nil
	}
	_, err := m.provider.Meter(meterName).Int64ObservableGauge("thumbs.store.bytes",
		metric.WithUnit("By"),
		metric.WithDescription("Bytes held by the artifact store"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(sizeBytes())
			return nil
		}),
	)
	return err
}

// RecordRequest counts a finished request. outcome is "hit", "miss", "not_modified",
// "not_found" or "error".
func (m *ThumbnailMetrics) RecordRequest(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordOriginFetch counts an origin fetch. result is "ok", "not_found", "error" or "circuit_open".
func (m *ThumbnailMetrics) RecordOriginFetch(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.originFetches.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordTranscode counts a transcode. mode is "resized", "passthrough" or "decode_failure".
func (m *ThumbnailMetrics) RecordTranscode(ctx context.Context, format, mode string) {
	if m == nil {
		return
	}
	m.transcodes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("mode", mode),
	))
}

// RecordPersistFailure counts a degraded build.
func (m *ThumbnailMetrics) RecordPersistFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.persistFails.Add(ctx, 1)
}

// RecordSharedBuild counts a waiter that received another request's build.
func (m *ThumbnailMetrics) RecordSharedBuild(ctx context.Context) {
	if m == nil {
		return
	}
	m.sharedBuilds.Add(ctx, 1)
}

// ObserveBuild records how long a cache-miss build took.
func (m *ThumbnailMetrics) ObserveBuild(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.buildDuration.Record(ctx, d.Seconds())
}

// Handler serves the Prometheus exposition format.
func (m *ThumbnailMetrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Shutdown flushes the meter provider.
func (m *ThumbnailMetrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
