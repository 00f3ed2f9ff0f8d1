package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestInit_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Options{Level: "debug", Format: "json", Output: &buf})
	require.NotNil(t, l)
	assert.Same(t, l, Logger)

	l.Debug("debug line", "k", "v")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "Logger initialized", entries[0]["msg"])
	assert.Equal(t, "debug line", entries[1]["msg"])
	assert.Equal(t, "v", entries[1]["k"])
}

func TestInit_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Format: "text", Output: &buf})
	assert.Contains(t, buf.String(), "msg=\"Logger initialized\"")
}

func TestContextLogger_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	cl := NewContextLogger(base)

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = context.WithValue(ctx, OperationKey, "get_thumbnail")
	cl.WithContext(ctx).Info("hello")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0]["request_id"])
	assert.Equal(t, "get_thumbnail", entries[0]["operation"])
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestSafeErrorContext_UsesGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Output: &buf})
	buf.Reset()

	SafeErrorContext(WithRequestID(context.Background(), "r1"), "failed to persist", "error", errors.New("disk full"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
	assert.Equal(t, "r1", entries[0]["request_id"])
	assert.Equal(t, "disk full", entries[0]["error"])
}

func TestPerformanceLogger_Timer(t *testing.T) {
	var buf bytes.Buffer
	pl := NewPerformanceLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	timer := pl.StartTimer(context.Background(), "transcode")
	d := timer.End()
	assert.GreaterOrEqual(t, d, time.Duration(0))

	pl.LogSlowOperation(context.Background(), "fetch", 2*time.Second, time.Second)
	pl.LogSlowOperation(context.Background(), "fetch", time.Millisecond, time.Second)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "operation completed", entries[0]["msg"])
	assert.Equal(t, "slow operation detected", entries[1]["msg"])
}

func TestTraceContextHandler_AddsSpanIDs(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	var buf bytes.Buffer
	l := slog.New(NewTraceContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx, span := provider.Tracer("test").Start(context.Background(), "span")
	l.InfoContext(ctx, "inside span")
	span.End()
	l.Info("outside span")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, span.SpanContext().TraceID().String(), entries[0]["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entries[0]["span_id"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &MultiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	l := slog.New(h).With("svc", "thumbs")

	l.Info("info only")
	l.Error("both")

	assert.Len(t, decodeLines(t, &a), 2)
	entries := decodeLines(t, &b)
	require.Len(t, entries, 1)
	assert.Equal(t, "thumbs", entries[0]["svc"])
}
