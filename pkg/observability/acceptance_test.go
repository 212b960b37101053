package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/graft/pkg/observability"
)

// TestAcceptance_EndToEnd exercises traces, metrics and trace-correlated
// logs together over a simulated MCP tool call that patches two files.
func TestAcceptance_EndToEnd(t *testing.T) {
	t.Parallel()

	spanExporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spanExporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	tracer := tp.Tracer("graft")

	metricReader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricReader)).Meter("graft")

	red, err := observability.NewREDMetrics(meter)
	require.NoError(t, err)

	patchMetrics, err := observability.NewPatchMetrics(meter)
	require.NoError(t, err)

	var logBuf bytes.Buffer

	inner := slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, "graft", "test", observability.ModeMCP))

	ctx, toolSpan := tracer.Start(context.Background(), "mcp.tool.graft_apply")
	runCtx, runSpan := tracer.Start(ctx, "graft.batch.run")

	for _, status := range []string{"modified", "unchanged"} {
		fileCtx, fileSpan := tracer.Start(runCtx, "graft.batch.file")
		patchMetrics.RecordFile(fileCtx, status, time.Millisecond, 64)
		fileSpan.End()
	}

	logger.InfoContext(runCtx, "batch finished", "modified", 1)
	runSpan.End()

	red.RecordRequest(ctx, "graft_apply", observability.StatusOK, 10*time.Millisecond)
	toolSpan.End()

	spans := spanExporter.GetSpans()
	require.Len(t, spans, 4)

	traceID := spans[0].SpanContext.TraceID()
	for _, s := range spans[1:] {
		assert.Equal(t, traceID, s.SpanContext.TraceID(), "span %q should share trace ID", s.Name)
	}

	rm := collectMetrics(t, metricReader)
	require.NotNil(t, findMetric(rm, "graft.mcp.requests.total"))
	require.NotNil(t, findMetric(rm, "graft.files"))
	require.NotNil(t, findMetric(rm, "graft.bytes.written"))

	var record map[string]any

	require.NoError(t, json.Unmarshal(logBuf.Bytes(), &record))
	assert.Equal(t, traceID.String(), record["trace_id"])
	assert.Contains(t, record, "span_id")
	assert.Equal(t, "graft", record["service"])
	assert.Equal(t, "mcp", record["mode"])
}
