package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal   = "graft.files"
	metricBytesWritten = "graft.bytes.written"
	metricFileDuration = "graft.file.duration.seconds"

	fileStatusModified = "modified"
)

// fileBucketBoundaries covers reading, matching and rewriting one source file.
var fileBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// PatchMetrics holds OTel instruments for per-file batch outcomes.
type PatchMetrics struct {
	filesTotal   metric.Int64Counter
	bytesWritten metric.Int64Counter
	fileDuration metric.Float64Histogram
}

// NewPatchMetrics creates patch metric instruments from the given meter.
func NewPatchMetrics(mt metric.Meter) (*PatchMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Files processed by outcome status"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	written, err := mt.Int64Counter(metricBytesWritten,
		metric.WithDescription("Bytes of patched content produced for modified files"),
		metric.WithUnit("{byte}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBytesWritten, err)
	}

	duration, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Per-file processing duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(fileBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	return &PatchMetrics{
		filesTotal:   files,
		bytesWritten: written,
		fileDuration: duration,
	}, nil
}

// RecordFile records one processed file. Bytes are counted only for
// modified files. Safe to call on a nil receiver (no-op).
func (pm *PatchMetrics) RecordFile(ctx context.Context, status string, duration time.Duration, bytes int64) {
	if pm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	pm.filesTotal.Add(ctx, 1, attrs)
	pm.fileDuration.Record(ctx, duration.Seconds(), attrs)

	if status == fileStatusModified && bytes > 0 {
		pm.bytesWritten.Add(ctx, bytes)
	}
}
