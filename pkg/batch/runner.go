package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/graft/pkg/observability"
	"github.com/Sumatoshi-tech/graft/pkg/patch"
	"github.com/Sumatoshi-tech/graft/pkg/textutil"
)

// Span and attribute names.
const (
	spanRun  = "graft.batch.run"
	spanFile = "graft.batch.file"

	attrSpec    = "graft.spec"
	attrFiles   = "graft.files"
	attrWorkers = "graft.workers"
	attrPath    = "graft.file.path"
	attrStatus  = "graft.file.status"
)

// Runner applies one spec to many files. The zero value runs sequentially,
// writes changes in place, and logs through slog.Default.
type Runner struct {
	// Workers bounds parallel file processing. Values <= 1 run sequentially.
	Workers int

	// DryRun skips the write step; would-be changes are still reported as modified.
	DryRun bool

	// Diff attaches a unified diff to every modified file.
	Diff bool

	// DiffContext is the number of context lines in diffs. Negative uses DefaultDiffContext.
	DiffContext int

	// Logger receives per-file debug records and the run summary.
	Logger *slog.Logger

	// Tracer creates a span per run and per file. Nil disables tracing.
	Tracer trace.Tracer

	// Metrics records per-file outcomes. Nil disables metrics.
	Metrics *observability.PatchMetrics
}

// Run processes paths in order and returns the aggregate result. Duplicate
// paths are processed once per occurrence; the later occurrences observe the
// earlier write and are no-ops through the idempotency markers.
func (r *Runner) Run(ctx context.Context, paths []string, spec patch.Spec) Result {
	ctx, span := r.startSpan(ctx, spanRun,
		attribute.String(attrSpec, spec.Name),
		attribute.Int(attrFiles, len(paths)),
		attribute.Int(attrWorkers, max(1, r.Workers)),
	)
	defer span.End()

	startedAt := time.Now()

	files := make([]FileResult, len(paths))

	if r.Workers <= 1 || len(paths) <= 1 {
		for i, path := range paths {
			files[i] = r.processFile(ctx, path, spec)
		}
	} else {
		r.runParallel(ctx, paths, spec, files)
	}

	res := Result{
		Spec:   spec.Name,
		DryRun: r.DryRun,
		Total:  len(paths),
		Files:  files,
	}
	res.ModifiedCount = res.Count(StatusModified)

	r.logger().InfoContext(ctx, "batch finished",
		"spec", spec.Name,
		"total", res.Total,
		"modified", res.ModifiedCount,
		"unchanged", res.Count(StatusUnchanged),
		"missing", res.Count(StatusMissing),
		"errors", res.Count(StatusError),
		"dry_run", r.DryRun,
		"elapsed", time.Since(startedAt).Round(time.Millisecond),
	)

	return res
}

// runParallel fans files out to at most Workers goroutines. Every occurrence
// of one path is handled by the same goroutine, in input order, so no path
// ever has two concurrent writers. Each goroutine writes only its own slots.
func (r *Runner) runParallel(ctx context.Context, paths []string, spec patch.Spec, files []FileResult) {
	order := make([]string, 0, len(paths))
	slots := make(map[string][]int, len(paths))

	for i, path := range paths {
		if _, seen := slots[path]; !seen {
			order = append(order, path)
		}

		slots[path] = append(slots[path], i)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.Workers)

	for _, path := range order {
		indices := slots[path]

		group.Go(func() error {
			for _, idx := range indices {
				files[idx] = r.processFile(groupCtx, path, spec)
			}

			return nil
		})
	}

	// Workers never return errors; failures live in the per-file results.
	_ = group.Wait()
}

func (r *Runner) processFile(ctx context.Context, path string, spec patch.Spec) FileResult {
	ctx, span := r.startSpan(ctx, spanFile, attribute.String(attrPath, path))
	defer span.End()

	startedAt := time.Now()

	res := r.patchFile(ctx, path, spec)
	res.Duration = time.Since(startedAt)

	span.SetAttributes(attribute.String(attrStatus, string(res.Status)))

	if res.Cause != nil {
		span.RecordError(res.Cause)
		span.SetStatus(codes.Error, res.Err)
	}

	r.Metrics.RecordFile(ctx, string(res.Status), res.Duration, res.BytesWritten)

	r.logger().DebugContext(ctx, "file processed",
		"path", path,
		"status", res.Status,
		"import_inserted", res.ImportInserted,
		"blocks_inserted", res.BlocksInserted,
		"error", res.Err,
	)

	return res
}

func (r *Runner) patchFile(ctx context.Context, path string, spec patch.Spec) FileResult {
	res := FileResult{Path: path, Pattern: -1}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return res.fail(ctxErr)
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			res.Status = StatusMissing
			res.Cause = fmt.Errorf("%w: %s", ErrMissingFile, path)
			res.Err = res.Cause.Error()

			return res
		}

		return res.fail(fmt.Errorf("%w: %w", ErrReadFailure, statErr))
	}

	if info.IsDir() {
		return res.fail(fmt.Errorf("%w: %s is a directory", ErrReadFailure, path))
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return res.fail(fmt.Errorf("%w: %w", ErrReadFailure, readErr))
	}

	textErr := textutil.CheckText(data)
	if textErr != nil {
		return res.fail(fmt.Errorf("%w: %w", ErrReadFailure, textErr))
	}

	before := string(data)

	out, applyErr := patch.ApplyDetailed(before, spec)
	if applyErr != nil {
		return res.fail(applyErr)
	}

	if !out.Changed {
		res.Status = StatusUnchanged

		return res
	}

	res.ImportInserted = out.ImportInserted
	res.BlocksInserted = out.BlocksInserted
	res.Pattern = out.Pattern
	res.LinesAdded = textutil.LineDelta(before, out.Content)
	res.BytesWritten = int64(len(out.Content))

	if r.Diff {
		res.Diff = UnifiedDiff(path, before, out.Content, r.DiffContext)
	}

	if !r.DryRun {
		writeErr := os.WriteFile(path, []byte(out.Content), info.Mode().Perm())
		if writeErr != nil {
			return res.fail(fmt.Errorf("%w: %w", ErrWriteFailure, writeErr))
		}
	}

	res.Status = StatusModified

	return res
}

func (f FileResult) fail(err error) FileResult {
	f.Status = StatusError
	f.Cause = err
	f.Err = err.Error()

	return f
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}

	return slog.Default()
}

func (r *Runner) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if r.Tracer == nil {
		// A span from an empty context is a no-op; ending it leaves the caller's span alone.
		return ctx, trace.SpanFromContext(context.Background())
	}

	return r.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
