package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// spanNameBatchFile is the per-file span emitted by the batch runner. A
// large tree yields one per file, so it is dropped unless TraceVerbose is set.
const spanNameBatchFile = "graft.batch.file"

// filteringTracerProvider hands out tracers that replace the named spans
// with no-op spans and delegate everything else.
type filteringTracerProvider struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
	noop     trace.TracerProvider
	suppress map[string]bool
}

// NewFilteringTracerProvider wraps delegate so that spans named in
// suppressed are never recorded. Children of a suppressed span keep the
// trace of its nearest recorded ancestor.
func NewFilteringTracerProvider(delegate trace.TracerProvider, suppressed ...string) trace.TracerProvider {
	set := make(map[string]bool, len(suppressed))
	for _, name := range suppressed {
		set[name] = true
	}

	return &filteringTracerProvider{
		delegate: delegate,
		noop:     nooptrace.NewTracerProvider(),
		suppress: set,
	}
}

// Tracer returns a filtering tracer for name.
func (f *filteringTracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	actual := f.delegate.Tracer(name, opts...)
	if len(f.suppress) == 0 {
		return actual
	}

	return &filteringTracer{
		delegate: actual,
		noop:     f.noop.Tracer(name, opts...),
		suppress: f.suppress,
	}
}

type filteringTracer struct {
	embedded.Tracer

	delegate trace.Tracer
	noop     trace.Tracer
	suppress map[string]bool
}

// Start creates a span, returning a no-op span that carries the parent's
// span context for suppressed names.
func (f *filteringTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if f.suppress[name] {
		return f.noop.Start(ctx, name, opts...)
	}

	return f.delegate.Start(ctx, name, opts...)
}
