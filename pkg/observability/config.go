// Package observability wires graft's OpenTelemetry traces and metrics, the
// Prometheus textfile and the slog logger for the CLI and MCP modes.
package observability

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
)

// AppMode identifies how the graft binary was launched.
type AppMode string

const (
	// ModeCLI covers apply, check and specs.
	ModeCLI AppMode = "cli"
	// ModeMCP is the stdio MCP server.
	ModeMCP AppMode = "mcp"
)

const (
	serviceName            = "graft"
	defaultShutdownTimeout = 5 * time.Second
)

// Collector settings read by OTLPConfig.OrEnv.
const (
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
	envOTLPInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
)

// OTLPConfig addresses a gRPC collector. The zero value exports nothing.
type OTLPConfig struct {
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// Enabled reports whether spans and metrics leave the process over OTLP.
func (o OTLPConfig) Enabled() bool {
	return o.Endpoint != ""
}

// OrEnv returns o when it names an endpoint, and otherwise the collector
// described by the OTEL_EXPORTER_OTLP_* variables.
func (o OTLPConfig) OrEnv() OTLPConfig {
	if o.Enabled() {
		return o
	}

	return OTLPConfig{
		Endpoint: os.Getenv(envOTLPEndpoint),
		Headers:  ParseOTLPHeaders(os.Getenv(envOTLPHeaders)),
		Insecure: o.Insecure || os.Getenv(envOTLPInsecure) == "true",
	}
}

func (o OTLPConfig) traceOptions() []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(o.Endpoint)}

	if o.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(o.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(o.Headers))
	}

	return opts
}

func (o OTLPConfig) metricOptions() []otlpmetricgrpc.Option {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(o.Endpoint)}

	if o.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	if len(o.Headers) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(o.Headers))
	}

	return opts
}

// Config describes the telemetry of one graft process.
type Config struct {
	ServiceVersion string
	Environment    string
	Mode           AppMode

	OTLP OTLPConfig

	// DebugTrace samples every trace and beats OTEL_TRACES_SAMPLER.
	DebugTrace bool

	// SampleRatio is the parent-based root ratio. Zero samples every root.
	SampleRatio float64

	// TraceVerbose exports graft.batch.file spans next to the run span.
	TraceVerbose bool

	LogLevel slog.Level
	LogJSON  bool

	// PrometheusTextfile receives every collected metric on shutdown.
	PrometheusTextfile string

	ShutdownTimeout time.Duration
}

// DefaultConfig is the CLI setup: info logs as text, no export.
func DefaultConfig() Config {
	return Config{
		Mode:            ModeCLI,
		LogLevel:        slog.LevelInfo,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// exports reports whether any metric reader is needed.
func (c Config) exports() bool {
	return c.OTLP.Enabled() || c.PrometheusTextfile != ""
}

// ParseOTLPHeaders reads the "key=value,key=value" header list used by
// OTEL_EXPORTER_OTLP_HEADERS. Malformed pairs are skipped.
func ParseOTLPHeaders(raw string) map[string]string {
	result := make(map[string]string)

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}

		result[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
