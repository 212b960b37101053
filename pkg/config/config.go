// Package config loads graft settings from .graft.yaml, GRAFT_* environment
// variables, and defaults, using viper.
package config

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/graft/pkg/observability"
	"github.com/Sumatoshi-tech/graft/pkg/report"
)

// Sentinel validation errors.
var (
	// ErrInvalidWorkers indicates run.workers is out of range.
	ErrInvalidWorkers = errors.New("invalid worker count")
	// ErrInvalidSampleRatio indicates telemetry.sample_ratio is outside [0, 1].
	ErrInvalidSampleRatio = errors.New("sample ratio must be between 0 and 1")
)

// Config holds all graft settings.
type Config struct {
	// Spec is a built-in spec name or a path to a spec YAML file.
	Spec string `mapstructure:"spec"`

	// SpecFiles are extra spec YAML files added to the catalog.
	SpecFiles []string `mapstructure:"spec_files"`

	Targets   TargetsConfig   `mapstructure:"targets"`
	Run       RunConfig       `mapstructure:"run"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// TargetsConfig controls directory expansion.
type TargetsConfig struct {
	Include     []string `mapstructure:"include"`
	ExcludeDirs []string `mapstructure:"exclude_dirs"`
	Languages   []string `mapstructure:"languages"`
}

// RunConfig controls the batch run.
type RunConfig struct {
	Workers        int  `mapstructure:"workers"`
	DryRun         bool `mapstructure:"dry_run"`
	RequireMatch   bool `mapstructure:"require_match"`
	AllOccurrences bool `mapstructure:"all_occurrences"`
	Diff           bool `mapstructure:"diff"`
	FailOnError    bool `mapstructure:"fail_on_error"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
	Verbose bool   `mapstructure:"verbose"`
}

// LoggingConfig controls the slog logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// MetricsConfig controls local metrics output.
type MetricsConfig struct {
	// Textfile is a node-exporter textfile written when the process exits.
	Textfile string `mapstructure:"textfile"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	TraceVerbose bool    `mapstructure:"trace_verbose"`
	DebugTrace   bool    `mapstructure:"debug_trace"`
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Run.Workers < 0 || c.Run.Workers > maxWorkers {
		return fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidWorkers, c.Run.Workers, maxWorkers)
	}

	_, formatErr := report.ValidateFormat(c.Output.Format)
	if formatErr != nil {
		return formatErr
	}

	_, levelErr := observability.ParseLogLevel(c.Logging.Level)
	if levelErr != nil {
		return levelErr
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}

// Observability maps the logging, metrics and telemetry sections onto an
// observability.Config for the given mode and binary version.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	obs := observability.DefaultConfig()
	obs.Mode = mode
	obs.ServiceVersion = version
	obs.Environment = c.Telemetry.Environment
	obs.OTLP = observability.OTLPConfig{
		Endpoint: c.Telemetry.OTLPEndpoint,
		Headers:  observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders),
		Insecure: c.Telemetry.OTLPInsecure,
	}
	obs.SampleRatio = c.Telemetry.SampleRatio
	obs.TraceVerbose = c.Telemetry.TraceVerbose
	obs.DebugTrace = c.Telemetry.DebugTrace
	obs.LogJSON = c.Logging.JSON
	obs.PrometheusTextfile = c.Metrics.Textfile

	// Validate has already rejected unknown levels.
	obs.LogLevel, _ = observability.ParseLogLevel(c.Logging.Level)

	return obs
}
