package config

// Run defaults.
const (
	DefaultWorkers        = 1
	DefaultDryRun         = false
	DefaultRequireMatch   = false
	DefaultAllOccurrences = false
	DefaultDiff           = false
	DefaultFailOnError    = false
)

// Output defaults.
const (
	DefaultOutputFormat = "text"
	DefaultNoColor      = false
	DefaultVerbose      = false
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultSampleRatio  = 0.0
	DefaultTraceVerbose = false
)

// maxWorkers bounds run.workers; beyond this, file descriptors run out before throughput improves.
const maxWorkers = 1024
