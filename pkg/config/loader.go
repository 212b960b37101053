package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/graft/pkg/discover"
)

// configName is the config file name without extension.
const configName = ".graft"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for graft settings.
const envPrefix = "GRAFT"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, .graft.yaml is searched in CWD and $HOME.
// A missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg, readErr := newViper(configPath)
	if readErr != nil {
		return nil, readErr
	}

	return decode(viperCfg)
}

// Bind exposes the viper instance LoadConfig uses so callers can bind command
// flags before decoding. Flags bound this way take precedence over env and file.
func Bind(configPath string, bind func(*viper.Viper) error) (*Config, error) {
	viperCfg, readErr := newViper(configPath)
	if readErr != nil {
		return nil, readErr
	}

	bindErr := bind(viperCfg)
	if bindErr != nil {
		return nil, fmt.Errorf("bind flags: %w", bindErr)
	}

	return decode(viperCfg)
}

func newViper(configPath string) (*viper.Viper, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, homeErr := os.UserHomeDir()
		if homeErr == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	return viperCfg, nil
}

func decode(viperCfg *viper.Viper) (*Config, error) {
	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("spec", "")
	viperCfg.SetDefault("spec_files", []string{})

	viperCfg.SetDefault("targets.include", []string{})
	viperCfg.SetDefault("targets.exclude_dirs", discover.DefaultExcludeDirs)
	viperCfg.SetDefault("targets.languages", []string{})

	viperCfg.SetDefault("run.workers", DefaultWorkers)
	viperCfg.SetDefault("run.dry_run", DefaultDryRun)
	viperCfg.SetDefault("run.require_match", DefaultRequireMatch)
	viperCfg.SetDefault("run.all_occurrences", DefaultAllOccurrences)
	viperCfg.SetDefault("run.diff", DefaultDiff)
	viperCfg.SetDefault("run.fail_on_error", DefaultFailOnError)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.no_color", DefaultNoColor)
	viperCfg.SetDefault("output.verbose", DefaultVerbose)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("metrics.textfile", "")

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("telemetry.trace_verbose", DefaultTraceVerbose)
	viperCfg.SetDefault("telemetry.debug_trace", false)
}
