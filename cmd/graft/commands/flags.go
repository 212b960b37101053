package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/graft/pkg/catalog"
	"github.com/Sumatoshi-tech/graft/pkg/config"
)

// configFlag is the flag naming an explicit config file.
const configFlag = "config"

// flagKeys maps command flags onto config keys. Flags a command does not
// define are skipped.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"spec", "spec"},
	{"spec-file", "spec_files"},
	{"include", "targets.include"},
	{"exclude-dir", "targets.exclude_dirs"},
	{"lang", "targets.languages"},
	{"workers", "run.workers"},
	{"dry-run", "run.dry_run"},
	{"require-match", "run.require_match"},
	{"all-occurrences", "run.all_occurrences"},
	{"diff", "run.diff"},
	{"fail-on-error", "run.fail_on_error"},
	{"format", "output.format"},
	{"no-color", "output.no_color"},
	{"verbose", "output.verbose"},
	{"log-level", "logging.level"},
	{"log-json", "logging.json"},
	{"metrics-textfile", "metrics.textfile"},
}

// bindFlags returns a binder that overlays flags onto viper keys.
func bindFlags(flags *pflag.FlagSet) func(*viper.Viper) error {
	return func(viperCfg *viper.Viper) error {
		for _, fk := range flagKeys {
			flag := flags.Lookup(fk.flag)
			if flag == nil {
				continue
			}

			bindErr := viperCfg.BindPFlag(fk.key, flag)
			if bindErr != nil {
				return fmt.Errorf("--%s: %w", fk.flag, bindErr)
			}
		}

		return nil
	}
}

// loadConfig reads the config named by --config, overlaid with cmd's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString(configFlag)

	return config.Bind(configPath, bindFlags(cmd.Flags()))
}

// loadCatalog returns the built-in presets plus every spec in specFiles.
func loadCatalog(specFiles []string) (*catalog.Catalog, error) {
	cat, builtinErr := catalog.Builtin()
	if builtinErr != nil {
		return nil, fmt.Errorf("load builtin specs: %w", builtinErr)
	}

	for _, file := range specFiles {
		addErr := cat.AddFile(file)
		if addErr != nil {
			return nil, addErr
		}
	}

	return cat, nil
}

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String(configFlag, "", "Config file (default: .graft.yaml in the working directory or $HOME)")
}

func addCatalogFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("spec-file", nil, "Extra spec YAML files to load into the catalog")
}

func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	cmd.Flags().Bool("log-json", config.DefaultLogJSON, "Write logs as JSON")
}
