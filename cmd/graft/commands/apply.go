// Package commands implements CLI command handlers for graft.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/graft/pkg/batch"
	"github.com/Sumatoshi-tech/graft/pkg/config"
	"github.com/Sumatoshi-tech/graft/pkg/discover"
	"github.com/Sumatoshi-tech/graft/pkg/observability"
	"github.com/Sumatoshi-tech/graft/pkg/report"
	"github.com/Sumatoshi-tech/graft/pkg/version"
)

var (
	// ErrNoSpec is returned when neither --spec nor the spec config key is set.
	ErrNoSpec = errors.New("no spec selected: pass --spec or set spec in .graft.yaml")
	// ErrRunFailed indicates at least one file ended missing or in error.
	ErrRunFailed = errors.New("patch run failed")
	// ErrChangesPending indicates check found files that still need the patch.
	ErrChangesPending = errors.New("files need patching")
)

// PatchCommand holds the mode of the apply and check commands.
type PatchCommand struct {
	// check forces a dry run and fails when any file would change.
	check bool
}

// NewApplyCommand creates the apply command.
func NewApplyCommand() *cobra.Command {
	pc := &PatchCommand{}

	cmd := &cobra.Command{
		Use:   "apply [paths...]",
		Short: "Patch files in place",
		Long: `Apply a patch spec to files and directories.

Each file gets the spec's import line after the import anchor and the spec's
block at the first matching insertion anchor. Files that already carry the
spec's markers are left untouched. Directories are walked recursively.`,
		Args: cobra.MinimumNArgs(1),
		RunE: pc.run,
	}

	pc.addFlags(cmd)
	cmd.Flags().Bool("dry-run", config.DefaultDryRun, "Report changes without writing files")
	cmd.Flags().Bool("fail-on-error", config.DefaultFailOnError, "Exit non-zero when a file is missing or fails")

	return cmd
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	pc := &PatchCommand{check: true}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report files that still need patching",
		Long: `Run a patch spec without writing anything and exit non-zero when any file
would be modified, is missing, or fails. Suited to CI gates.`,
		Args: cobra.MinimumNArgs(1),
		RunE: pc.run,
	}

	pc.addFlags(cmd)

	return cmd
}

func (pc *PatchCommand) addFlags(cmd *cobra.Command) {
	addConfigFlag(cmd)
	addCatalogFlags(cmd)
	addLoggingFlags(cmd)

	cmd.Flags().StringP("spec", "s", "", "Spec name (see 'graft specs list') or spec YAML file")
	cmd.Flags().StringSlice("include", nil, "Glob patterns selecting files inside directories (e.g. '*.py')")
	cmd.Flags().StringSlice("exclude-dir", nil, "Directory names never descended into")
	cmd.Flags().StringSlice("lang", nil, "Languages selecting files inside directories (e.g. Python)")
	cmd.Flags().IntP("workers", "j", config.DefaultWorkers, "Files processed in parallel")
	cmd.Flags().Bool("require-match", config.DefaultRequireMatch, "Report files without an anchor match as errors")
	cmd.Flags().Bool("all-occurrences", config.DefaultAllOccurrences, "Patch every anchor occurrence instead of the first")
	cmd.Flags().Bool("diff", config.DefaultDiff, "Show a unified diff for every modified file")
	cmd.Flags().String("format", config.DefaultOutputFormat, "Output format: "+fmt.Sprint(report.Formats()))
	cmd.Flags().Bool("no-color", config.DefaultNoColor, "Disable colored output")
	cmd.Flags().BoolP("verbose", "v", config.DefaultVerbose, "List unchanged files too")
	cmd.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this file on exit")
}

func (pc *PatchCommand) run(cmd *cobra.Command, args []string) error {
	cfg, cfgErr := loadConfig(cmd)
	if cfgErr != nil {
		return cfgErr
	}

	if cfg.Spec == "" {
		return ErrNoSpec
	}

	providers, initErr := observability.Init(cfg.Observability(observability.ModeCLI, version.Version))
	if initErr != nil {
		return fmt.Errorf("init observability: %w", initErr)
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	res, runErr := pc.execute(cmd.Context(), cfg, providers, args)
	if runErr != nil {
		return runErr
	}

	writeErr := report.Write(cmd.OutOrStdout(), res, report.Options{
		Format:   cfg.Output.Format,
		NoColor:  cfg.Output.NoColor,
		Verbose:  cfg.Output.Verbose,
		ShowDiff: cfg.Run.Diff,
	})
	if writeErr != nil {
		return writeErr
	}

	return pc.verdict(cfg, res)
}

// execute resolves the spec, expands targets, and runs the batch.
func (pc *PatchCommand) execute(
	ctx context.Context,
	cfg *config.Config,
	providers observability.Providers,
	targets []string,
) (batch.Result, error) {
	cat, catErr := loadCatalog(cfg.SpecFiles)
	if catErr != nil {
		return batch.Result{}, catErr
	}

	spec, resolveErr := cat.Resolve(cfg.Spec)
	if resolveErr != nil {
		return batch.Result{}, resolveErr
	}

	spec.RequireMatch = spec.RequireMatch || cfg.Run.RequireMatch
	spec.AllOccurrences = spec.AllOccurrences || cfg.Run.AllOccurrences

	walker := discover.NewWalker(discover.Options{
		Include:     cfg.Targets.Include,
		ExcludeDirs: cfg.Targets.ExcludeDirs,
		Languages:   cfg.Targets.Languages,
		Logger:      providers.Logger,
	})

	paths, expandErr := walker.Expand(ctx, targets)
	if expandErr != nil {
		return batch.Result{}, expandErr
	}

	patchMetrics, metricsErr := observability.NewPatchMetrics(providers.Meter)
	if metricsErr != nil {
		return batch.Result{}, metricsErr
	}

	runner := &batch.Runner{
		Workers:     cfg.Run.Workers,
		DryRun:      cfg.Run.DryRun || pc.check,
		Diff:        cfg.Run.Diff,
		DiffContext: -1,
		Logger:      providers.Logger,
		Tracer:      providers.Tracer,
		Metrics:     patchMetrics,
	}

	return runner.Run(ctx, paths, spec), nil
}

// verdict maps the result onto the command's exit status.
func (pc *PatchCommand) verdict(cfg *config.Config, res batch.Result) error {
	failed := res.Count(batch.StatusError) + res.Count(batch.StatusMissing)

	if (cfg.Run.FailOnError || pc.check) && failed > 0 {
		return fmt.Errorf("%w: %d of %d files missing or failed", ErrRunFailed, failed, res.Total)
	}

	if pc.check && res.ModifiedCount > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrChangesPending, res.ModifiedCount, res.Total)
	}

	return nil
}
