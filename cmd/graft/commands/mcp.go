package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/graft/pkg/config"
	"github.com/Sumatoshi-tech/graft/pkg/mcp"
	"github.com/Sumatoshi-tech/graft/pkg/observability"
	"github.com/Sumatoshi-tech/graft/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes graft as tools that AI agents can discover and invoke:
  - graft_apply: Apply a patch spec to files and directories
  - graft_specs: List the available patch specs or show one`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, cfgErr := loadConfig(cobraCmd)
			if cfgErr != nil {
				return cfgErr
			}

			providers, err := observability.Init(mcpObservabilityConfig(cfg, debug))
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			cat, catErr := loadCatalog(cfg.SpecFiles)
			if catErr != nil {
				return catErr
			}

			red, redErr := observability.NewREDMetrics(providers.Meter)
			if redErr != nil {
				return redErr
			}

			patchMetrics, patchErr := observability.NewPatchMetrics(providers.Meter)
			if patchErr != nil {
				return patchErr
			}

			srv, srvErr := mcp.NewServer(mcp.ServerDeps{
				Logger:       providers.Logger,
				Metrics:      red,
				PatchMetrics: patchMetrics,
				Tracer:       providers.Tracer,
				Catalog:      cat,
			})
			if srvErr != nil {
				return srvErr
			}

			return srv.Run(cobraCmd.Context())
		},
	}

	addConfigFlag(cmd)
	addCatalogFlags(cmd)
	cmd.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this file on exit")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}

// mcpObservabilityConfig maps cfg onto MCP-mode observability. Logs are always
// JSON on stderr since stdout carries the protocol. Standard OTEL_* variables
// fill in an OTLP endpoint the config leaves empty.
func mcpObservabilityConfig(cfg *config.Config, debug bool) observability.Config {
	obs := cfg.Observability(observability.ModeMCP, version.Version)
	obs.LogJSON = true
	obs.OTLP = obs.OTLP.OrEnv()

	if debug {
		obs.LogLevel = slog.LevelDebug
		obs.DebugTrace = true
	}

	return obs
}
