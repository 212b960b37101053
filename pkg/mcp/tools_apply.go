package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/graft/pkg/batch"
	"github.com/Sumatoshi-tech/graft/pkg/discover"
)

// handleApply resolves the spec, expands the target paths, and runs the batch.
// Per-file failures are part of the result; only invalid input and
// unresolvable specs produce an error result.
func (s *Server) handleApply(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ApplyInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	validateErr := validateApplyInput(input)
	if validateErr != nil {
		return errorResult(validateErr)
	}

	spec, resolveErr := s.catalog.Resolve(input.Spec)
	if resolveErr != nil {
		return errorResult(resolveErr)
	}

	if input.RequireMatch {
		spec.RequireMatch = true
	}

	if input.AllOccurrences {
		spec.AllOccurrences = true
	}

	walker := discover.NewWalker(discover.Options{
		Include:   input.Include,
		Languages: input.Languages,
		Logger:    s.logger,
	})

	paths, expandErr := walker.Expand(ctx, input.Paths)
	if expandErr != nil {
		return errorResult(fmt.Errorf("expand paths: %w", expandErr))
	}

	runner := &batch.Runner{
		Workers:     input.Workers,
		DryRun:      input.DryRun,
		Diff:        input.Diff,
		DiffContext: -1,
		Logger:      s.logger,
		Tracer:      s.tracer,
		Metrics:     s.patchMetrics,
	}

	return jsonResult(runner.Run(ctx, paths, spec))
}
