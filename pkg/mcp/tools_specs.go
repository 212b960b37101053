package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// handleSpecs lists the catalog, or shows one spec when a name is given.
func (s *Server) handleSpecs(
	_ context.Context, _ *mcpsdk.CallToolRequest, input SpecsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Name != "" {
		spec, resolveErr := s.catalog.Resolve(input.Name)
		if resolveErr != nil {
			return errorResult(resolveErr)
		}

		return jsonResult(spec)
	}

	specs := s.catalog.List()
	out := make([]SpecSummary, 0, len(specs))

	for _, spec := range specs {
		out = append(out, SpecSummary{
			Name:        spec.Name,
			Description: spec.Description,
			Source:      s.catalog.Source(spec.Name),
		})
	}

	return jsonResult(out)
}
