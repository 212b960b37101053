package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameApply = "graft_apply"
	ToolNameSpecs = "graft_specs"
)

// Input limits.
const (
	// MaxPaths is the maximum number of target paths per graft_apply call.
	MaxPaths = 4096
	// MaxWorkers caps the worker count a client can request.
	MaxWorkers = 64
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptySpec indicates the spec parameter is empty.
	ErrEmptySpec = errors.New("spec parameter is required and must not be empty")
	// ErrEmptyPaths indicates the paths parameter is empty.
	ErrEmptyPaths = errors.New("paths parameter is required and must not be empty")
	// ErrTooManyPaths indicates the paths parameter exceeds MaxPaths.
	ErrTooManyPaths = errors.New("too many paths")
	// ErrPathNotAbsolute indicates a target path is not absolute.
	ErrPathNotAbsolute = errors.New("paths must be absolute")
	// ErrInvalidWorkers indicates a negative or oversized worker count.
	ErrInvalidWorkers = errors.New("workers out of range")
)

// Input types (auto-generate JSON schemas via struct tags).

// ApplyInput is the input schema for the graft_apply tool.
type ApplyInput struct {
	AllOccurrences bool     `json:"all_occurrences,omitempty" jsonschema:"patch every anchor occurrence instead of the first"`
	Diff           bool     `json:"diff,omitempty"            jsonschema:"include a unified diff for every modified file"`
	DryRun         bool     `json:"dry_run,omitempty"         jsonschema:"report changes without writing files"`
	Include        []string `json:"include,omitempty"         jsonschema:"glob patterns selecting files inside directories (e.g. *.py)"`
	Languages      []string `json:"languages,omitempty"       jsonschema:"languages selecting files inside directories (e.g. Python)"`
	Paths          []string `json:"paths"                     jsonschema:"absolute file or directory paths to patch"`
	RequireMatch   bool     `json:"require_match,omitempty"   jsonschema:"report files where no anchor matched as errors"`
	Spec           string   `json:"spec"                      jsonschema:"spec name (see graft_specs) or path to a spec YAML file"`
	Workers        int      `json:"workers,omitempty"         jsonschema:"files processed in parallel (default: 1)"`
}

// SpecsInput is the input schema for the graft_specs tool.
type SpecsInput struct {
	Name string `json:"name,omitempty" jsonschema:"spec name or spec file path to show in full (default: list all)"`
}

// SpecSummary is one entry of the graft_specs listing.
type SpecSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateApplyInput checks graft_apply input constraints.
func validateApplyInput(input ApplyInput) error {
	if input.Spec == "" {
		return ErrEmptySpec
	}

	if len(input.Paths) == 0 {
		return ErrEmptyPaths
	}

	if len(input.Paths) > MaxPaths {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyPaths, len(input.Paths), MaxPaths)
	}

	for _, p := range input.Paths {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("%w: %q", ErrPathNotAbsolute, p)
		}
	}

	if input.Workers < 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidWorkers, input.Workers, MaxWorkers)
	}

	return nil
}
