// Package batch runs a patch spec over an ordered list of target files,
// persisting changes and isolating every per-file failure into the returned
// Result. No per-file error ever escapes Runner.Run.
package batch

import (
	"errors"
	"time"
)

// Status is the terminal state of one file in a batch run.
type Status string

// File statuses.
const (
	StatusUnchanged Status = "unchanged"
	StatusModified  Status = "modified"
	StatusMissing   Status = "missing"
	StatusError     Status = "error"
)

// Sentinel errors recorded on failed files.
var (
	// ErrMissingFile indicates the target path does not exist.
	ErrMissingFile = errors.New("file does not exist")
	// ErrReadFailure indicates the target could not be read as text.
	ErrReadFailure = errors.New("read failed")
	// ErrWriteFailure indicates the patched content could not be written back.
	ErrWriteFailure = errors.New("write failed")
)

// FileResult is the per-file record of a batch run.
type FileResult struct {
	Path   string `json:"path"            yaml:"path"`
	Status Status `json:"status"          yaml:"status"`
	Err    string `json:"error,omitempty" yaml:"error,omitempty"`

	// ImportInserted is true when the import line was spliced in.
	ImportInserted bool `json:"import_inserted" yaml:"import_inserted"`

	// BlocksInserted counts wrapped anchor occurrences.
	BlocksInserted int `json:"blocks_inserted" yaml:"blocks_inserted"`

	// Pattern is the index of the winning anchor pattern, or -1.
	Pattern int `json:"pattern" yaml:"pattern"`

	// LinesAdded is the line count delta of the patched content.
	LinesAdded int `json:"lines_added" yaml:"lines_added"`

	// BytesWritten is the size of the content written back (or that would be in dry-run).
	BytesWritten int64 `json:"bytes_written" yaml:"bytes_written"`

	// Diff is a unified diff of the change when diffs are requested.
	Diff string `json:"diff,omitempty" yaml:"diff,omitempty"`

	// Duration is the wall time spent on this file.
	Duration time.Duration `json:"-" yaml:"-"`

	// Cause is the underlying error for failed files.
	Cause error `json:"-" yaml:"-"`
}

// Result is the aggregate report of a batch run. Files keeps input order,
// including duplicate paths.
type Result struct {
	Spec          string       `json:"spec"           yaml:"spec"`
	DryRun        bool         `json:"dry_run"        yaml:"dry_run"`
	Total         int          `json:"total"          yaml:"total"`
	ModifiedCount int          `json:"modified_count" yaml:"modified_count"`
	Files         []FileResult `json:"files"          yaml:"files"`
}

// PerFile maps each path to its status. For a path listed more than once the
// last occurrence wins.
func (r Result) PerFile() map[string]Status {
	out := make(map[string]Status, len(r.Files))

	for _, f := range r.Files {
		out[f.Path] = f.Status
	}

	return out
}

// Status returns the status of the last occurrence of path.
func (r Result) Status(path string) (Status, bool) {
	for i := len(r.Files) - 1; i >= 0; i-- {
		if r.Files[i].Path == path {
			return r.Files[i].Status, true
		}
	}

	return "", false
}

// Count returns the number of files with the given status.
func (r Result) Count(status Status) int {
	n := 0

	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}

	return n
}

// Failed reports whether any file ended missing or in error.
func (r Result) Failed() bool {
	return r.Count(StatusError) > 0 || r.Count(StatusMissing) > 0
}

// BytesWritten sums BytesWritten over modified files.
func (r Result) BytesWritten() int64 {
	var total int64

	for _, f := range r.Files {
		if f.Status == StatusModified {
			total += f.BytesWritten
		}
	}

	return total
}
