// Package discover expands command-line targets into the ordered file list a
// batch run consumes. Directories are walked in lexical order; explicit file
// arguments, including ones that do not exist, are passed through unchanged
// so the batch can report them.
package discover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/graft/pkg/textutil"
)

// DefaultExcludeDirs are directory names never descended into.
var DefaultExcludeDirs = []string{".git", "node_modules", "vendor", "__pycache__", ".venv"}

// ErrWalk indicates a directory could not be traversed.
var ErrWalk = errors.New("walk target directory")

// Options control directory expansion. They do not apply to explicit file arguments.
type Options struct {
	// Include keeps only files whose base name or slash-separated path
	// relative to the walked root matches one of these globs. Empty keeps all.
	Include []string

	// ExcludeDirs lists directory names to skip. Nil uses DefaultExcludeDirs.
	ExcludeDirs []string

	// Languages keeps only files enry classifies as one of these languages
	// (case-insensitive). Empty keeps all.
	Languages []string

	// Logger receives skip decisions at debug level.
	Logger *slog.Logger
}

// Walker expands targets according to its Options.
type Walker struct {
	include   []string
	exclude   map[string]bool
	languages map[string]bool
	logger    *slog.Logger
}

// NewWalker returns a Walker for opts.
func NewWalker(opts Options) *Walker {
	excludeDirs := opts.ExcludeDirs
	if excludeDirs == nil {
		excludeDirs = DefaultExcludeDirs
	}

	exclude := make(map[string]bool, len(excludeDirs))
	for _, name := range excludeDirs {
		exclude[name] = true
	}

	languages := make(map[string]bool, len(opts.Languages))
	for _, lang := range opts.Languages {
		languages[strings.ToLower(lang)] = true
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Walker{
		include:   opts.Include,
		exclude:   exclude,
		languages: languages,
		logger:    logger,
	}
}

// Expand returns the ordered file list for targets. Each directory target is
// replaced by its matching files; every other target is kept as given.
func (w *Walker) Expand(ctx context.Context, targets []string) ([]string, error) {
	var paths []string

	for _, target := range targets {
		info, statErr := os.Stat(target)
		if statErr != nil || !info.IsDir() {
			paths = append(paths, target)

			continue
		}

		found, walkErr := w.walk(ctx, target)
		if walkErr != nil {
			return nil, walkErr
		}

		paths = append(paths, found...)
	}

	return paths, nil
}

func (w *Walker) walk(ctx context.Context, root string) ([]string, error) {
	var found []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) || errors.Is(walkErr, fs.ErrNotExist) {
				w.logger.DebugContext(ctx, "skip unreadable path", "path", path, "error", walkErr)

				if entry != nil && entry.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			return walkErr
		}

		if entry.IsDir() {
			if path != root && w.exclude[entry.Name()] {
				return filepath.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		keep, reason := w.accept(root, path)
		if !keep {
			w.logger.DebugContext(ctx, "skip file", "path", path, "reason", reason)

			return nil
		}

		found = append(found, path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrWalk, root, err)
	}

	return found, nil
}

func (w *Walker) accept(root, path string) (bool, string) {
	if !w.matchesInclude(root, path) {
		return false, "include"
	}

	head, readErr := readHead(path)
	if readErr != nil {
		return false, "unreadable"
	}

	if textutil.IsBinary(head) {
		return false, "binary"
	}

	if len(w.languages) > 0 {
		lang := enry.GetLanguage(filepath.Base(path), head)
		if !w.languages[strings.ToLower(lang)] {
			return false, "language"
		}
	}

	return true, ""
}

func (w *Walker) matchesInclude(root, path string) bool {
	if len(w.include) == 0 {
		return true
	}

	base := filepath.Base(path)

	rel, relErr := filepath.Rel(root, path)
	if relErr != nil {
		rel = path
	}

	rel = filepath.ToSlash(rel)

	for _, pattern := range w.include {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}

		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}

	return false
}

// readHead returns up to BinarySniffLength bytes from the start of path.
func readHead(path string) ([]byte, error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("open: %w", openErr)
	}
	defer f.Close()

	head, readErr := io.ReadAll(io.LimitReader(f, textutil.BinarySniffLength))
	if readErr != nil {
		return nil, fmt.Errorf("read: %w", readErr)
	}

	return head, nil
}
