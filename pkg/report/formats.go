package report

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Output formats.
const (
	// FormatText is the human-readable table with a summary line.
	FormatText = "text"
	// FormatJSON is the indented JSON encoding of the batch result.
	FormatJSON = "json"
	// FormatYAML is the YAML encoding of the batch result.
	FormatYAML = "yaml"

	formatYMLAlias = "yml"
)

// ErrUnsupportedFormat indicates the requested output format is not supported.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Formats returns the supported output formats.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML}
}

// NormalizeFormat canonicalizes a user-provided output format string.
func NormalizeFormat(format string) string {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == formatYMLAlias {
		return FormatYAML
	}

	return normalized
}

// ValidateFormat returns the canonical form of format or ErrUnsupportedFormat.
func ValidateFormat(format string) (string, error) {
	normalized := NormalizeFormat(format)
	if slices.Contains(Formats(), normalized) {
		return normalized, nil
	}

	return "", fmt.Errorf("%w: %s (want one of %s)", ErrUnsupportedFormat, format, strings.Join(Formats(), ", "))
}
