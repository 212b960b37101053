// Package textutil provides byte-level checks applied to target files before
// they reach the patch engine: binary sniffing, encoding validation, and line
// accounting for reports.
package textutil

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// Sentinel errors returned by CheckText.
var (
	// ErrBinary indicates the data looks like a binary file.
	ErrBinary = errors.New("binary content")
	// ErrInvalidUTF8 indicates the data is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("invalid UTF-8 content")
)

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// CheckText returns nil when data can be patched as text.
func CheckText(data []byte) error {
	if IsBinary(data) {
		return ErrBinary
	}

	if !utf8.Valid(data) {
		return ErrInvalidUTF8
	}

	return nil
}

// CountLines returns the number of newline-delimited lines in data.
// A non-empty buffer without a trailing newline counts the last partial line.
// Returns 0 for empty data.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	lines := bytes.Count(data, []byte{'\n'})

	if data[len(data)-1] != '\n' {
		lines++
	}

	return lines
}

// LineDelta returns how many lines after has over before.
func LineDelta(before, after string) int {
	return CountLines([]byte(after)) - CountLines([]byte(before))
}
