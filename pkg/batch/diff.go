package batch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultDiffContext is the number of unchanged lines shown around a change.
const DefaultDiffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// UnifiedDiff renders a line-level unified diff between before and after.
// It returns "" when the texts are equal.
func UnifiedDiff(path, before, after string, contextLines int) string {
	if before == after {
		return ""
	}

	if contextLines < 0 {
		contextLines = DefaultDiffContext
	}

	lines := diffLines(before, after)

	var sb strings.Builder

	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)

	for _, h := range hunks(lines, contextLines) {
		writeHunk(&sb, lines, h)
	}

	return sb.String()
}

func diffLines(before, after string) []diffLine {
	dmp := diffmatchpatch.New()
	src, dst, lineArray := dmp.DiffLinesToChars(before, after)

	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lineArray)

	var out []diffLine

	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			out = append(out, diffLine{op: d.Type, text: line})
		}
	}

	return out
}

type hunk struct {
	start, end int
}

// hunks groups changed lines whose gaps are at most 2*contextLines.
func hunks(lines []diffLine, contextLines int) []hunk {
	var out []hunk

	for i, l := range lines {
		if l.op == diffmatchpatch.DiffEqual {
			continue
		}

		start := max(0, i-contextLines)
		end := min(len(lines), i+contextLines+1)

		if len(out) > 0 && start <= out[len(out)-1].end {
			out[len(out)-1].end = end

			continue
		}

		out = append(out, hunk{start: start, end: end})
	}

	return out
}

func writeHunk(sb *strings.Builder, lines []diffLine, h hunk) {
	oldStart, newStart := 1, 1

	for _, l := range lines[:h.start] {
		if l.op != diffmatchpatch.DiffInsert {
			oldStart++
		}

		if l.op != diffmatchpatch.DiffDelete {
			newStart++
		}
	}

	oldCount, newCount := 0, 0

	for _, l := range lines[h.start:h.end] {
		if l.op != diffmatchpatch.DiffInsert {
			oldCount++
		}

		if l.op != diffmatchpatch.DiffDelete {
			newCount++
		}
	}

	fmt.Fprintf(sb, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)

	for _, l := range lines[h.start:h.end] {
		prefix := " "

		switch l.op {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffEqual:
		}

		sb.WriteString(prefix)
		sb.WriteString(l.text)

		if !strings.HasSuffix(l.text, "\n") {
			sb.WriteString("\n\\ No newline at end of file\n")
		}
	}
}
