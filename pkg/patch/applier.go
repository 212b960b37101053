package patch

import (
	"fmt"
	"strings"
)

// Outcome is the detailed result of applying a spec to one file's content.
type Outcome struct {
	// Content is the transformed text. It equals the input when nothing applied.
	Content string

	// Changed is true iff Content differs from the input.
	Changed bool

	// ImportInserted is true when the import step spliced its line.
	ImportInserted bool

	// ImportPresent is true when the import marker was already in the input.
	ImportPresent bool

	// BlocksInserted counts wrapped anchor occurrences.
	BlocksInserted int

	// BlockPresent is true when the block marker was already in the input.
	BlockPresent bool

	// Pattern is the index of the winning anchor pattern, or -1.
	Pattern int
}

// Apply transforms content according to spec and reports whether it changed.
// It performs no I/O.
func Apply(content string, spec Spec) (string, bool, error) {
	out, err := ApplyDetailed(content, spec)
	if err != nil {
		return content, false, err
	}

	return out.Content, out.Changed, nil
}

// ApplyDetailed is Apply with per-step bookkeeping. The import step and the
// block step are guarded independently by their own markers, so a file that
// carries one of them still receives the other. The import only lands in a
// file that has the block or gets it in the same pass; content where no
// insertion anchor matches is returned as is.
func ApplyDetailed(content string, spec Spec) (Outcome, error) {
	out := Outcome{Content: content, Pattern: -1}

	if spec.HasImport() {
		importErr := applyImport(&out, spec)
		if importErr != nil {
			return Outcome{Content: content, Pattern: -1}, importErr
		}
	}

	blockErr := applyBlock(&out, spec)
	if blockErr != nil {
		return Outcome{Content: content, Pattern: -1}, blockErr
	}

	if !out.BlockPresent && out.BlocksInserted == 0 {
		return Outcome{Content: content, ImportPresent: out.ImportPresent, Pattern: -1}, nil
	}

	out.Changed = out.Content != content

	return out, nil
}

func applyImport(out *Outcome, spec Spec) error {
	if AlreadyApplied(out.Content, spec.EffectiveImportMarker()) {
		out.ImportPresent = true

		return nil
	}

	re, err := compile(spec.ImportAnchor)
	if err != nil {
		return fmt.Errorf("import anchor: %w", err)
	}

	loc := re.FindStringIndex(out.Content)
	if loc == nil {
		return nil
	}

	out.Content = spliceAfterLine(out.Content, loc[0], loc[1], spec.ImportInsertion)
	out.ImportInserted = true

	return nil
}

func applyBlock(out *Outcome, spec Spec) error {
	if AlreadyApplied(out.Content, spec.Marker) {
		out.BlockPresent = true

		return nil
	}

	var (
		matches []*Match
		err     error
	)

	if spec.AllOccurrences {
		matches, err = LocateAll(out.Content, spec.Anchors)
	} else {
		var first *Match

		first, err = Locate(out.Content, spec.Anchors)
		if first != nil {
			matches = []*Match{first}
		}
	}

	if err != nil {
		return err
	}

	if len(matches) == 0 {
		if spec.RequireMatch {
			return fmt.Errorf("%w: %q", ErrAnchorNotFound, spec.Name)
		}

		return nil
	}

	out.Content = wrapMatches(out.Content, matches, spec.Template)
	out.BlocksInserted = len(matches)
	out.Pattern = matches[0].Pattern

	return nil
}

// wrapMatches replaces each matched span with the expanded template. Matches
// are ordered and non-overlapping; text between them is copied verbatim.
func wrapMatches(content string, matches []*Match, template string) string {
	var sb strings.Builder

	sb.Grow(len(content) + len(matches)*len(template))

	prev := 0

	for _, m := range matches {
		sb.WriteString(content[prev:m.Start])
		sb.WriteString(m.Expand(template))

		prev = m.End
	}

	sb.WriteString(content[prev:])

	return sb.String()
}

// spliceAfterLine inserts text at the start of the line following the line
// that contains the anchor match [start, end). A match ending right after a
// newline already sits at that boundary, unless it is empty and so has not
// consumed its line yet. The inserted text is newline-terminated so it never
// joins the next line.
func spliceAfterLine(content string, start, end int, text string) string {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	at := end
	if at == 0 || start == end || content[at-1] != '\n' {
		nl := strings.IndexByte(content[at:], '\n')
		if nl < 0 {
			if content == "" || strings.HasSuffix(content, "\n") {
				return content + text
			}

			return content + "\n" + text
		}

		at += nl + 1
	}

	return content[:at] + text + content[at:]
}
