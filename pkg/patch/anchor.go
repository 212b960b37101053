package patch

import (
	"fmt"
	"regexp"
	"sync"
)

// patternCache holds compiled patterns keyed by their source text.
// Specs are data-only, so the engine compiles on first use.
var patternCache sync.Map

func compile(src string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(src); ok {
		re, isRe := cached.(*regexp.Regexp)
		if isRe {
			return re, nil
		}
	}

	re, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %w", ErrPatternEngine, src, err)
	}

	actual, _ := patternCache.LoadOrStore(src, re)

	compiled, isRe := actual.(*regexp.Regexp)
	if !isRe {
		return re, nil
	}

	return compiled, nil
}

// Match describes where an anchor pattern matched inside a file's content.
type Match struct {
	// Pattern is the index of the winning pattern in the candidate list.
	Pattern int

	// Start and End delimit the matched span in bytes.
	Start int
	End   int

	re      *regexp.Regexp
	content string
	indices []int
}

// Text returns the full matched span.
func (m *Match) Text() string {
	return m.content[m.Start:m.End]
}

// Group returns the text captured by the named group, or "" when the group
// did not participate in the match.
func (m *Match) Group(name string) string {
	idx := m.re.SubexpIndex(name)
	if idx < 0 || m.indices[2*idx] < 0 {
		return ""
	}

	return m.content[m.indices[2*idx]:m.indices[2*idx+1]]
}

// Expand renders template with the match's groups using regexp.Expand rules.
func (m *Match) Expand(template string) string {
	return string(m.re.ExpandString(nil, template, m.content, m.indices))
}

// Locate tries each pattern against the whole content in order and returns the
// leftmost match of the first pattern that matches. Later patterns are never
// compiled or evaluated once one matches. A nil Match with a nil error means
// no pattern matched.
func Locate(content string, patterns []string) (*Match, error) {
	for idx, src := range patterns {
		re, err := compile(src)
		if err != nil {
			return nil, fmt.Errorf("anchor %d: %w", idx, err)
		}

		loc := re.FindStringSubmatchIndex(content)
		if loc == nil {
			continue
		}

		return &Match{
			Pattern: idx,
			Start:   loc[0],
			End:     loc[1],
			re:      re,
			content: content,
			indices: loc,
		}, nil
	}

	return nil, nil //nolint:nilnil // no match is a valid outcome.
}

// LocateAll is like Locate but returns every non-overlapping occurrence of the
// winning pattern, top to bottom.
func LocateAll(content string, patterns []string) ([]*Match, error) {
	first, err := Locate(content, patterns)
	if err != nil || first == nil {
		return nil, err
	}

	all := first.re.FindAllStringSubmatchIndex(content, -1)
	matches := make([]*Match, 0, len(all))

	for _, loc := range all {
		// Empty matches carry no anchor text to wrap.
		if loc[0] == loc[1] {
			continue
		}

		matches = append(matches, &Match{
			Pattern: first.Pattern,
			Start:   loc[0],
			End:     loc[1],
			re:      first.re,
			content: content,
			indices: loc,
		})
	}

	return matches, nil
}
