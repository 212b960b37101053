package patch

import "strings"

// AlreadyApplied reports whether marker is present in content. An empty
// marker never counts as applied.
func AlreadyApplied(content, marker string) bool {
	return marker != "" && strings.Contains(content, marker)
}
