// Package levenshtein computes edit distances between short identifiers and
// picks the closest candidate for "did you mean" hints.
package levenshtein

// Context reuses its row buffer across Distance calls. It is not safe for
// concurrent use.
type Context struct {
	row []int
}

func (ctx *Context) buffer(length int) []int {
	if cap(ctx.row) < length {
		ctx.row = make([]int, length)
	}

	return ctx.row[:length]
}

// Distance returns the minimum number of single-rune insertions, deletions
// and substitutions that turn a into b. It keeps one row of O(len(a)) ints.
func (ctx *Context) Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(rb) == 0 {
		return len(ra)
	}

	row := ctx.buffer(len(ra) + 1)
	for i := range row {
		row[i] = i
	}

	for j, rbj := range rb {
		diag := row[0]
		row[0] = j + 1

		for i, rai := range ra {
			above := row[i+1]

			cost := 1
			if rai == rbj {
				cost = 0
			}

			row[i+1] = min(above+1, row[i]+1, diag+cost)
			diag = above
		}
	}

	return row[len(ra)]
}

// Distance is a convenience wrapper around a fresh Context.
func Distance(a, b string) int {
	var ctx Context

	return ctx.Distance(a, b)
}

// Closest returns the candidate nearest to target, provided its distance is at
// most maxDistance. Ties go to the earlier candidate.
func Closest(target string, candidates []string, maxDistance int) (string, bool) {
	var ctx Context

	best := ""
	bestDist := maxDistance + 1

	for _, candidate := range candidates {
		d := ctx.Distance(target, candidate)
		if d < bestDist {
			best = candidate
			bestDist = d
		}
	}

	return best, bestDist <= maxDistance
}
