package patch

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// scanTemplate splits an insertion template the way regexp.Expand reads it.
// literal is the text that survives expansion whatever the match, with $$
// collapsed to $. refs lists every $name, ${name} and $N reference in order.
func scanTemplate(template string) (literal string, refs []string) {
	var sb strings.Builder

	for {
		idx := strings.IndexByte(template, '$')
		if idx < 0 {
			sb.WriteString(template)

			return sb.String(), refs
		}

		sb.WriteString(template[:idx])
		template = template[idx+1:]

		if strings.HasPrefix(template, "$") {
			sb.WriteByte('$')

			template = template[1:]

			continue
		}

		name, rest, ok := templateRef(template)
		if !ok {
			// regexp.Expand keeps a malformed reference as a literal dollar.
			sb.WriteByte('$')

			continue
		}

		refs = append(refs, name)
		template = rest
	}
}

func templateRef(s string) (name, rest string, ok bool) {
	brace := strings.HasPrefix(s, "{")
	if brace {
		s = s[1:]
	}

	end := 0

	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}

		end += size
	}

	if end == 0 {
		return "", "", false
	}

	name = s[:end]

	if brace {
		if end >= len(s) || s[end] != '}' {
			return "", "", false
		}

		end++
	}

	return name, s[end:], true
}

// maxGroupDigits bounds numeric references the way regexp.Expand does.
const maxGroupDigits = 8

// definesRef reports whether re has the group a template reference names.
// Numeric references without a leading zero address groups by index.
func definesRef(re *regexp.Regexp, ref string) bool {
	numeric := len(ref) <= maxGroupDigits && (ref == "0" || ref[0] != '0')
	if numeric {
		num, err := strconv.Atoi(ref)
		if err == nil {
			return num <= re.NumSubexp()
		}
	}

	return re.SubexpIndex(ref) >= 0
}
