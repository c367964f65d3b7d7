package printer

import (
	"fmt"
	"strings"
)

// quote renders s as a single-line string literal.
func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04X`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// blockString renders s as a block string. One-line values stay on one
// line; longer values put each line on its own row between the quotes so
// indenting the rows uniformly does not change the parsed value.
func blockString(s string) []string {
	s = strings.ReplaceAll(s, `"""`, `\"""`)
	lines := strings.Split(s, "\n")
	if len(lines) == 1 && !strings.HasSuffix(s, `"`) && !strings.HasSuffix(s, `\`) {
		return []string{`"""` + s + `"""`}
	}
	for i, l := range lines {
		if strings.TrimLeft(l, " \t") == "" {
			lines[i] = ""
		}
	}
	out := make([]string, 0, len(lines)+2)
	if first := lines[0]; first != "" && (first[0] == ' ' || first[0] == '\t') {
		// leading whitespace of the first line survives only on the
		// opening line, which is excluded from de-indentation
		out = append(out, `"""`+first)
		lines = lines[1:]
	} else {
		out = append(out, `"""`)
	}
	out = append(out, lines...)
	return append(out, `"""`)
}
