package lexer

import "strings"

// BlockStringValue computes the value of a block string from the raw text
// between its triple quotes.
//
// The common indentation is the smallest count of leading whitespace over
// every non-blank line except the first. That many columns are removed from
// each line but the first, then leading and trailing blank lines are dropped.
func BlockStringValue(raw string) string {
	lines := splitLines(raw)

	common := -1
	for _, line := range lines[1:] {
		indent := leadingWhitespace(line)
		if indent == len(line) {
			continue
		}
		if common < 0 || indent < common {
			common = indent
		}
	}

	if common > 0 {
		for i := 1; i < len(lines); i++ {
			n := leadingWhitespace(lines[i])
			if n > common {
				n = common
			}
			lines[i] = lines[i][n:]
		}
	}

	for len(lines) > 0 && isBlank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// splitLines splits on \r\n, \n and \r.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

func leadingWhitespace(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isBlank(s string) bool {
	return leadingWhitespace(s) == len(s)
}
