// Package sanitize cleans user-provided text before it is stored or echoed
// to the completion backend. Printable content is never rewritten.
package sanitize

import (
	"strings"
	"unicode"
)

// Text trims s and drops control characters other than newline and tab.
func Text(s string) string {
	return strings.TrimSpace(strings.Map(dropControl, s))
}

func dropControl(r rune) rune {
	if r == '\n' || r == '\t' {
		return r
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}
