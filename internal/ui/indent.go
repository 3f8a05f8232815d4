package ui

import (
	"strings"
	"unicode/utf8"
)

// Indent prefixes the first line of s with n spaces and bullet, and every
// following line with enough spaces to align it under the first one. The
// bullet counts one column per rune whatever the locale's East Asian width.
func Indent(s string, n int, bullet string) string {
	pad := strings.Repeat(" ", n+utf8.RuneCountInString(bullet))
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = strings.Repeat(" ", n) + bullet + line
			continue
		}
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}
