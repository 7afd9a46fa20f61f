package shared

import (
	"strings"
	"unicode"
)

func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// TrimmedOrEmpty reports the trimmed value and whether anything was left.
func TrimmedOrEmpty(s string) (string, bool) {
	t := strings.TrimSpace(s)
	return t, t != ""
}
