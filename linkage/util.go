package linkage

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxTextLength = 10000

// sanitizeText drops control characters, collapses whitespace and trims.
// It reports false when nothing is left.
func sanitizeText(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	b := strings.Builder{}
	lastSpace := false
	for _, r := range s {
		if r == '\u0000' {
			continue
		}
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if lastSpace {
				continue
			}
			b.WriteRune(' ')
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", false
	}
	if len(out) > maxTextLength {
		cut := maxTextLength
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = strings.TrimSpace(out[:cut])
	}
	return out, true
}
