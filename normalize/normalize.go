// Package normalize canonicalizes free-text identifiers for equality
// comparisons. Project numbers, part names and machine names are typed by
// hand on shop-floor terminals; matching must survive incidental whitespace,
// case, invisible characters and zero-padding, or the duplicate guard and
// row matching silently miss existing rows.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// invisible runes that NFKC does not fold away but that paste buffers and IME
// input routinely introduce.
var invisible = map[rune]bool{
	'\u200B': true, // zero width space
	'\u200C': true, // zero width non-joiner
	'\u200D': true, // zero width joiner
	'\u2060': true, // word joiner
	'\uFEFF': true, // BOM / zero width no-break space
}

// String Unicode-normalizes s (NFKC), strips zero-width and other invisible
// characters, collapses internal whitespace to single spaces, trims, and
// lowercases.
func String(s string) string {
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if invisible[r] || unicode.Is(unicode.Cf, r) {
			continue
		}
		if unicode.IsSpace(r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}

	fields := strings.Fields(b.String())
	return strings.ToLower(strings.Join(fields, " "))
}

// ProjectNo is String plus leading-zero stripping, so "007" and "7" compare
// equal. An all-zero input keeps a single "0".
func ProjectNo(s string) string {
	s = String(s)
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" && s != "" {
		return "0"
	}
	return trimmed
}
