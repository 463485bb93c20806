package reporting

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents removes combining marks ("Bogotá" → "Bogota", "Ñ" → "N") and
// replaces any remaining non-ASCII rune with '?'.  The PDF core fonts and the
// chart bitmap font only cover ASCII reliably.
func StripAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n':
			return ' '
		case r < 0x20:
			return -1
		case r > 0x7e:
			return '?'
		}
		return r
	}, out)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// PDFText prepares free text for the document: accents stripped, then
// truncated when limit is positive.
func PDFText(s string, limit int) string {
	s = StripAccents(strings.TrimSpace(s))
	if limit > 0 {
		s = Truncate(s, limit)
	}
	return s
}

//Personal.AI order the ending
