package media

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeFileName decomposes name (NFD) and maps it onto a single portable
// path segment: every byte outside printable ASCII becomes '_', as do path
// separators, then whitespace runs and underscore runs collapse to one '_'.
// The result is deterministic for a given input.
func NormalizeFileName(name string) string {
	decomposed := norm.NFD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	for i := 0; i < len(decomposed); i++ {
		c := decomposed[i]
		switch {
		case c == '/' || c == '\\':
			b.WriteByte('_')
		case c >= 0x20 && c <= 0x7e:
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}

	var out strings.Builder
	out.Grow(b.Len())
	prevUnderscore := false
	for _, c := range []byte(b.String()) {
		if c == ' ' || c == '\t' || c == '_' {
			if !prevUnderscore {
				out.WriteByte('_')
			}
			prevUnderscore = true
			continue
		}
		out.WriteByte(c)
		prevUnderscore = false
	}
	return out.String()
}
