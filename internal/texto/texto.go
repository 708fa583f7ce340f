// Package texto holds the text normalisation shared by every fuzzy match against
// user-entered or legacy data.
package texto

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizar lower-cases s, trims it and strips diacritics ("Médico" → "medico").
func Normalizar(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Clave normalises s and additionally folds '_' and '-' into spaces and collapses
// runs of whitespace, so "Cerrado_Ganado" and "cerrado  ganado" compare equal.
func Clave(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, Normalizar(s))
	return strings.Join(strings.Fields(s), " ")
}

// ContienePalabra reports whether the already-normalised t contains palabra as a
// whole word.
func ContienePalabra(t, palabra string) bool {
	for _, w := range strings.FieldsFunc(t, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if w == palabra {
			return true
		}
	}
	return false
}
