// Package textnorm normaliza texto libre para búsquedas: sin acentos, minúsculas y espacios colapsados.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold devuelve la clave de búsqueda de s: "  Hôpital  Saint-Éloi " -> "hopital saint-eloi".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}

// Title capitaliza nombres propios para presentación ("jean dupont" -> "Jean Dupont").
func Title(s string) string {
	return cases.Title(language.French).String(strings.Join(strings.Fields(s), " "))
}

// Contains informa si needle aparece en haystack tras normalizar ambos.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
