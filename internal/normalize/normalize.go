// Package normalize implements the title and systems-set transforms used
// by the index: a search-key normalizer suitable for substring and prefix
// matching, and a compact reversible encoding of supported systems.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes, strips combining marks and recomposes, so
// "Pokémon" folds to "Pokemon".
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SearchKey normalizes a product title for search: diacritics folded,
// lowercased, every run of non-alphanumeric characters collapsed into a
// single space. Deterministic for a given title.
func SearchKey(title string) string {
	folded, _, err := transform.String(foldDiacritics, title)
	if err != nil {
		// Transform failures leave the title usable, just unfolded.
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

// systemOrder is the canonical encoding order. Compression output depends
// only on set membership, never on input order.
var systemOrder = []struct {
	tag    string
	letter byte
}{
	{"windows", 'W'},
	{"mac", 'M'},
	{"linux", 'L'},
}

// CompressSystems packs a set of supported system tags into a compact
// string, one letter per system in canonical order ("WML", "WL", ...).
// Unknown tags are dropped. The encoding is reversed by ExpandSystems.
func CompressSystems(systems []string) string {
	have := make(map[string]bool, len(systems))
	for _, s := range systems {
		have[s] = true
	}
	var b strings.Builder
	for _, sys := range systemOrder {
		if have[sys.tag] {
			b.WriteByte(sys.letter)
		}
	}
	return b.String()
}

// ExpandSystems is the inverse of CompressSystems. Unrecognized letters
// are ignored.
func ExpandSystems(compact string) []string {
	var systems []string
	for _, sys := range systemOrder {
		if strings.IndexByte(compact, sys.letter) >= 0 {
			systems = append(systems, sys.tag)
		}
	}
	return systems
}
