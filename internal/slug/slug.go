// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}\s_-]`)
	separators = regexp.MustCompile(`[\s_]+`)
	hyphens    = regexp.MustCompile(`-{2,}`)
)

// foldMarks strips combining accents from Latin letters so "é" and "e"
// slug the same. Marks on other scripts are part of the letter and stay.
func foldMarks(s string) string {
	var b strings.Builder
	latinBase := false
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			if latinBase {
				continue
			}
		} else {
			latinBase = unicode.Is(unicode.Latin, r)
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// Generate lower-cases s, folds Latin accents, drops special characters and joins
// words with single hyphens: "Hand-made  Lamps & Lights!" → "hand-made-lamps-lights".
// Letters and digits of any script are kept.
func Generate(s string) string {
	result := strings.ToLower(foldMarks(strings.TrimSpace(s)))
	result = disallowed.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	result = hyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
