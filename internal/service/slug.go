package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators   = regexp.MustCompile(`[-\s]+`)
)

// Slugify convierte un nombre en un identificador apto para URLs:
// "Other Frameworks" -> "other-frameworks", "Café Été" -> "cafe-ete".
func Slugify(value string) string {
	ascii := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	folded, _, err := transform.String(ascii, value)
	if err != nil {
		return ""
	}
	folded = slugInvalidChars.ReplaceAllString(strings.ToLower(folded), "")
	folded = slugSeparators.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-_")
}
