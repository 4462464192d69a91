// Package slug builds URL path segments from display names.
package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Latin letters with diacritics that show up in product and color names.
var transliterate = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"ç", "c",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o", "ø", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ß", "ss", "æ", "ae", "œ", "oe",
	"&", " and ",
)

// Generate lowercases name, transliterates accented letters and joins the
// remaining alphanumeric runs with single hyphens.
//
//	"Essential Oversized Tee" → "essential-oversized-tee"
//	"Crème Knit & Co."        → "creme-knit-and-co"
func Generate(name string) string {
	s := transliterate.Replace(strings.ToLower(strings.TrimSpace(name)))
	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}
