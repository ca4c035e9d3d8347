package contentindex

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify converts a title or relative path into a stable entry ID:
// diacritics stripped, lowercased, runs of non-alphanumerics collapsed to a
// single dash. Path separators become double dashes so hierarchy stays
// readable in the ID.
func Slugify(s string) string {
	s = strings.ReplaceAll(filepathToSlash(s), "/", "--")

	decomposed := norm.NFD.String(s)
	var sb strings.Builder
	lastDash := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining mark from decomposition: drop it.
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
			lastDash = false
		case r == '-':
			sb.WriteRune('-')
			lastDash = false
		default:
			if !lastDash {
				sb.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(sb.String(), "-")
}

func filepathToSlash(s string) string {
	return strings.ReplaceAll(s, "\\", "/")
}
