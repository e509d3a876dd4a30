package release

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanTitle normalizes an artist or album title for matching purposes.
// Removes leading articles, punctuation and accents, and collapses whitespace.
func CleanTitle(title string) string {
	s := strings.ToLower(title)

	// Remove accents
	s = removeAccents(s)

	// Normalize punctuation
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", " ")

	// Split on colon to handle subtitles (e.g., "OK Computer: OKNOTOK")
	// and strip leading articles from each part.
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	// Remove remaining punctuation
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	s = b.String()

	// Collapse whitespace
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	s = strings.TrimSpace(s)
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}

// NormalizeSearchQuery prepares a search query for indexer APIs.
// Converts & to "and" and collapses whitespace. Unlike CleanTitle it
// preserves case and most punctuation for better indexer results.
func NormalizeSearchQuery(query string) string {
	s := strings.ReplaceAll(query, "&", "and")
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
