package content

import (
	"fmt"
	"regexp"
	"strings"
)

// WordsPerMinute is the reading pace assumed for Hebrew prose.
const WordsPerMinute = 200

var (
	headerPrefixRe = regexp.MustCompile(`(?m)^#+\s+`)
	linkRe         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	emphasisRe     = regexp.MustCompile("[*_~`]")
	newlinesRe     = regexp.MustCompile(`\n+`)
	slugSepRe      = regexp.MustCompile(`[^a-z0-9]+`)
	slugRe         = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

const fallbackSlug = "post"

// Slugify folds s to ASCII kebab-case.
func Slugify(s string) string {
	slug := strings.Trim(slugSepRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// ValidSlug reports whether s is already ASCII kebab-case.
func ValidSlug(s string) bool { return slugRe.MatchString(s) }

// StripMarkdown drops header markers, emphasis and link syntax (keeping the
// link text) and folds newlines into spaces.
func StripMarkdown(md string) string {
	s := headerPrefixRe.ReplaceAllString(md, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = emphasisRe.ReplaceAllString(s, "")
	s = newlinesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CountWords counts whitespace-delimited tokens of the markdown-stripped text.
func CountWords(md string) int {
	return len(strings.Fields(StripMarkdown(md)))
}

// ReadTime renders the localized read-time label, ceil(words/200) minutes.
func ReadTime(md string) string {
	words := CountWords(md)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	return fmt.Sprintf("%d דקות קריאה", minutes)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
