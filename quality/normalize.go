package quality

import (
	"regexp"
	"strings"
)

var (
	punctBeforeHebrewRe = regexp.MustCompile(`([,.!?:;])([א-ת])`)
	spaceBeforePunctRe  = regexp.MustCompile(`\s+([,.!?:;])`)
	horizontalSpaceRe   = regexp.MustCompile(`[ \t]+`)
	// Any whitespace except newline, matching what strings.TrimSpace removes.
	lineEdgeSpaceRe     = regexp.MustCompile(`(?m)^[\t\v\f\r\p{Zs}\x{85}\x{2028}\x{2029}]+|[\t\v\f\r\p{Zs}\x{85}\x{2028}\x{2029}]+$`)
	headerLineRe        = regexp.MustCompile(`(?m)^(#+[ \t]+.+)$`)
	excessNewlinesRe    = regexp.MustCompile(`\n{3,}`)

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
		"‘", "'", "’", "'", "‚", "'",
	)
)

// NormalizeText tidies Hebrew prose and markdown layout. It is idempotent.
func NormalizeText(text string) string {
	s := quoteReplacer.Replace(text)
	s = horizontalSpaceRe.ReplaceAllString(s, " ")
	s = lineEdgeSpaceRe.ReplaceAllString(s, "")
	s = punctBeforeHebrewRe.ReplaceAllString(s, "$1 $2")
	s = spaceBeforePunctRe.ReplaceAllString(s, "$1")
	s = headerLineRe.ReplaceAllString(s, "\n$1\n")
	s = excessNewlinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
