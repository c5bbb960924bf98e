package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"seo_post_generator/content"
)

const (
	DefaultThreshold = 0.4
	DefaultMinWords  = 700
	DefaultMaxWords  = 900

	// contentPrefixRunes bounds the body text compared for duplicates.
	contentPrefixRunes = 2000
	maxParagraphLines  = 10
	minHeaders         = 3
)

var (
	paragraphSplitRe = regexp.MustCompile(`\n\n+`)
	headerRe         = regexp.MustCompile(`(?m)^#+\s+`)
	bulletRe         = regexp.MustCompile(`(?m)^[-*+]\s+`)
	numberedRe       = regexp.MustCompile(`(?m)^\d+\.\s+`)
)

// Similarity is the Jaccard ratio of the lowercased whitespace-token sets.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	setA := tokenSet(a)
	setB := tokenSet(b)

	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

func percent(r float64) int {
	return int(math.Round(r * 100))
}

// DuplicateResult is the outcome of CheckDuplicates.
type DuplicateResult struct {
	Passed bool    `json:"passed"`
	Issues []Issue `json:"issues"`
}

// CheckDuplicates compares the draft against every existing post. Only a
// critical issue (slug collision) fails this check on its own.
func CheckDuplicates(draft content.Draft, existing []content.Post, threshold float64) DuplicateResult {
	var issues []Issue
	draftBody := content.Truncate(draft.Content, contentPrefixRunes)

	for _, p := range existing {
		if sim := Similarity(draft.Title, p.Title); sim > threshold {
			issues = append(issues, Issue{
				Type:         IssueDuplicateTitle,
				Severity:     SeverityHigh,
				Message:      fmt.Sprintf("Title too similar to existing post: %q (%d%% similar)", p.Title, percent(sim)),
				ExistingPost: p.Slug,
			})
		}

		if draft.Slug == p.Slug {
			issues = append(issues, Issue{
				Type:         IssueDuplicateSlug,
				Severity:     SeverityCritical,
				Message:      "Slug already exists: " + p.Slug,
				ExistingPost: p.Slug,
			})
		}

		if sim := Similarity(draftBody, content.Truncate(p.Content, contentPrefixRunes)); sim > threshold {
			issues = append(issues, Issue{
				Type:         IssueDuplicateContent,
				Severity:     SeverityHigh,
				Message:      fmt.Sprintf("Content too similar to existing post: %q (%d%% similar)", p.Title, percent(sim)),
				ExistingPost: p.Slug,
			})
		}
	}

	return DuplicateResult{
		Passed: !hasSeverity(issues, SeverityCritical),
		Issues: issues,
	}
}

// WordCountResult is the outcome of CheckWordCount.
type WordCountResult struct {
	Passed    bool    `json:"passed"`
	WordCount int     `json:"wordCount"`
	Issues    []Issue `json:"issues"`
}

// CheckWordCount counts words after stripping markdown and compares them to
// the [min, max] band.
func CheckWordCount(md string, min, max int) WordCountResult {
	n := content.CountWords(md)

	var issues []Issue
	switch {
	case n < min:
		issues = append(issues, Issue{
			Type:      IssueWordCountLow,
			Severity:  SeverityMedium,
			Message:   fmt.Sprintf("Word count too low: %d (minimum: %d)", n, min),
			WordCount: n,
		})
	case n > max:
		issues = append(issues, Issue{
			Type:      IssueWordCountHigh,
			Severity:  SeverityLow,
			Message:   fmt.Sprintf("Word count too high: %d (maximum: %d)", n, max),
			WordCount: n,
		})
	}

	return WordCountResult{
		Passed:    n >= min && n <= max,
		WordCount: n,
		Issues:    issues,
	}
}

// ReadabilityResult is the outcome of CheckReadability.
type ReadabilityResult struct {
	Passed bool    `json:"passed"`
	Issues []Issue `json:"issues"`
}

// CheckReadability flags structural weaknesses. Its issues never exceed
// medium severity.
func CheckReadability(md string) ReadabilityResult {
	var issues []Issue

	long := 0
	for _, p := range paragraphSplitRe.Split(md, -1) {
		if len(strings.Split(p, "\n")) > maxParagraphLines {
			long++
		}
	}
	if long > 0 {
		issues = append(issues, Issue{
			Type:     IssueLongParagraphs,
			Severity: SeverityLow,
			Message:  fmt.Sprintf("Found %d very long paragraph(s). Consider breaking them up.", long),
		})
	}

	headers := len(headerRe.FindAllStringIndex(md, -1))
	if headers < minHeaders {
		issues = append(issues, Issue{
			Type:     IssueInsufficientHeaders,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("Only %d header(s) found. Aim for at least 3-4 for better structure.", headers),
		})
	}

	if !bulletRe.MatchString(md) && !numberedRe.MatchString(md) {
		issues = append(issues, Issue{
			Type:     IssueNoLists,
			Severity: SeverityLow,
			Message:  "No lists found. Lists improve readability.",
		})
	}

	return ReadabilityResult{
		Passed: !hasSeverity(issues, SeverityCritical, SeverityHigh),
		Issues: issues,
	}
}
