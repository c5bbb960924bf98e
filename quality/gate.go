package quality

import "seo_post_generator/content"

// Checks groups the sub-results of a validation.
type Checks struct {
	Duplicates  DuplicateResult   `json:"duplicates"`
	WordCount   WordCountResult   `json:"wordCount"`
	Readability ReadabilityResult `json:"readability"`
}

// Report is the result of validating one draft.
type Report struct {
	Passed    bool    `json:"passed"`
	Checks    Checks  `json:"checks"`
	AllIssues []Issue `json:"allIssues"`
}

// Gate holds the thresholds used by Validate.
type Gate struct {
	Threshold float64
	MinWords  int
	MaxWords  int
}

// NewGate returns a gate with the default thresholds.
func NewGate() *Gate {
	return &Gate{
		Threshold: DefaultThreshold,
		MinWords:  DefaultMinWords,
		MaxWords:  DefaultMaxWords,
	}
}

// Validate normalizes the draft's text fields in place, runs every check and
// fails the report iff any issue is critical or high.
func (g *Gate) Validate(draft *content.Draft, existing []content.Post) Report {
	draft.Content = NormalizeText(draft.Content)
	draft.Title = NormalizeText(draft.Title)
	draft.Excerpt = NormalizeText(draft.Excerpt)
	draft.Meta = NormalizeText(draft.Meta)

	checks := Checks{
		Duplicates:  CheckDuplicates(*draft, existing, g.Threshold),
		WordCount:   CheckWordCount(draft.Content, g.MinWords, g.MaxWords),
		Readability: CheckReadability(draft.Content),
	}

	var all []Issue
	all = append(all, checks.Duplicates.Issues...)
	all = append(all, checks.WordCount.Issues...)
	all = append(all, checks.Readability.Issues...)

	return Report{
		Passed:    !hasSeverity(all, SeverityCritical, SeverityHigh),
		Checks:    checks,
		AllIssues: all,
	}
}

// Validate runs a default gate.
func Validate(draft *content.Draft, existing []content.Post) Report {
	return NewGate().Validate(draft, existing)
}
