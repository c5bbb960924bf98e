package quality

// Severity classifies an issue; critical and high block publication.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Blocking reports whether the severity fails validation.
func (s Severity) Blocking() bool {
	return s == SeverityCritical || s == SeverityHigh
}

// Issue types.
const (
	IssueDuplicateTitle      = "duplicate_title"
	IssueDuplicateSlug       = "duplicate_slug"
	IssueDuplicateContent    = "duplicate_content"
	IssueWordCountLow        = "word_count_low"
	IssueWordCountHigh       = "word_count_high"
	IssueLongParagraphs      = "long_paragraphs"
	IssueInsufficientHeaders = "insufficient_headers"
	IssueNoLists             = "no_lists"
)

// Issue is a single finding of the quality gate.
type Issue struct {
	Type         string   `json:"type"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	ExistingPost string   `json:"existingPost,omitempty"`
	WordCount    int      `json:"wordCount,omitempty"`
}

// Blocking returns the issues whose severity fails validation.
func Blocking(issues []Issue) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Severity.Blocking() {
			out = append(out, i)
		}
	}
	return out
}

func hasSeverity(issues []Issue, sev ...Severity) bool {
	for _, i := range issues {
		for _, s := range sev {
			if i.Severity == s {
				return true
			}
		}
	}
	return false
}
