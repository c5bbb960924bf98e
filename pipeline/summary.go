package pipeline

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"seo_post_generator/quality"
)

// TopicOutcome records what happened to one selected topic.
type TopicOutcome struct {
	Topic  string          `json:"topic"`
	State  TopicState      `json:"state"`
	Slug   string          `json:"slug,omitempty"`
	File   string          `json:"file,omitempty"`
	Error  string          `json:"error,omitempty"`
	Issues []quality.Issue `json:"issues,omitempty"`
}

// SavedPost describes a post persisted during the run.
type SavedPost struct {
	Slug  string   `json:"slug"`
	Title string   `json:"title"`
	File  string   `json:"file"`
	Tags  []string `json:"tags"`
}

// Summary is the report of one run.
type Summary struct {
	RunID      string         `json:"runId"`
	State      RunState       `json:"state"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt,omitzero"`
	DraftMode  bool           `json:"draftMode"`
	Topics     []TopicOutcome `json:"topics"`
	Posts      []SavedPost    `json:"posts"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Warnings   []string       `json:"warnings,omitempty"`
	SitemapURL string         `json:"sitemapUrl,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func (s *Summary) record(out TopicOutcome) {
	s.Topics = append(s.Topics, out)
	if out.State == TopicSaved {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

// Write renders the human-readable report.
func (s *Summary) Write(w io.Writer) error {
	rule := strings.Repeat("=", 60)
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nSUMMARY (run %s)\n%s\n", rule, s.RunID, rule)
	fmt.Fprintf(&b, "Successfully generated: %d post(s)\n", s.Succeeded)
	fmt.Fprintf(&b, "Failed: %d post(s)\n", s.Failed)

	if len(s.Posts) > 0 {
		b.WriteString("\nGenerated posts:\n")
		for i, p := range s.Posts {
			fmt.Fprintf(&b, "%d. %s\n", i+1, p.Title)
			fmt.Fprintf(&b, "   Slug: %s\n", p.Slug)
			fmt.Fprintf(&b, "   File: %s\n", p.File)
			fmt.Fprintf(&b, "   Tags: %s\n\n", strings.Join(p.Tags, ", "))
		}
		if s.DraftMode {
			b.WriteString("Posts created in DRAFT mode. Review before publishing.\n")
		}
	}
	for _, t := range s.Topics {
		if t.State == TopicSaved {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s", t.Topic, t.State)
		if t.Error != "" {
			fmt.Fprintf(&b, " (%s)", t.Error)
		}
		b.WriteString("\n")
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", warn)
	}
	if s.SitemapURL != "" && s.State == RunDone && s.Succeeded > 0 {
		fmt.Fprintf(&b, "To notify Google, visit:\n   https://www.google.com/ping?sitemap=%s\n", url.QueryEscape(s.SitemapURL))
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}
