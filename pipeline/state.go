package pipeline

import "fmt"

// RunState is the progress of one pipeline run.
type RunState string

const (
	RunIdle               RunState = "idle"
	RunKeywordsFetched    RunState = "keywords_fetched"
	RunTopicsSelected     RunState = "topics_selected"
	RunIndexUpdated       RunState = "index_updated"
	RunSitemapRegenerated RunState = "sitemap_regenerated"
	RunDone               RunState = "done"
	RunFailed             RunState = "failed"
)

// TopicState is the progress of one selected topic.
type TopicState string

const (
	TopicQueued     TopicState = "queued"
	TopicGenerating TopicState = "generating"
	TopicValidating TopicState = "validating"
	TopicSaving     TopicState = "saving"
	TopicSaved      TopicState = "saved"
	TopicSkipped    TopicState = "skipped"
	TopicFailed     TopicState = "failed"
)

// IsTerminal reports whether the run has finished.
func (s RunState) IsTerminal() bool {
	return s == RunDone || s == RunFailed
}

// IsTerminal reports whether the topic has finished.
func (s TopicState) IsTerminal() bool {
	switch s {
	case TopicSaved, TopicSkipped, TopicFailed:
		return true
	default:
		return false
	}
}

func allowedRun(from, to RunState) bool {
	if to == RunFailed {
		return !from.IsTerminal()
	}
	switch from {
	case RunIdle:
		return to == RunKeywordsFetched
	case RunKeywordsFetched:
		// An empty keyword list ends the run without topics.
		return to == RunTopicsSelected || to == RunDone
	case RunTopicsSelected:
		// Nothing saved: no index or sitemap work.
		return to == RunIndexUpdated || to == RunDone
	case RunIndexUpdated:
		return to == RunSitemapRegenerated
	case RunSitemapRegenerated:
		return to == RunDone
	default:
		return false
	}
}

func allowedTopic(from, to TopicState) bool {
	switch from {
	case TopicQueued:
		return to == TopicGenerating
	case TopicGenerating:
		return to == TopicValidating || to == TopicFailed
	case TopicValidating:
		return to == TopicSaving || to == TopicSkipped
	case TopicSaving:
		return to == TopicSaved || to == TopicFailed
	default:
		return false
	}
}

// transitionRun moves *cur to next if the edge is allowed.
func transitionRun(cur *RunState, next RunState) error {
	if !allowedRun(*cur, next) {
		return fmt.Errorf("disallowed run transition: %s -> %s", *cur, next)
	}
	*cur = next
	return nil
}

// transitionTopic moves *cur to next if the edge is allowed.
func transitionTopic(cur *TopicState, next TopicState) error {
	if !allowedTopic(*cur, next) {
		return fmt.Errorf("disallowed topic transition: %s -> %s", *cur, next)
	}
	*cur = next
	return nil
}
