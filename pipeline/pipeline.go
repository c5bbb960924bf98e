package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"seo_post_generator/content"
	"seo_post_generator/keywords"
	"seo_post_generator/quality"
	"seo_post_generator/store"
)

// ErrMissingCredential aborts a run before any side effect.
var ErrMissingCredential = errors.New("missing LLM credential: set LLM_API_KEY, GROQ_API_KEY or OPENAI_API_KEY")

const (
	DefaultPostsPerRun      = 2
	DefaultKeywordsPerTopic = 3
)

// PostStore persists accepted drafts.
type PostStore interface {
	LoadAll() ([]content.Post, error)
	Save(draft content.Draft, known []content.Post, isDraft bool) (store.SaveResult, error)
	UpdateIndex(newSlugs []string) error
}

// Generator drafts a post for one topic.
type Generator interface {
	GeneratePost(ctx context.Context, topic content.TopicCluster, keywords []string, existing []content.Post) (content.Draft, error)
}

// Validator is the quality gate. It may normalize the draft in place.
type Validator interface {
	Validate(draft *content.Draft, existing []content.Post) quality.Report
}

// Artifact is a derived output rebuilt after the index changes.
type Artifact interface {
	Name() string
	Regenerate(ctx context.Context, posts []content.Post) error
}

// Options configures a run.
type Options struct {
	// APIKey is only checked for presence.
	APIKey           string
	PostsPerRun      int
	DraftMode        bool
	SeedQueries      []string
	KeywordsPerTopic int
	// SitemapURL is printed as a search-engine ping hint.
	SitemapURL string
}

// Pipeline runs the daily generation: keywords, topics, drafts, quality
// gate, persistence and derived artifacts.
type Pipeline struct {
	store     PostStore
	keywords  keywords.Source
	gen       Generator
	gate      Validator
	artifacts []Artifact
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

func New(st PostStore, src keywords.Source, gen Generator, gate Validator, opts Options, logger *zap.Logger, artifacts ...Artifact) *Pipeline {
	if opts.PostsPerRun <= 0 {
		opts.PostsPerRun = DefaultPostsPerRun
	}
	if opts.KeywordsPerTopic <= 0 {
		opts.KeywordsPerTopic = DefaultKeywordsPerTopic
	}
	if gate == nil {
		gate = quality.NewGate()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		store:     st,
		keywords:  src,
		gen:       gen,
		gate:      gate,
		artifacts: artifacts,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one pipeline run. Per-topic failures are recorded in the
// summary; only precondition and store failures are returned as errors.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{
		RunID:      uuid.NewString(),
		State:      RunIdle,
		StartedAt:  p.now(),
		DraftMode:  p.opts.DraftMode,
		SitemapURL: p.opts.SitemapURL,
	}
	log := p.logger.With(zap.String("run_id", sum.RunID))

	err := p.run(ctx, log, sum)
	sum.FinishedAt = p.now()
	if err != nil {
		if !sum.State.IsTerminal() {
			sum.State = RunFailed
		}
		sum.Error = err.Error()
		log.Error("run failed", zap.String("state", string(sum.State)), zap.Error(err))
		return sum, err
	}
	log.Info("run complete",
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Duration("elapsed", sum.FinishedAt.Sub(sum.StartedAt)),
	)
	return sum, nil
}

func (p *Pipeline) run(ctx context.Context, log *zap.Logger, sum *Summary) error {
	if strings.TrimSpace(p.opts.APIKey) == "" {
		return ErrMissingCredential
	}

	existing, err := p.store.LoadAll()
	if err != nil {
		return err
	}
	tags := content.Tags(existing)
	log.Info("loaded existing posts", zap.Int("posts", len(existing)), zap.Int("tags", len(tags)))

	clusters, err := p.keywords.Keywords(ctx, tags, p.opts.SeedQueries, existing)
	if err != nil {
		return fmt.Errorf("fetch keywords: %w", err)
	}
	if err := transitionRun(&sum.State, RunKeywordsFetched); err != nil {
		return err
	}
	if len(clusters) == 0 {
		log.Warn("no keywords available, nothing to generate")
		return transitionRun(&sum.State, RunDone)
	}

	topics := clusters[:min(p.opts.PostsPerRun, len(clusters))]
	if err := transitionRun(&sum.State, RunTopicsSelected); err != nil {
		return err
	}
	for i, t := range topics {
		log.Info("topic selected", zap.Int("rank", i+1), zap.String("topic", t.Topic), zap.Float64("score", t.Score()))
	}

	known := existing
	var slugs []string
	for _, topic := range topics {
		var out TopicOutcome
		out, known, err = p.runTopic(ctx, log.With(zap.String("topic", topic.Topic)), topic, known)
		sum.record(out)
		if err != nil {
			return err
		}
		if out.State == TopicSaved {
			saved := known[len(known)-1]
			slugs = append(slugs, saved.Slug)
			sum.Posts = append(sum.Posts, SavedPost{
				Slug:  saved.Slug,
				Title: saved.Title,
				File:  out.File,
				Tags:  saved.Tags,
			})
		}
	}

	if len(slugs) == 0 {
		return transitionRun(&sum.State, RunDone)
	}

	if err := p.store.UpdateIndex(slugs); err != nil {
		return fmt.Errorf("update index: %w", err)
	}
	if err := transitionRun(&sum.State, RunIndexUpdated); err != nil {
		return err
	}

	for _, a := range p.artifacts {
		if err := a.Regenerate(ctx, known); err != nil {
			log.Warn("artifact regeneration failed (non-critical)", zap.String("artifact", a.Name()), zap.Error(err))
			sum.Warnings = append(sum.Warnings, fmt.Sprintf("%s: %v", a.Name(), err))
		}
	}
	if err := transitionRun(&sum.State, RunSitemapRegenerated); err != nil {
		return err
	}
	return transitionRun(&sum.State, RunDone)
}

// runTopic drafts, validates and saves one topic. It returns the accumulator
// of known posts, extended with the new post when one was saved. The returned
// error is fatal to the run; topic-level failures only show in the outcome.
// A panic inside one topic fails that topic only.
func (p *Pipeline) runTopic(ctx context.Context, log *zap.Logger, topic content.TopicCluster, known []content.Post) (out TopicOutcome, next []content.Post, err error) {
	out = TopicOutcome{Topic: topic.Topic, State: TopicQueued}
	defer func() {
		if r := recover(); r != nil {
			log.Error("topic panicked", zap.Any("panic", r), zap.Stack("stack"))
			// The machine is abandoned mid-step, so the terminal state is forced.
			out.State = TopicFailed
			out.Error = fmt.Sprintf("panic: %v", r)
			next, err = known, nil
		}
	}()
	fail := func(to TopicState, err error) (TopicOutcome, []content.Post, error) {
		if terr := transitionTopic(&out.State, to); terr != nil {
			return out, known, terr
		}
		if err != nil {
			out.Error = err.Error()
		}
		return out, known, nil
	}

	if err := transitionTopic(&out.State, TopicGenerating); err != nil {
		return out, known, err
	}
	kw := topic.Keywords[:min(p.opts.KeywordsPerTopic, len(topic.Keywords))]
	draft, err := p.gen.GeneratePost(ctx, topic, kw, known)
	if err != nil {
		log.Error("failed to generate post", zap.Error(err))
		return fail(TopicFailed, err)
	}

	if err := transitionTopic(&out.State, TopicValidating); err != nil {
		return out, known, err
	}
	report := p.gate.Validate(&draft, known)
	out.Issues = report.AllIssues
	if !report.Passed {
		log.Error("quality check failed, skipping", zap.Any("issues", quality.Blocking(report.AllIssues)))
		return fail(TopicSkipped, fmt.Errorf("quality check failed: %d blocking issue(s)", len(quality.Blocking(report.AllIssues))))
	}
	if len(report.AllIssues) > 0 {
		log.Warn("quality warnings (non-critical)", zap.Any("issues", report.AllIssues))
	}

	if err := transitionTopic(&out.State, TopicSaving); err != nil {
		return out, known, err
	}
	res, err := p.store.Save(draft, known, p.opts.DraftMode)
	if err != nil {
		log.Error("failed to save post", zap.Error(err))
		if errors.Is(err, store.ErrStoreUnavailable) {
			out, known, _ = fail(TopicFailed, err)
			return out, known, err
		}
		return fail(TopicFailed, err)
	}
	if err := transitionTopic(&out.State, TopicSaved); err != nil {
		return out, known, err
	}
	out.Slug = res.Slug
	out.File = res.FileName
	log.Info("post saved", zap.String("slug", res.Slug), zap.String("file", res.FileName))

	return out, slices.Concat(known, []content.Post{res.Post}), nil
}
