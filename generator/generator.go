package generator

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"seo_post_generator/content"
)

// internalLinks is the number of existing posts suggested as cross-links.
const internalLinks = 2

// Generator 负责根据主题和已有文章生成稿件。
type Generator struct {
	llm      LLMClient
	provider string
	style    PromptStyle
	rng      *rand.Rand
	logger   *zap.Logger
}

func NewGenerator(llm LLMClient, profile Profile, rng *rand.Rand, logger *zap.Logger) (*Generator, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		llm:      llm,
		provider: profile.Name,
		style:    profile.Style,
		rng:      rng,
		logger:   logger,
	}, nil
}

// GeneratePost drafts a post for topic. Service failures unwrap to
// ErrGenerationFailed, unusable responses to ErrMalformedGeneration.
func (g *Generator) GeneratePost(ctx context.Context, topic content.TopicCluster, keywords []string, existing []content.Post) (content.Draft, error) {
	prompt := BuildPrompt(g.style, topic, keywords, g.sampleLinks(existing), existing)

	start := time.Now()
	raw, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		if !errors.Is(err, ErrGenerationFailed) {
			err = &GenerationError{Provider: g.provider, Err: err}
		}
		return content.Draft{}, err
	}
	g.logger.Debug("llm response received",
		zap.String("provider", g.provider),
		zap.String("topic", topic.Topic),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return ParseDraft(raw)
}

// sampleLinks picks random existing posts without reordering the caller's slice.
func (g *Generator) sampleLinks(existing []content.Post) []Link {
	n := min(internalLinks, len(existing))
	links := make([]Link, 0, n)
	for _, i := range g.rng.Perm(len(existing))[:n] {
		links = append(links, Link{Title: existing[i].Title, Slug: existing[i].Slug})
	}
	return links
}
