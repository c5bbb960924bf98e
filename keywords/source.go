package keywords

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"seo_post_generator/content"
)

// ErrProviderNotImplemented is returned for providers that cannot serve keywords.
var ErrProviderNotImplemented = errors.New("keyword provider not implemented")

// Source supplies ranked topic clusters not yet covered by existing posts.
type Source interface {
	Keywords(ctx context.Context, existingTags, seedQueries []string, existingPosts []content.Post) ([]content.TopicCluster, error)
}

// New builds the Source for the named provider.
func New(provider, apiKey, catalogPath string, rng *rand.Rand, logger *zap.Logger) (Source, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	switch name {
	case "", "stub":
		return NewCatalogSource(DefaultCatalog(), rng, logger), nil
	case "file":
		if catalogPath == "" {
			return nil, fmt.Errorf("%w: provider file requires KEYWORD_CATALOG", ErrProviderNotImplemented)
		}
		clusters, err := LoadCatalog(catalogPath)
		if err != nil {
			return nil, err
		}
		return NewCatalogSource(clusters, rng, logger), nil
	case "ahrefs", "semrush":
		if apiKey == "" {
			return nil, fmt.Errorf("%w: %s requires KEYWORD_API_KEY and is not yet available; use KEYWORD_PROVIDER=stub", ErrProviderNotImplemented, name)
		}
		return nil, fmt.Errorf("%w: %s is not yet available; use KEYWORD_PROVIDER=stub", ErrProviderNotImplemented, name)
	default:
		return nil, fmt.Errorf("%w: unknown KEYWORD_PROVIDER %q (supported: stub, file)", ErrProviderNotImplemented, provider)
	}
}
