package keywords

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"seo_post_generator/content"
)

// MaxClusters caps the number of clusters returned per call.
const MaxClusters = 8

// minTitleWordLen keeps short words from matching post titles.
const minTitleWordLen = 3

// CatalogSource ranks a fixed catalog of clusters against the existing corpus.
type CatalogSource struct {
	clusters []content.TopicCluster
	rng      *rand.Rand
	logger   *zap.Logger
}

// NewCatalogSource returns a Source over clusters. A nil rng is seeded from the clock.
func NewCatalogSource(clusters []content.TopicCluster, rng *rand.Rand, logger *zap.Logger) *CatalogSource {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogSource{clusters: clusters, rng: rng, logger: logger}
}

func (s *CatalogSource) Keywords(_ context.Context, existingTags, seedQueries []string, existingPosts []content.Post) ([]content.TopicCluster, error) {
	tags := lowerAll(existingTags)
	titles := make([]string, 0, len(existingPosts))
	for _, p := range existingPosts {
		titles = append(titles, strings.ToLower(p.Title))
	}

	var candidates []content.TopicCluster
	for _, c := range s.clusters {
		words := strings.Fields(strings.ToLower(c.Topic))
		if matchesTag(words, tags) || matchesTitle(words, titles) {
			s.logger.Debug("cluster already covered", zap.String("topic", c.Topic))
			continue
		}
		candidates = append(candidates, c)
	}

	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	seeds := lowerAll(seedQueries)
	slices.SortStableFunc(candidates, func(a, b content.TopicCluster) int {
		if len(seeds) > 0 {
			sa, sb := matchesSeed(a, seeds), matchesSeed(b, seeds)
			if sa != sb {
				if sa {
					return -1
				}
				return 1
			}
		}
		return cmp.Compare(b.Score(), a.Score())
	})

	if len(candidates) > MaxClusters {
		candidates = candidates[:MaxClusters]
	}
	return candidates, nil
}

func matchesTag(words, tags []string) bool {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		for _, w := range words {
			if strings.Contains(tag, w) || strings.Contains(w, tag) {
				return true
			}
		}
	}
	return false
}

func matchesTitle(words, titles []string) bool {
	for _, title := range titles {
		for _, w := range words {
			if utf8.RuneCountInString(w) > minTitleWordLen && strings.Contains(title, w) {
				return true
			}
		}
	}
	return false
}

func matchesSeed(c content.TopicCluster, seeds []string) bool {
	hay := append([]string{c.Topic}, c.Keywords...)
	for _, h := range hay {
		h = strings.ToLower(h)
		for _, s := range seeds {
			if s != "" && strings.Contains(h, s) {
				return true
			}
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

type catalogFile struct {
	Clusters []content.TopicCluster `yaml:"clusters"`
}

// LoadCatalog reads clusters from a YAML file of the form `clusters: [...]`.
func LoadCatalog(path string) ([]content.TopicCluster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse keyword catalog %s: %w", path, err)
	}
	for i, c := range f.Clusters {
		if strings.TrimSpace(c.Topic) == "" || c.SearchVolume <= 0 || c.Difficulty <= 0 {
			return nil, fmt.Errorf("keyword catalog %s: cluster %d needs topic, searchVolume and difficulty", path, i)
		}
	}
	return f.Clusters, nil
}

// DefaultCatalog is the built-in set of clusters for an Israeli web studio.
func DefaultCatalog() []content.TopicCluster {
	return []content.TopicCluster{
		{Topic: "בניית אתרים", Keywords: []string{"בניית אתרים לעסקים קטנים", "כמה עולה בניית אתר", "בניית אתר תדמית", "אתרים לבעלי מקצוע"}, SearchVolume: 1200, Difficulty: 45},
		{Topic: "קידום אתרים", Keywords: []string{"קידום אתרים אורגני", "SEO לעסקים קטנים", "איך להגיע לעמוד הראשון בגוגל", "קידום בגוגל מקומי"}, SearchVolume: 980, Difficulty: 52},
		{Topic: "שיפור מהירות אתר", Keywords: []string{"למה האתר שלי איטי", "שיפור מהירות אתר", "PageSpeed Optimization", "Core Web Vitals"}, SearchVolume: 650, Difficulty: 38},
		{Topic: "Google Business Profile", Keywords: []string{"הקמת Google Business Profile", "איך להופיע בגוגל מפות", "Google My Business לעסק", "חיבור עסק לגוגל"}, SearchVolume: 720, Difficulty: 35},
		{Topic: "עיצוב UX/UI", Keywords: []string{"עיצוב UX/UI לאתרים", "טמפלייטים לאתרים", "עיצוב נכון של דף נחיתה", "צבעים לאתר עסקי"}, SearchVolume: 540, Difficulty: 42},
		{Topic: "שיווק תוכן", Keywords: []string{"שיווק דיגיטלי לעסקים קטנים בישראל", "פרסום בפייסבוק לעסק מקומי", "תוכן שיווקי לאתר", "אסטרטגיית תוכן למובייל"}, SearchVolume: 890, Difficulty: 48},
		{Topic: "נגישות אתרים", Keywords: []string{"נגישות אתרים בישראל", "תקן נגישות ישראלי", "כיצד להנגיש אתר", "נגישות WCAG"}, SearchVolume: 610, Difficulty: 40},
		{Topic: "אבטחת אתרים", Keywords: []string{"SSL למה חשוב", "אבטחת אתר WordPress", "גיבוי אתר אוטומטי", "הגנה מפני האקרים"}, SearchVolume: 470, Difficulty: 44},
		{Topic: "תחזוקת אתרים", Keywords: []string{"תחזוקת אתר חודשית", "עדכוני WordPress", "ניטור אתר 24/7", "שיפור ביצועי אתר"}, SearchVolume: 530, Difficulty: 38},
		{Topic: "פרסום ממומן", Keywords: []string{"Google Ads לעסקים קטנים", "פרסום בפייסבוק", "מתי כדאי לפרסם", "תקציב פרסום דיגיטלי"}, SearchVolume: 820, Difficulty: 50},
		{Topic: "דומיין ואחסון", Keywords: []string{"בחירת דומיין לעסק", "אחסון אתרים בישראל", "hosting מומלץ", "העברת אתר לאחסון חדש"}, SearchVolume: 450, Difficulty: 32},
		{Topic: "אימייל מרקטינג", Keywords: []string{"בניית רשימת תפוצה", "MailChimp למתחילים", "ניוזלטר יעיל", "שיעורי פתיחה גבוהים"}, SearchVolume: 390, Difficulty: 35},
	}
}
