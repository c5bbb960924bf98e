package publisher

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"seo_post_generator/content"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// section is a fixed anchor on the homepage.
type section struct {
	anchor   string
	priority string
}

var sections = []section{
	{"about", "0.8"},
	{"services", "0.8"},
	{"shop", "0.9"},
	{"contact", "0.7"},
}

// Sitemap regenerates sitemap.xml from the post list.
type Sitemap struct {
	BaseURL       string
	Path          string
	ExcludeDrafts bool
	// Now stamps the static entries; defaults to time.Now.
	Now    func() time.Time
	logger *zap.Logger
}

func NewSitemap(baseURL, path string, logger *zap.Logger) *Sitemap {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sitemap{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Path:    path,
		Now:     time.Now,
		logger:  logger,
	}
}

func (s *Sitemap) Name() string { return "sitemap" }

// Build renders the sitemap document.
func (s *Sitemap) Build(posts []content.Post) ([]byte, error) {
	today := s.Now().Format(content.DateLayout)

	set := urlSet{XMLNS: sitemapNS}
	set.URLs = append(set.URLs,
		sitemapURL{Loc: s.BaseURL + "/", LastMod: today, ChangeFreq: "weekly", Priority: "1.0"},
		sitemapURL{Loc: s.BaseURL + "/blog", LastMod: today, ChangeFreq: "weekly", Priority: "0.9"},
	)
	for _, p := range published(posts, s.ExcludeDrafts) {
		lastmod := p.PublishedAt
		if lastmod == "" {
			lastmod = today
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.BaseURL + "/blog/" + p.Slug,
			LastMod:    lastmod,
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}
	for _, sec := range sections {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.BaseURL + "/#" + sec.anchor,
			LastMod:    today,
			ChangeFreq: "monthly",
			Priority:   sec.priority,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// Regenerate rewrites the sitemap file.
func (s *Sitemap) Regenerate(ctx context.Context, posts []content.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.Build(posts)
	if err != nil {
		return err
	}
	if err := writeFile(s.Path, data); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	s.logger.Info("sitemap generated", zap.String("file", s.Path), zap.Int("posts", len(posts)))
	return nil
}
