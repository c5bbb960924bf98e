package publisher

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"seo_post_generator/content"
)

const pageHead = `<!DOCTYPE html>
<html lang="he" dir="rtl">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
<link rel="canonical" href="{{.Canonical}}">
</head>
<body>
`

var indexTmpl = template.Must(template.New("index").Parse(pageHead + `<main>
<h1>{{.Title}}</h1>
{{range .Posts}}<article>
<h2><a href="/blog/{{.Slug}}">{{.Title}}</a></h2>
<p class="meta">{{.PublishedAt}} · {{.ReadTime}}</p>
<p>{{.Excerpt}}</p>
</article>
{{else}}<p>אין עדיין פוסטים.</p>
{{end}}</main>
</body>
</html>
`))

var postTmpl = template.Must(template.New("post").Parse(pageHead + `<main>
<article>
{{with .Post.CoverImage}}<img src="{{.}}" alt="" width="800" height="400">
{{end}}<p class="meta">{{.Post.Author}} · {{.Post.PublishedAt}} · {{.Post.ReadTime}}</p>
{{.Body}}
{{with .Post.Tags}}<ul class="tags">{{range .}}<li>{{.}}</li>{{end}}</ul>
{{end}}</article>
<p><a href="/blog">לכל הפוסטים</a></p>
</main>
</body>
</html>
`))

type indexPage struct {
	Title       string
	Description string
	Canonical   string
	Posts       []content.Post
}

type postPage struct {
	Title       string
	Description string
	Canonical   string
	Post        content.Post
	Body        template.HTML
}

// StaticSite exports the blog as plain HTML under Dir.
type StaticSite struct {
	BaseURL       string
	Dir           string
	ExcludeDrafts bool
	md            goldmark.Markdown
	logger        *zap.Logger
}

func NewStaticSite(baseURL, dir string, logger *zap.Logger) *StaticSite {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaticSite{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Dir:     dir,
		md:      newMarkdown(),
		logger:  logger,
	}
}

func (s *StaticSite) Name() string { return "static site" }

// Regenerate writes blog/index.html and one blog/<slug>/index.html per post.
func (s *StaticSite) Regenerate(ctx context.Context, posts []content.Post) error {
	visible := published(posts, s.ExcludeDrafts)

	var buf bytes.Buffer
	err := indexTmpl.Execute(&buf, indexPage{
		Title:       "הבלוג",
		Description: "מדריכים וטיפים לבניית אתרים, קידום ותחזוקה לעסקים קטנים.",
		Canonical:   s.BaseURL + "/blog",
		Posts:       visible,
	})
	if err != nil {
		return fmt.Errorf("render blog index: %w", err)
	}
	if err := writeFile(filepath.Join(s.Dir, "blog", "index.html"), buf.Bytes()); err != nil {
		return err
	}

	for _, p := range visible {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writePost(p); err != nil {
			return fmt.Errorf("export %s: %w", p.Slug, err)
		}
	}
	s.logger.Info("static site exported", zap.String("dir", s.Dir), zap.Int("posts", len(visible)))
	return nil
}

func (s *StaticSite) writePost(p content.Post) error {
	if p.Slug == "" || strings.ContainsAny(p.Slug, `/\`) || p.Slug == "." || p.Slug == ".." {
		return fmt.Errorf("invalid slug %q", p.Slug)
	}
	body, err := mdToHTML(s.md, p.Content)
	if err != nil {
		return err
	}
	description := p.Meta
	if description == "" {
		description = p.Excerpt
	}

	var buf bytes.Buffer
	err = postTmpl.Execute(&buf, postPage{
		Title:       p.Title,
		Description: description,
		Canonical:   s.BaseURL + "/blog/" + p.Slug,
		Post:        p,
		Body:        template.HTML(body),
	})
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.Dir, "blog", p.Slug, "index.html"), buf.Bytes())
}
