package publisher

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"seo_post_generator/content"
)

var testPosts = []content.Post{
	{Slug: "fast-sites", Title: "אתרים מהירים", Excerpt: "למה מהירות חשובה", PublishedAt: "2025-01-02", ReadTime: "4 דקות קריאה", Author: "עמית", Tags: []string{"ביצועים"}, Content: "# אתרים מהירים\n\n## למה\n\n- טעינה\n- המרות\n\n<script>alert(1)</script>"},
	{Slug: "wip", Title: "טיוטה", PublishedAt: "2025-01-03", Draft: true, Content: "טיוטה"},
}

func TestSitemapBuild(t *testing.T) {
	s := NewSitemap("https://example.co.il/", filepath.Join(t.TempDir(), "sitemap.xml"), nil)
	s.Now = func() time.Time { return time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC) }

	data, err := s.Build(testPosts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Errorf("missing xml header")
	}

	var set urlSet
	if err := xml.Unmarshal(data, &set); err != nil {
		t.Fatalf("sitemap is not valid xml: %v", err)
	}
	var locs []string
	for _, u := range set.URLs {
		locs = append(locs, u.Loc)
	}
	want := []string{
		"https://example.co.il/",
		"https://example.co.il/blog",
		"https://example.co.il/blog/fast-sites",
		"https://example.co.il/blog/wip",
		"https://example.co.il/#about",
		"https://example.co.il/#services",
		"https://example.co.il/#shop",
		"https://example.co.il/#contact",
	}
	if strings.Join(locs, "\n") != strings.Join(want, "\n") {
		t.Fatalf("locs = %v, want %v", locs, want)
	}
	if set.URLs[0].LastMod != "2025-01-05" || set.URLs[0].Priority != "1.0" {
		t.Errorf("homepage entry = %+v", set.URLs[0])
	}
	if post := set.URLs[2]; post.LastMod != "2025-01-02" || post.ChangeFreq != "monthly" || post.Priority != "0.8" {
		t.Errorf("post entry = %+v", post)
	}
}

func TestSitemapDrafts(t *testing.T) {
	drafts := []content.Post{{Slug: "new-post", Title: "חדש", PublishedAt: "2025-01-04", Draft: true}}

	s := NewSitemap("", "", nil)
	data, err := s.Build(drafts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(string(data), DefaultBaseURL+"/blog/new-post") {
		t.Errorf("draft post missing from default sitemap")
	}

	s.ExcludeDrafts = true
	data, err = s.Build(drafts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(string(data), "/blog/new-post") {
		t.Errorf("draft post listed with ExcludeDrafts")
	}
}

func TestSitemapRegenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "sitemap.xml")
	s := NewSitemap("", path, nil)
	if err := s.Regenerate(context.Background(), testPosts); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sitemap: %v", err)
	}
	if !strings.Contains(string(data), "/blog/fast-sites") {
		t.Errorf("sitemap missing post")
	}
}

func TestStaticSiteRegenerate(t *testing.T) {
	dir := t.TempDir()
	s := NewStaticSite("https://example.co.il", dir, nil)
	if err := s.Regenerate(context.Background(), testPosts); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	index, err := os.ReadFile(filepath.Join(dir, "blog", "index.html"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(index), `href="/blog/fast-sites"`) {
		t.Errorf("index missing post link")
	}
	if !strings.Contains(string(index), `href="/blog/wip"`) {
		t.Errorf("index missing draft post link")
	}

	page, err := os.ReadFile(filepath.Join(dir, "blog", "fast-sites", "index.html"))
	if err != nil {
		t.Fatalf("read post page: %v", err)
	}
	html := string(page)
	for _, want := range []string{
		`dir="rtl"`,
		`<link rel="canonical" href="https://example.co.il/blog/fast-sites">`,
		`<h2 id=`,
		"<li>טעינה</li>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("post page missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw html in content was not escaped")
	}
	if _, err := os.Stat(filepath.Join(dir, "blog", "wip", "index.html")); err != nil {
		t.Errorf("draft page not exported: %v", err)
	}
}

func TestStaticSiteExcludeDrafts(t *testing.T) {
	dir := t.TempDir()
	s := NewStaticSite("", dir, nil)
	s.ExcludeDrafts = true
	if err := s.Regenerate(context.Background(), testPosts); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	index, err := os.ReadFile(filepath.Join(dir, "blog", "index.html"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if strings.Contains(string(index), "/blog/wip") {
		t.Errorf("index lists a draft")
	}
	if _, err := os.Stat(filepath.Join(dir, "blog", "wip")); !os.IsNotExist(err) {
		t.Errorf("draft page exported")
	}
}

func TestStaticSiteRejectsUnsafeSlug(t *testing.T) {
	s := NewStaticSite("", t.TempDir(), nil)
	err := s.Regenerate(context.Background(), []content.Post{{Slug: "../escape", Title: "x"}})
	if err == nil {
		t.Fatalf("expected error for path-like slug")
	}
}
