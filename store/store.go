package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"seo_post_generator/content"
)

var (
	ErrStoreUnavailable = errors.New("post store unavailable")
	ErrIndexCorrupt     = errors.New("post index corrupt")
	ErrDuplicateFile    = errors.New("post file already exists")
	ErrNotFound         = errors.New("post not found")
	ErrInvalidSlug      = errors.New("slug is not ascii kebab-case")
)

const (
	recordExt     = ".md"
	indexFileName = "index.yaml"

	DefaultAuthor   = "עמית"
	DefaultTimezone = "Asia/Jerusalem"
)

// Options configures a FileStore.
type Options struct {
	Author   string
	Location *time.Location
	// Now is overridable for tests.
	Now func() time.Time
}

// FileStore keeps one front-matter markdown file per post plus an index.
// It assumes a single writer.
type FileStore struct {
	dir    string
	author string
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// SaveResult describes a persisted post.
type SaveResult struct {
	Slug     string       `json:"slug"`
	FileName string       `json:"fileName"`
	Path     string       `json:"path"`
	Post     content.Post `json:"post"`
}

// New returns a FileStore rooted at dir.
func New(dir string, opts Options, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("content dir is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Author == "" {
		opts.Author = DefaultAuthor
	}
	if opts.Location == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			return nil, err
		}
		opts.Location = loc
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &FileStore{
		dir:    dir,
		author: opts.Author,
		loc:    opts.Location,
		now:    opts.Now,
		logger: logger,
	}, nil
}

// Dir returns the content directory.
func (s *FileStore) Dir() string { return s.dir }

// LoadAll reads every post record. Malformed records are skipped with a warning.
func (s *FileStore) LoadAll() ([]content.Post, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var posts []content.Post
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != recordExt {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("failed to read post", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		p, err := decodeRecord(data)
		if err != nil {
			s.logger.Warn("failed to parse post", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// Save persists a draft under a unique slug and never overwrites an existing record.
func (s *FileStore) Save(draft content.Draft, known []content.Post, isDraft bool) (SaveResult, error) {
	if !content.ValidSlug(draft.Slug) {
		return SaveResult{}, fmt.Errorf("%w: %q", ErrInvalidSlug, draft.Slug)
	}
	slug := UniqueSlug(draft.Slug, known)

	readTime := draft.ReadTime
	if readTime == "" {
		readTime = content.ReadTime(draft.Content)
	}
	cover := draft.CoverImage
	if cover == "" {
		cover = CoverImage(draft.Tags)
	}

	post := content.Post{
		Slug:        slug,
		Title:       draft.Title,
		Excerpt:     draft.Excerpt,
		Meta:        draft.Meta,
		CoverImage:  cover,
		Author:      s.author,
		PublishedAt: s.Today(),
		ReadTime:    readTime,
		Tags:        draft.Tags,
		Draft:       isDraft,
		Content:     draft.Content,
	}

	data, err := encodeRecord(post)
	if err != nil {
		return SaveResult{}, fmt.Errorf("encode post %s: %w", slug, err)
	}

	fileName := slug + recordExt
	path := filepath.Join(s.dir, fileName)
	if err := writeNew(path, data); err != nil {
		return SaveResult{}, err
	}
	s.logger.Info("post saved", zap.String("slug", slug), zap.String("file", fileName), zap.Bool("draft", isDraft))

	return SaveResult{Slug: slug, FileName: fileName, Path: path, Post: post}, nil
}

// Today is the current civil date in the store's timezone.
func (s *FileStore) Today() string {
	return s.now().In(s.loc).Format(content.DateLayout)
}

// writeNew publishes data at path atomically, failing if path exists.
func writeNew(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateFile, filepath.Base(path))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".post-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDuplicateFile, filepath.Base(path))
		}
		return fmt.Errorf("publish %s: %w", filepath.Base(path), err)
	}
	return nil
}

// UniqueSlug returns the first of base, base-1, base-2, ... not used by known.
func UniqueSlug(base string, known []content.Post) string {
	taken := make(map[string]struct{}, len(known))
	for _, p := range known {
		taken[p.Slug] = struct{}{}
	}
	slug := base
	for n := 1; ; n++ {
		if _, ok := taken[slug]; !ok {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

var coverTerms = map[string]string{
	"SEO":     "search-engine-optimization",
	"מובייל":  "mobile-phone",
	"עיצוב":   "web-design",
	"אתרים":   "website-development",
	"ביצועים": "performance",
	"שיווק":   "marketing",
	"UX":      "user-experience",
}

const defaultCoverTerm = "web-development"

// CoverImage picks a stock image for the primary tag.
func CoverImage(tags []string) string {
	term := defaultCoverTerm
	if len(tags) > 0 {
		if t, ok := coverTerms[strings.TrimSpace(tags[0])]; ok {
			term = t
		}
	}
	return "https://source.unsplash.com/800x400/?" + term
}

// List returns posts in index order (most recent first). Records missing from
// the index follow, newest publishedAt first.
func (s *FileStore) List() ([]content.Post, error) {
	idx, err := s.ReadIndex()
	if err != nil {
		return nil, err
	}
	posts, err := s.LoadAll()
	if err != nil {
		return nil, err
	}

	rank := make(map[string]int, len(idx.Posts))
	for i, e := range idx.Posts {
		rank[e.Slug] = i
	}
	sort.SliceStable(posts, func(i, j int) bool {
		ri, iok := rank[posts[i].Slug]
		rj, jok := rank[posts[j].Slug]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return posts[i].PublishedAt > posts[j].PublishedAt
		}
	})
	return posts, nil
}

// Get finds a post by slug.
func (s *FileStore) Get(slug string) (content.Post, error) {
	fileName := slug + recordExt
	idx, err := s.ReadIndex()
	if err != nil {
		return content.Post{}, err
	}
	if e, ok := idx.Lookup(slug); ok && e.File != "" {
		fileName = e.File
	}
	if filepath.Base(fileName) != fileName {
		return content.Post{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, fileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return content.Post{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return content.Post{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	p, err := decodeRecord(data)
	if err != nil {
		return content.Post{}, fmt.Errorf("parse %s: %w", fileName, err)
	}
	return p, nil
}
