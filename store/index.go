package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// IndexEntry maps a slug to its record file and a collision-free identifier.
type IndexEntry struct {
	ID   string `yaml:"id" json:"id"`
	Slug string `yaml:"slug" json:"slug"`
	File string `yaml:"file" json:"file"`
}

// Index lists posts most recent first.
type Index struct {
	Posts []IndexEntry `yaml:"posts" json:"posts"`
}

// Lookup finds the entry for slug.
func (idx Index) Lookup(slug string) (IndexEntry, bool) {
	for _, e := range idx.Posts {
		if e.Slug == slug {
			return e, true
		}
	}
	return IndexEntry{}, false
}

var nonIdentRe = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Identifier derives a stable identifier from a slug.
func Identifier(slug string) string {
	id := strings.Trim(nonIdentRe.ReplaceAllString(slug, "_"), "_")
	if id == "" {
		return "post"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "post_" + id
	}
	return id
}

func (s *FileStore) indexPath() string {
	return filepath.Join(s.dir, indexFileName)
}

// ReadIndex parses the index. A missing index is empty.
func (s *FileStore) ReadIndex() (Index, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Index{}, nil
		}
		return Index{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var idx Index
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&idx); err != nil {
		if errors.Is(err, io.EOF) {
			return Index{}, nil
		}
		return Index{}, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	for i, e := range idx.Posts {
		if e.Slug == "" || e.ID == "" {
			return Index{}, fmt.Errorf("%w: entry %d lacks slug or id", ErrIndexCorrupt, i)
		}
	}
	return idx, nil
}

// UpdateIndex prepends newSlugs, in order, ahead of the existing entries.
// Slugs already indexed are left where they are.
func (s *FileStore) UpdateIndex(newSlugs []string) error {
	idx, err := s.ReadIndex()
	if err != nil {
		return err
	}

	ids := make(map[string]struct{}, len(idx.Posts))
	for _, e := range idx.Posts {
		ids[e.ID] = struct{}{}
	}

	var added []IndexEntry
	for _, slug := range newSlugs {
		if _, ok := idx.Lookup(slug); ok {
			continue
		}
		dup := false
		for _, e := range added {
			if e.Slug == slug {
				dup = true
			}
		}
		if dup {
			continue
		}

		base := Identifier(slug)
		id := base
		for n := 2; ; n++ {
			if _, taken := ids[id]; !taken {
				break
			}
			id = fmt.Sprintf("%s_%d", base, n)
		}
		ids[id] = struct{}{}
		added = append(added, IndexEntry{ID: id, Slug: slug, File: slug + recordExt})
	}
	if len(added) == 0 {
		return nil
	}

	idx.Posts = append(added, idx.Posts...)
	data, err := yaml.Marshal(idx)
	if err != nil {
		return err
	}
	if err := replaceFile(s.indexPath(), data); err != nil {
		return err
	}
	s.logger.Info("index updated", zap.Int("added", len(added)), zap.Int("total", len(idx.Posts)))
	return nil
}

// replaceFile atomically replaces path with data.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
