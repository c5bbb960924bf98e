package store

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"seo_post_generator/content"
)

const frontMatterDelim = "---\n"

// encodeRecord renders a post as YAML front matter followed by its markdown body.
func encodeRecord(p content.Post) ([]byte, error) {
	meta, err := yaml.Marshal(p)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(frontMatterDelim)
	buf.Write(meta)
	buf.WriteString(frontMatterDelim)
	buf.WriteString(p.Content)
	return buf.Bytes(), nil
}

// decodeRecord is the strict inverse of encodeRecord.
func decodeRecord(data []byte) (content.Post, error) {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(s, frontMatterDelim) {
		return content.Post{}, errors.New("missing front matter")
	}
	rest := s[len(frontMatterDelim):]

	var meta, body string
	if strings.HasPrefix(rest, frontMatterDelim) {
		body = rest[len(frontMatterDelim):]
	} else {
		end := strings.Index(rest, "\n"+frontMatterDelim)
		if end < 0 {
			return content.Post{}, errors.New("unterminated front matter")
		}
		meta = rest[:end+1]
		body = rest[end+1+len(frontMatterDelim):]
	}

	var p content.Post
	dec := yaml.NewDecoder(strings.NewReader(meta))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return content.Post{}, fmt.Errorf("front matter: %w", err)
	}
	if strings.TrimSpace(p.Slug) == "" {
		return content.Post{}, errors.New("front matter: slug is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return content.Post{}, errors.New("front matter: title is required")
	}
	p.Content = body
	return p, nil
}
