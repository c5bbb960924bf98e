package generator

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"seo_post_generator/content"
)

const (
	maxMetaRunes  = 160
	metaKeepRunes = 157
	previewRunes  = 500
)

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\n?(.*?)\\n?```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\n?(.*?)\\n?```")
	spacesRe    = regexp.MustCompile(`\s+`)
)

var requiredFields = []string{"title", "slug", "excerpt", "meta", "tags", "content", "readTime"}

// ParseDraft recovers a structured draft from the model's free text.
func ParseDraft(raw string) (content.Draft, error) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	candidate := strings.TrimSpace(extractObject(text))
	if candidate == "" {
		return content.Draft{}, malformed("no JSON object found", text)
	}
	if !isObject(candidate) {
		return content.Draft{}, malformed("response is not a valid JSON object", candidate)
	}

	for _, f := range requiredFields {
		if !truthy(gjson.Get(candidate, f)) {
			return content.Draft{}, malformed("missing required field: "+f, candidate)
		}
	}

	var d content.Draft
	if err := json.Unmarshal([]byte(candidate), &d); err != nil {
		return content.Draft{}, malformed(err.Error(), candidate)
	}

	if utf8.RuneCountInString(d.Meta) > maxMetaRunes {
		d.Meta = content.Truncate(d.Meta, metaKeepRunes) + "..."
	}
	d.Slug = content.Slugify(d.Slug)
	return d, nil
}

// extractObject prefers a fenced block and falls back to the first balanced
// object that parses.
func extractObject(text string) string {
	for _, re := range []*regexp.Regexp{jsonFenceRe, anyFenceRe} {
		if m := re.FindStringSubmatch(text); m != nil && isObject(strings.TrimSpace(m[1])) {
			return m[1]
		}
	}
	first := ""
	for i := strings.IndexByte(text, '{'); i >= 0; {
		obj := balancedObject(text[i:])
		if obj != "" && isObject(obj) {
			return obj
		}
		if first == "" {
			first = obj
		}
		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return first
}

func isObject(s string) bool {
	return gjson.Valid(s) && gjson.Parse(s).IsObject()
}

// balancedObject returns the prefix of text (which starts with '{') up to its
// matching brace, counting braces outside JSON strings.
func balancedObject(text string) string {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}

// truthy mirrors JavaScript truthiness for a decoded JSON value.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	default:
		return r.Exists()
	}
}

func malformed(reason, text string) error {
	preview := strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))
	return &MalformedError{
		Reason:  reason,
		Preview: content.Truncate(preview, previewRunes),
	}
}
