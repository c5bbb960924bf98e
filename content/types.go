package content

// DateLayout is the civil-date format used for PublishedAt.
const DateLayout = "2006-01-02"

// Post is a persisted blog post record.
type Post struct {
	Slug        string   `yaml:"slug" json:"slug"`
	Title       string   `yaml:"title" json:"title"`
	Excerpt     string   `yaml:"excerpt" json:"excerpt"`
	Meta        string   `yaml:"meta,omitempty" json:"meta,omitempty"`
	CoverImage  string   `yaml:"coverImage" json:"coverImage"`
	Author      string   `yaml:"author" json:"author"`
	PublishedAt string   `yaml:"publishedAt" json:"publishedAt"`
	ReadTime    string   `yaml:"readTime" json:"readTime"`
	Tags        []string `yaml:"tags" json:"tags"`
	Draft       bool     `yaml:"draft,omitempty" json:"draft,omitempty"`
	// Content lives in the record body, not the front matter.
	Content string `yaml:"-" json:"content"`
}

// Draft is the structured record recovered from the generative service,
// before validation and persistence.
type Draft struct {
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Excerpt    string   `json:"excerpt"`
	Meta       string   `json:"meta"`
	Tags       []string `json:"tags"`
	Content    string   `json:"content"`
	ReadTime   string   `json:"readTime"`
	CoverImage string   `json:"coverImage,omitempty"`
}

// TopicCluster is a candidate subject bundled with its search keywords.
type TopicCluster struct {
	Topic        string   `yaml:"topic" json:"topic"`
	Keywords     []string `yaml:"keywords" json:"keywords"`
	SearchVolume int      `yaml:"searchVolume" json:"searchVolume"`
	Difficulty   int      `yaml:"difficulty" json:"difficulty"`
}

// Score is the demand-to-competition ratio used for ranking.
func (t TopicCluster) Score() float64 {
	if t.Difficulty <= 0 {
		return float64(t.SearchVolume)
	}
	return float64(t.SearchVolume) / float64(t.Difficulty)
}

// Tags returns the distinct tags across posts in first-seen order.
func Tags(posts []Post) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
