package generator

import (
	"fmt"
	"strings"

	"seo_post_generator/content"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
	// Topic is carried for logging and offline clients.
	Topic string
}

// PromptStyle selects how demanding the drafting instruction is.
type PromptStyle int

const (
	// StyleConcise asks for a 500-800 word article.
	StyleConcise PromptStyle = iota
	// StyleDetailed asks for a 700-900 word, data-heavy article.
	StyleDetailed
)

// Link is an internal cross-link suggestion.
type Link struct {
	Title string
	Slug  string
}

func (l Link) markdown() string {
	return fmt.Sprintf("[%s](/blog/%s)", l.Title, l.Slug)
}

const outputSchema = "```json\n" + `{
  "title": "כותרת מושכת בעברית",
  "slug": "descriptive-english-slug",
  "excerpt": "תקציר של 1-2 משפטים",
  "meta": "תיאור מטא עד 150 תווים",
  "tags": ["תג1", "תג2", "תג3"],
  "content": "המאמר המלא ב-Markdown עם H1, H2, H3, רשימות ודוגמאות",
  "readTime": "X דקות קריאה"
}` + "\n```"

// BuildPrompt 生成首稿提示词。
func BuildPrompt(style PromptStyle, topic content.TopicCluster, keywords []string, links []Link, existing []content.Post) Prompt {
	linkList := make([]string, 0, len(links))
	for _, l := range links {
		linkList = append(linkList, l.markdown())
	}
	titles := make([]string, 0, len(existing))
	for _, p := range existing {
		titles = append(titles, "- "+p.Title)
	}

	var sb strings.Builder
	sb.WriteString("אתה כותב תוכן SEO מקצועי בעברית לאתר של חברת פיתוח אתרים בישראל (Amit Solutions).\n\n")
	sb.WriteString(fmt.Sprintf("**נושא:** %s\n", topic.Topic))
	sb.WriteString(fmt.Sprintf("**מילות מפתח:** %s\n\n", strings.Join(keywords, ", ")))

	switch style {
	case StyleDetailed:
		sb.WriteString("**דרישות תוכן (חובה!):**\n")
		sb.WriteString("1. 700-900 מילים בעברית, תוכן מעמיק ולא שטחי.\n")
		sb.WriteString("2. H1 עם ערך מוסף ברור, מבוא של 2-3 פסקאות, 4-6 כותרות H2/H3, סיכום עם bullet points וקריאה לפעולה.\n")
		sb.WriteString("3. נתונים ומספרים קונקרטיים, דוגמאות עם תוצאות מדידות, שמות כלים ושירותים ספציפיים.\n")
		sb.WriteString("4. מדריך \"איך לעשות\" של 5-7 צעדים, לכל צעד הסבר מפורט וטיפ.\n")
		sb.WriteString("5. דוגמאות מהשוק הישראלי, מחירים בשקלים.\n")
	default:
		sb.WriteString("**דרישות:**\n")
		sb.WriteString("1. מאמר בעברית באורך 500-800 מילים.\n")
		sb.WriteString("2. מבנה: כותרת ראשית (H1), מבוא, 3-4 כותרות משנה (H2/H3), סיכום וקריאה לפעולה.\n")
		sb.WriteString("3. לפחות סעיף \"איך לעשות\" אחד עם צעדים פרקטיים.\n")
		sb.WriteString("4. דוגמאות רלוונטיות לישראל ולעסקים קטנים, בסגנון ישיר ונגיש.\n")
	}
	if len(linkList) > 0 {
		sb.WriteString(fmt.Sprintf("- שלב באופן טבעי קישורים פנימיים: %s\n", strings.Join(linkList, " או ")))
	}
	sb.WriteString("- תיאור מטא (meta description) עד 150 תווים.\n")
	sb.WriteString("- slug באנגלית בלבד, מופרד במקפים.\n")
	sb.WriteString("- 2-3 תגים רלוונטיים בעברית.\n")
	if len(titles) > 0 {
		sb.WriteString("- **חשוב:** אל תכתוב מאמר דומה לפוסטים הקיימים:\n")
		sb.WriteString(strings.Join(titles, "\n"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n**פורמט תשובה (JSON בלבד):**\n")
	sb.WriteString(outputSchema)
	sb.WriteString("\n")

	system := "אתה כותב תוכן SEO מקצועי בעברית. תמיד החזר תשובות בפורמט JSON תקין."
	if style == StyleDetailed {
		system = "You are a professional SEO content writer in Hebrew. Return ONLY valid JSON: no markdown fences, no explanations. Write at least 700-900 words in Hebrew."
		sb.WriteString("\n**CRITICAL: Return ONLY the JSON object. No code blocks, no explanations.**")
	}

	return Prompt{
		System: system,
		User:   sb.String(),
		Topic:  topic.Topic,
	}
}
