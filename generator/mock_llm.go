package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// It returns a fenced JSON draft long and structured enough to pass the quality gate.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	topic := prompt.Topic
	if topic == "" {
		topic = "פיתוח אתרים"
	}
	h := fnv.New32a()
	h.Write([]byte(topic))
	tag := fmt.Sprintf("%08x", h.Sum32())

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s: המדריך המעשי\n\n", topic))
	sections := []string{"למה זה חשוב", "איך מתחילים", "טעויות נפוצות", "סיכום"}
	for i, sec := range sections {
		sb.WriteString(fmt.Sprintf("## %s\n\n", sec))
		for p := 0; p < 3; p++ {
			sb.WriteString(mockParagraph(topic, tag, i*3+p))
			sb.WriteString("\n\n")
		}
		if i == 1 {
			sb.WriteString("- בדקו את המצב הקיים\n- הגדירו יעד מדיד\n- בצעו ומדדו שוב\n\n")
		}
	}

	draft := map[string]any{
		"title":    fmt.Sprintf("%s: המדריך המעשי (%s)", topic, tag),
		"slug":     "guide-" + tag,
		"excerpt":  fmt.Sprintf("כל מה שעסק קטן צריך לדעת על %s.", topic),
		"meta":     fmt.Sprintf("מדריך מעשי בנושא %s לעסקים קטנים בישראל.", topic),
		"tags":     []string{topic, "מדריך"},
		"content":  sb.String(),
		"readTime": "4 דקות קריאה",
	}
	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return "", err
	}
	return "```json\n" + string(data) + "\n```", nil
}

// mockParagraph yields about 60 distinct words.
func mockParagraph(topic, tag string, n int) string {
	words := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		words = append(words, fmt.Sprintf("%s%d-%d", tag[:4], n, i))
	}
	return fmt.Sprintf("הנה כמה נקודות על %s: %s.", topic, strings.Join(words, " "))
}
