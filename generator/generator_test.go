package generator

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"seo_post_generator/content"
	"seo_post_generator/quality"
)

type fakeLLM struct {
	out     string
	err     error
	prompts []Prompt
}

func (f *fakeLLM) Complete(_ context.Context, p Prompt) (string, error) {
	f.prompts = append(f.prompts, p)
	return f.out, f.err
}

func slugsOf(posts []content.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}

func testRand() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestGeneratePost(t *testing.T) {
	llm := &fakeLLM{out: "```json\n" + validObject + "\n```"}
	profile, _ := ProfileFor("openai")
	g, err := NewGenerator(llm, profile, testRand(), nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	existing := []content.Post{
		{Slug: "one", Title: "ראשון"},
		{Slug: "two", Title: "שני"},
		{Slug: "three", Title: "שלישי"},
	}
	before := slugsOf(existing)

	topic := content.TopicCluster{Topic: "קידום אתרים", Keywords: []string{"SEO"}}
	d, err := g.GeneratePost(context.Background(), topic, []string{"SEO", "גוגל"}, existing)
	if err != nil {
		t.Fatalf("GeneratePost: %v", err)
	}
	if d.Slug != "my-slug" {
		t.Errorf("slug = %q", d.Slug)
	}
	if !slices.Equal(slugsOf(existing), before) {
		t.Errorf("existing posts were reordered")
	}

	user := llm.prompts[0].User
	if strings.Count(user, "](/blog/") != 2 {
		t.Errorf("expected two internal links in prompt:\n%s", user)
	}
	for _, p := range existing {
		if !strings.Contains(user, "- "+p.Title) {
			t.Errorf("prompt does not list existing title %q", p.Title)
		}
	}
	if !strings.Contains(user, "SEO, גוגל") {
		t.Errorf("prompt missing keywords")
	}
}

func TestGeneratePostNoExistingPosts(t *testing.T) {
	llm := &fakeLLM{out: validObject}
	g, _ := NewGenerator(llm, Profile{Name: "mock"}, testRand(), nil)
	if _, err := g.GeneratePost(context.Background(), content.TopicCluster{Topic: "x"}, nil, nil); err != nil {
		t.Fatalf("GeneratePost: %v", err)
	}
	if strings.Contains(llm.prompts[0].User, "/blog/") {
		t.Errorf("unexpected links in prompt")
	}
}

func TestGeneratePostErrors(t *testing.T) {
	cases := []struct {
		name string
		llm  *fakeLLM
		want error
	}{
		{name: "transport", llm: &fakeLLM{err: errors.New("connection reset")}, want: ErrGenerationFailed},
		{name: "api", llm: &fakeLLM{err: &GenerationError{Provider: "groq", StatusCode: 429, Body: "slow down"}}, want: ErrGenerationFailed},
		{name: "malformed", llm: &fakeLLM{out: "sorry"}, want: ErrMalformedGeneration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := NewGenerator(tc.llm, Profile{Name: "groq"}, testRand(), nil)
			_, err := g.GeneratePost(context.Background(), content.TopicCluster{Topic: "x"}, nil, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestGenerationErrorMessage(t *testing.T) {
	err := &GenerationError{Provider: "groq", StatusCode: 401, Body: `{"error":"bad key"}`}
	if got := err.Error(); !strings.Contains(got, "API error 401") || !strings.Contains(got, "bad key") {
		t.Errorf("Error() = %q", got)
	}
}

func TestBuildPromptStyles(t *testing.T) {
	topic := content.TopicCluster{Topic: "אבטחת אתרים"}
	concise := BuildPrompt(StyleConcise, topic, []string{"SSL"}, nil, nil)
	detailed := BuildPrompt(StyleDetailed, topic, []string{"SSL"}, nil, nil)

	if !strings.Contains(concise.User, "500-800") {
		t.Errorf("concise prompt missing length band")
	}
	if !strings.Contains(detailed.User, "700-900") || !strings.Contains(detailed.System, "ONLY valid JSON") {
		t.Errorf("detailed prompt missing requirements")
	}
	for _, p := range []Prompt{concise, detailed} {
		if p.Topic != topic.Topic || !strings.Contains(p.User, `"readTime"`) {
			t.Errorf("prompt missing topic or schema")
		}
		if strings.Contains(p.User, "אל תכתוב מאמר דומה") {
			t.Errorf("empty existing list should not render")
		}
	}
}

func TestProfileFor(t *testing.T) {
	for _, name := range []string{"openai", "Groq", " deepseek ", "mock"} {
		if _, err := ProfileFor(name); err != nil {
			t.Errorf("ProfileFor(%q): %v", name, err)
		}
	}
	if _, err := ProfileFor("anthropic"); err == nil {
		t.Errorf("expected unsupported provider error")
	}
	groq, _ := ProfileFor("groq")
	if !groq.JSONMode("llama-3.3-70b-versatile") || groq.JSONMode("gemma2-9b-it") {
		t.Errorf("groq json mode detection wrong")
	}
}

func TestNewOpenAILLMFromConfig(t *testing.T) {
	if _, err := NewOpenAILLMFromConfig(nil); err == nil {
		t.Errorf("nil config accepted")
	}
	if _, err := NewOpenAILLMFromConfig(&LLMSettings{Provider: "deepseek", APIKey: "k"}); err == nil {
		t.Errorf("deepseek without base url accepted")
	}
	llm, err := NewOpenAILLMFromConfig(&LLMSettings{Provider: "groq", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOpenAILLMFromConfig: %v", err)
	}
	if llm.Model != "llama-3.3-70b-versatile" || llm.Timeout != DefaultTimeout {
		t.Errorf("defaults not applied: %+v", llm)
	}
}

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "llama-3.3-70b-versatile",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "hello"}}]
}`

func TestOpenAILLMComplete(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody)
	}))
	defer srv.Close()

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{Provider: "groq", APIKey: "k", BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewOpenAILLMFromConfig: %v", err)
	}
	out, err := llm.Complete(context.Background(), Prompt{System: "sys", User: "usr"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "hello" {
		t.Errorf("out = %q", out)
	}
	if !strings.Contains(gotBody, `"json_object"`) {
		t.Errorf("request did not enable json mode: %s", gotBody)
	}
	if !strings.Contains(gotBody, `"max_tokens"`) {
		t.Errorf("request missing max_tokens: %s", gotBody)
	}
}

func TestOpenAILLMCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{Provider: "openai", APIKey: "bad", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewOpenAILLMFromConfig: %v", err)
	}
	_, err = llm.Complete(context.Background(), Prompt{User: "x"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	var ge *GenerationError
	if !errors.As(err, &ge) || ge.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 GenerationError, got %#v", err)
	}
}

func TestMockLLMPassesQualityGate(t *testing.T) {
	raw, err := MockLLM{}.Complete(context.Background(), Prompt{Topic: "מהירות אתר"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	d, err := ParseDraft(raw)
	if err != nil {
		t.Fatalf("ParseDraft: %v", err)
	}
	report := quality.Validate(&d, nil)
	if !report.Passed {
		t.Fatalf("mock draft failed the gate: %+v", report.AllIssues)
	}
	if report.Checks.WordCount.WordCount < quality.DefaultMinWords {
		t.Errorf("word count %d below band", report.Checks.WordCount.WordCount)
	}
}
