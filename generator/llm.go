package generator

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LLMClient 抽象大模型客户端，便于替换/Mock。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Profile tunes the request and prompt for one generative provider.
type Profile struct {
	Name        string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	Style       PromptStyle
	// JSONModeModels lists model-name fragments that accept a json_object response format.
	JSONModeModels []string
}

// JSONMode reports whether model supports structured-output mode.
func (p Profile) JSONMode(model string) bool {
	m := strings.ToLower(model)
	for _, frag := range p.JSONModeModels {
		if strings.Contains(m, frag) {
			return true
		}
	}
	return false
}

var profiles = map[string]Profile{
	"openai": {
		Name:        "openai",
		BaseURL:     "https://api.openai.com/v1/",
		Model:       "gpt-4o-mini",
		Temperature: 0.8,
		MaxTokens:   2500,
		Style:       StyleConcise,
	},
	"groq": {
		Name:           "groq",
		BaseURL:        "https://api.groq.com/openai/v1/",
		Model:          "llama-3.3-70b-versatile",
		Temperature:    0.7,
		MaxTokens:      8000,
		Style:          StyleDetailed,
		JSONModeModels: []string{"llama", "mistral"},
	},
	// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url。
	"deepseek": {
		Name:        "deepseek",
		Model:       "deepseek-chat",
		Temperature: 0.8,
		MaxTokens:   4000,
		Style:       StyleConcise,
	},
	"mock": {
		Name:  "mock",
		Style: StyleConcise,
	},
}

// ProfileFor returns the profile of a supported provider.
func ProfileFor(provider string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return Profile{}, fmt.Errorf("llm provider %s not supported (use openai, groq, deepseek or mock)", provider)
	}
	return p, nil
}
