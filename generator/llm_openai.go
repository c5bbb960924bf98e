package generator

import (
	"context"
	"errors"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 120 * time.Second

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions).
// Groq and DeepSeek are reached through their OpenAI-compatible endpoints.
type OpenAILLM struct {
	Model   string
	Profile Profile
	Timeout time.Duration
	client  openai.Client
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	profile, err := ProfileFor(cfg.Provider)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = profile.Model
	}
	if model == "" {
		return nil, errors.New("llm model is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = profile.BaseURL
	}
	if baseURL == "" {
		return nil, errors.New("llm provider " + profile.Name + " requires base_url (OpenAI-compatible endpoint)")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	return &OpenAILLM{
		Model:   model,
		Profile: profile,
		Timeout: timeout,
		client:  openai.NewClient(opts...),
	}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(o.Profile.Temperature),
		MaxTokens:   openai.Int(o.Profile.MaxTokens),
	}
	if o.Profile.JSONMode(o.Model) {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &GenerationError{
				Provider:   o.Profile.Name,
				StatusCode: apiErr.StatusCode,
				Body:       apiErr.RawJSON(),
				Err:        err,
			}
		}
		return "", &GenerationError{Provider: o.Profile.Name, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Provider: o.Profile.Name, Err: errors.New("empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
