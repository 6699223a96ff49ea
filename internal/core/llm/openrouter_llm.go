package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/markdave123-py/reviewdesk/internal/core"
)

// OpenRouterOptions configures the OpenAI-compatible OpenRouter client.
type OpenRouterOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	SiteURL     string // sent as HTTP-Referer for OpenRouter rankings
	SiteName    string // sent as X-Title
	HTTPClient  *http.Client
}

// OpenRouterLLM issues one chat completion per call: no retries, no streaming.
type OpenRouterLLM struct {
	client      openai.Client
	model       openai.ChatModel
	temperature float64
	maxTokens   int64
}

func NewOpenRouterLLM(opts OpenRouterOptions) (*OpenRouterLLM, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openrouter api key is empty")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://openrouter.ai/api/v1"
	}
	if opts.Model == "" {
		opts.Model = "z-ai/glm-4.5-air:free"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(opts.Timeout),
	}
	if opts.SiteURL != "" {
		reqOpts = append(reqOpts, option.WithHeader("HTTP-Referer", opts.SiteURL))
	}
	if opts.SiteName != "" {
		reqOpts = append(reqOpts, option.WithHeader("X-Title", opts.SiteName))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &OpenRouterLLM{
		client:      openai.NewClient(reqOpts...),
		model:       openai.ChatModel(opts.Model),
		temperature: opts.Temperature,
		maxTokens:   int64(opts.MaxTokens),
	}, nil
}

func (o *OpenRouterLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(o.temperature),
		MaxTokens:   openai.Int(o.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openrouter chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ core.LLMProvider = (*OpenRouterLLM)(nil)
