package coach

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel       = openai.GPT3Dot5Turbo
	DefaultTemperature = 0.5
	DefaultMaxTokens   = 300
)

type OpenAIParams struct {
	APIKey string
	// empty means the public API
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	HTTPClient  *http.Client
}

// OpenAICompleter runs chat completions against the OpenAI API.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAICompleter(params OpenAIParams) *OpenAICompleter {
	cfg := openai.DefaultConfig(params.APIKey)
	if params.BaseURL != "" {
		cfg.BaseURL = params.BaseURL
	}
	if params.HTTPClient != nil {
		cfg.HTTPClient = params.HTTPClient
	}

	model := params.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := params.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
