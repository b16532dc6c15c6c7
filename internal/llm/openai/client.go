package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"telehealth-backend/internal/llm"
)

// Client implements llm.Provider using OpenAI chat completions. It serves as
// the optional alternate provider behind the primary one.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient constructs an OpenAI-backed provider.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Name returns the provider/model identifier for audit records.
func (c *Client) Name() string {
	return "openai:" + c.model
}

// Generate sends the prompt as a single user message. OpenAI has no top-k
// parameter; it is ignored. Safety presets do not apply either — the
// moderation behavior is fixed by the provider.
func (c *Client) Generate(ctx context.Context, prompt string, params llm.Params) (llm.Outcome, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: params.Temperature,
		MaxTokens:   params.MaxOutputTokens,
		TopP:        params.TopP,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403) {
			return llm.Outcome{}, fmt.Errorf("openai status %d: %w", apiErr.HTTPStatusCode, llm.ErrUnauthorized)
		}
		return llm.Outcome{}, err
	}
	if len(resp.Choices) == 0 {
		return llm.Outcome{Filtered: true, FinishReason: "no_choices"}, nil
	}

	choice := resp.Choices[0]
	text := strings.TrimSpace(choice.Message.Content)
	outcome := llm.Outcome{
		Text:         text,
		FinishReason: string(choice.FinishReason),
	}
	if text == "" || choice.FinishReason == openai.FinishReasonContentFilter {
		outcome.Filtered = true
		outcome.Text = ""
	}
	return outcome, nil
}

var _ llm.Provider = (*Client)(nil)
