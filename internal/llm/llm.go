package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured marks credential and configuration problems with the
// text-generation provider. They are not retryable without operator action.
var ErrNotConfigured = errors.New("AI provider not configured")

// Prompt is a single request to a text-generation capability.
type Prompt struct {
	System      string
	User        string
	Temperature float32
}

// TextGenerator turns a prompt into plain text.
type TextGenerator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// OpenAI generates text through an OpenAI-compatible chat completions API.
type OpenAI struct {
	api    *openai.Client
	model  string
	hasKey bool
}

// NewOpenAI creates a client for an OpenAI-compatible endpoint. An empty
// apiKey is accepted here and reported by the first Generate call.
func NewOpenAI(baseURL, apiKey, modelName string) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAI{
		api:    openai.NewClientWithConfig(config),
		model:  modelName,
		hasKey: strings.TrimSpace(apiKey) != "",
	}
}

// Generate sends a system and user message and returns the first choice.
func (c *OpenAI) Generate(ctx context.Context, p Prompt) (string, error) {
	if !c.hasKey {
		return "", fmt.Errorf("%w: API key is not set (use --llm-key or QUIZGEN_LLM_KEY)", ErrNotConfigured)
	}

	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if p.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: p.Temperature,
	})
	if err != nil {
		return "", classify(fmt.Errorf("LLM API call: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "model", c.model, "chars", len(raw))
	return strings.TrimSpace(raw), nil
}

// Ping checks that the endpoint answers and accepts the credentials.
func (c *OpenAI) Ping(ctx context.Context) error {
	if !c.hasKey {
		return fmt.Errorf("%w: API key is not set", ErrNotConfigured)
	}
	if _, err := c.api.ListModels(ctx); err != nil {
		return classify(fmt.Errorf("list models: %w", err))
	}
	return nil
}

// classify wraps authentication failures with ErrNotConfigured.
func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: invalid API key: %w", ErrNotConfigured, err)
	}
	return err
}
