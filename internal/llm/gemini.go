package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Gemini generates text with the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client. With an empty apiKey no connection is
// made and Generate reports ErrNotConfigured.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	g := &Gemini{model: modelName}
	if strings.TrimSpace(apiKey) == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Generate sends the prompt and concatenates the text parts of the first candidate.
func (g *Gemini) Generate(ctx context.Context, p Prompt) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("%w: Gemini API key is not set (use --llm-key or QUIZGEN_LLM_KEY)", ErrNotConfigured)
	}

	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(p.Temperature)
	if p.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
			return "", fmt.Errorf("%w: invalid Gemini API key: %w", ErrNotConfigured, err)
		}
		return "", fmt.Errorf("gemini API call: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
