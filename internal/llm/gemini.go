// Package llm provides the generative text backends used for answer
// synthesis and summarization.
package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"docuchat/internal/apperr"
	"docuchat/internal/rag/interfaces"
)

// Gemini is a client for the Google Gemini generative API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini client for the named model.
func NewGemini(ctx context.Context, modelName, apiKey string, temperature float32) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)

	return &Gemini{client: client, model: model}, nil
}

// Close releases the underlying client connection.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Generate sends one prompt and returns the plain text of the first
// candidate. There is no iterative refinement: one prompt, one response.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrSynthesis, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: response contained no candidates", apperr.ErrSynthesis)
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text), nil
		}
	}
	return "", fmt.Errorf("%w: response contained no text part", apperr.ErrSynthesis)
}

var _ interfaces.LLM = (*Gemini)(nil)
