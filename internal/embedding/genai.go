// Package embedding provides the text embedding backends. Both ingestion and
// query embedding share one backend instance, so the similarity metric of the
// index and the retriever always match.
package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"docuchat/internal/apperr"
	"docuchat/internal/rag/interfaces"
)

// GoogleModel is a client for the Google GenAI embedding API.
type GoogleModel struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

// NewGoogleModel creates an embedding client for the named model.
func NewGoogleModel(ctx context.Context, apiKey, modelName string) (*GoogleModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GoogleModel{
		client: client,
		model:  client.EmbeddingModel(modelName),
	}, nil
}

// Close releases the underlying client connection.
func (m *GoogleModel) Close() error {
	return m.client.Close()
}

// Embed generates the embedding vector for a single text.
func (m *GoogleModel) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := m.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrEmbeddingService, err)
	}
	if res.Embedding == nil {
		return nil, fmt.Errorf("%w: empty embedding response", apperr.ErrEmbeddingService)
	}
	return res.Embedding.Values, nil
}

// EmbedBatch generates embedding vectors for a batch of texts, preserving
// input order.
func (m *GoogleModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	batch := m.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := m.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrEmbeddingService, err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", apperr.ErrEmbeddingService, len(res.Embeddings), len(texts))
	}

	embeddings := make([][]float32, 0, len(res.Embeddings))
	for _, emb := range res.Embeddings {
		embeddings = append(embeddings, emb.Values)
	}
	return embeddings, nil
}

var _ interfaces.EmbeddingModel = (*GoogleModel)(nil)
