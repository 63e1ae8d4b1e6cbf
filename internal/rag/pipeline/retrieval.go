package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docuchat/internal/apperr"
	"docuchat/internal/rag/interfaces"
	"docuchat/internal/rag/schema"
	"docuchat/pkg/logger"
)

// NormalizeQuestion lower-cases and trims a user question so queries embed
// consistently across requests.
func NormalizeQuestion(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// RetrievalPipeline answers "which stored chunks are closest to this query".
// Every run opens a fresh snapshot, so it always sees the latest published
// index generation and never a partially written one.
type RetrievalPipeline struct {
	embedder interfaces.EmbeddingModel
	store    interfaces.IndexReader
	topK     int
	timeout  time.Duration
	log      *logger.Logger
}

// NewRetrievalPipeline creates a RetrievalPipeline returning topK chunks per
// query.
func NewRetrievalPipeline(
	embedder interfaces.EmbeddingModel,
	store interfaces.IndexReader,
	topK int,
	timeout time.Duration,
	log *logger.Logger,
) *RetrievalPipeline {
	return &RetrievalPipeline{
		embedder: embedder,
		store:    store,
		topK:     topK,
		timeout:  timeout,
		log:      log,
	}
}

// Run embeds the normalized query and returns the most similar chunks from
// the index named indexName. A missing index surfaces ErrIndexNotFound; that
// is the expected state before any ingestion.
func (p *RetrievalPipeline) Run(ctx context.Context, indexName, query string) (schema.RetrievalResult, error) {
	normalized := NormalizeQuestion(query)

	embedCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	vec, err := p.embedder.Embed(embedCtx, normalized)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to embed query: %v", err))
		return schema.RetrievalResult{}, apperr.Step("embed", err)
	}

	snap, err := p.store.Open(ctx, indexName)
	if err != nil {
		return schema.RetrievalResult{}, apperr.Step("load-index", err)
	}

	chunks := snap.Search(vec, p.topK)
	p.log.Info(fmt.Sprintf("Retrieved %d chunks for query", len(chunks)))
	return schema.RetrievalResult{Chunks: chunks}, nil
}
