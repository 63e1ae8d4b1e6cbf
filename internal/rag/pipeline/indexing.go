// Package pipeline orchestrates the RAG flows: indexing, retrieval, answer
// synthesis, and summarization.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"docuchat/internal/apperr"
	"docuchat/internal/rag/interfaces"
	"docuchat/pkg/logger"
)

// IndexingPipeline turns raw document text into a published index snapshot:
// split into chunks, embed every chunk, persist atomically. Chunk order is
// preserved end to end.
type IndexingPipeline struct {
	splitter interfaces.Splitter
	embedder interfaces.EmbeddingModel
	store    interfaces.IndexWriter
	timeout  time.Duration
	log      *logger.Logger
}

// NewIndexingPipeline creates an IndexingPipeline. timeout bounds each
// external embedding call.
func NewIndexingPipeline(
	splitter interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	store interfaces.IndexWriter,
	timeout time.Duration,
	log *logger.Logger,
) *IndexingPipeline {
	return &IndexingPipeline{
		splitter: splitter,
		embedder: embedder,
		store:    store,
		timeout:  timeout,
		log:      log,
	}
}

// Run ingests text into the index named indexName and returns the number of
// chunks indexed. Zero means the text contained no usable content and
// nothing was written. On embedding failure the whole ingestion is rejected:
// no partial index is ever published.
func (p *IndexingPipeline) Run(ctx context.Context, indexName, text string) (int, error) {
	chunks := p.splitter.Split(text)
	if len(chunks) == 0 {
		p.log.Info("No chunks produced from input text, skipping indexing")
		return 0, nil
	}
	p.log.Info(fmt.Sprintf("Split input into %d chunks", len(chunks)))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embedCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	embeddings, err := p.embedder.EmbedBatch(embedCtx, texts)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to embed chunks: %v", err))
		return 0, apperr.Step("embed", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := p.store.Save(ctx, indexName, chunks); err != nil {
		p.log.Error(fmt.Sprintf("Failed to save index snapshot: %v", err))
		return 0, apperr.Step("index", err)
	}

	return len(chunks), nil
}
