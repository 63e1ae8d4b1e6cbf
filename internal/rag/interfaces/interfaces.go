// Package interfaces declares the seams between the RAG pipelines and their
// collaborators, so pipelines can be tested against fakes and backends can be
// swapped by configuration.
package interfaces

import (
	"context"

	"docuchat/internal/rag/schema"
)

// Splitter splits a text blob into ordered, overlapping chunks. An empty
// input yields an empty slice, never an error; callers must treat an empty
// result as "no usable content".
type Splitter interface {
	Split(text string) []schema.Chunk
}

// EmbeddingModel is a text embedding capability. Both ingestion and query
// embedding go through the same implementation so the similarity metric is
// consistent by construction.
type EmbeddingModel interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM is a generative text capability.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// WebSearcher issues one external web search and returns the top hit as a
// single line of text. Implementations return an error on failure; callers
// on the answer path absorb it with a sentinel instead of aborting.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Transcriber captures one spoken phrase and returns the recognized text.
type Transcriber interface {
	Transcribe(ctx context.Context) (string, error)
}

// Snapshot is an immutable view of a persisted vector index, obtained at
// open time. Concurrent index replacement never affects an open snapshot.
type Snapshot interface {
	// Search returns the k stored chunks most similar to vec, highest
	// similarity first. Exactly-equal similarities keep insertion order.
	// k larger than the snapshot yields all stored chunks.
	Search(vec []float32, k int) []schema.ScoredChunk

	// Len reports the number of stored chunks.
	Len() int
}

// IndexWriter persists a full index snapshot, atomically replacing any prior
// snapshot under the same name. There is exactly one writer in the system.
type IndexWriter interface {
	Save(ctx context.Context, name string, chunks []schema.Chunk) error
}

// IndexReader opens a persisted snapshot by name.
type IndexReader interface {
	Open(ctx context.Context, name string) (Snapshot, error)
}
