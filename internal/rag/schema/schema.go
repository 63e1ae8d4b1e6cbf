// Package schema holds the data structures carried through the RAG pipeline.
package schema

// Chunk is a bounded substring of a document, the unit of embedding and
// context assembly. Chunks are immutable once created; their order within a
// document is significant and preserved end to end.
type Chunk struct {
	// ID is the unique identifier for this chunk.
	ID string

	// Text is the chunk content.
	Text string

	// SourceOffset is the character offset of Text within the original
	// document text.
	SourceOffset int

	// Embedding is the vector representation of Text. Empty until the
	// indexing pipeline computes it.
	Embedding []float32
}

// ScoredChunk is a chunk paired with its similarity to a query.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity between the chunk and the query
	// embedding, in [-1, 1].
	Score float64
}

// RetrievalResult is an ordered sequence of the chunks most similar to a
// query, highest similarity first.
type RetrievalResult struct {
	Chunks []ScoredChunk
}

// Texts returns the chunk texts in retrieval order.
func (r RetrievalResult) Texts() []string {
	out := make([]string, len(r.Chunks))
	for i, sc := range r.Chunks {
		out[i] = sc.Chunk.Text
	}
	return out
}

// Answer is the outcome of the answer synthesis step. It is derived per
// request and never persisted.
type Answer struct {
	// Text is the final answer, including the appended internet search
	// section when the local context was insufficient.
	Text string

	// UsedFallback reports whether the web fallback searcher contributed
	// to Text.
	UsedFallback bool
}
