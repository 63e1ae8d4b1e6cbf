package splitters

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"docuchat/internal/rag/interfaces"
	"docuchat/internal/rag/schema"
)

// separators are tried in order when looking for a cut point: paragraph
// boundary first, then line boundary, then word boundary. A hard character
// cut is the last resort.
var separators = []string{"\n\n", "\n", " "}

// RecursiveSplitter splits text into chunks of at most Size characters,
// preferring natural boundaries, with consecutive chunks sharing Overlap
// characters to preserve cross-boundary context.
type RecursiveSplitter struct {
	Size    int
	Overlap int
}

// NewRecursiveSplitter creates a splitter for one chunk profile.
func NewRecursiveSplitter(size, overlap int) *RecursiveSplitter {
	return &RecursiveSplitter{Size: size, Overlap: overlap}
}

// Split produces the ordered chunk sequence for text. Each chunk is an exact
// substring of text and records its source offset, so the original can be
// reconstructed from the chunks. Input that is empty or all whitespace
// yields an empty slice; callers treat that as "no usable content".
func (s *RecursiveSplitter) Split(text string) []schema.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []schema.Chunk
	start := 0
	for start < len(text) {
		end := start + s.Size
		if end >= len(text) {
			chunks = append(chunks, newChunk(text[start:], start))
			break
		}

		cut := s.findCut(text, start, end)
		chunks = append(chunks, newChunk(text[start:cut], start))

		next := cut - s.Overlap
		for next > start && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= start {
			// Overlap would stall or move backwards; give up the
			// overlap for this boundary to guarantee progress.
			next = cut
		}
		start = next
	}
	return chunks
}

// findCut picks the end of the chunk starting at start. It prefers the last
// separator occurrence inside the size budget, falling back to a hard cut at
// end (backed off to a rune boundary).
func (s *RecursiveSplitter) findCut(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i > 0 {
			// The separator stays with the earlier chunk so that no
			// characters are lost between chunks.
			return start + i + len(sep)
		}
	}
	for end > start+1 && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

func newChunk(text string, offset int) schema.Chunk {
	return schema.Chunk{
		ID:           uuid.New().String(),
		Text:         text,
		SourceOffset: offset,
	}
}

var _ interfaces.Splitter = (*RecursiveSplitter)(nil)
