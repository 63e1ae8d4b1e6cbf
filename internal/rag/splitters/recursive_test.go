package splitters

import (
	"strings"
	"testing"
	"unicode/utf8"

	"docuchat/internal/rag/schema"
)

// reconstruct rebuilds the original text from chunk texts and offsets.
func reconstruct(chunks []schema.Chunk) string {
	var sb strings.Builder
	prevEnd := 0
	for _, c := range chunks {
		start := c.SourceOffset
		end := start + len(c.Text)
		if end <= prevEnd {
			continue
		}
		skip := 0
		if start < prevEnd {
			skip = prevEnd - start
		}
		sb.WriteString(c.Text[skip:])
		prevEnd = end
	}
	return sb.String()
}

func TestSplitEmptyInput(t *testing.T) {
	s := NewRecursiveSplitter(2000, 500)
	if got := s.Split(""); len(got) != 0 {
		t.Fatalf("Split(\"\") returned %d chunks, want 0", len(got))
	}
	if got := s.Split("   \n\n \t "); len(got) != 0 {
		t.Fatalf("whitespace-only input returned %d chunks, want 0", len(got))
	}
}

func TestSplitShortInputIsIdentity(t *testing.T) {
	s := NewRecursiveSplitter(100, 0)
	text := "a chunk-sized string stays unchanged"
	chunks := s.Split(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text = %q, want %q", chunks[0].Text, text)
	}
	if chunks[0].SourceOffset != 0 {
		t.Errorf("chunk offset = %d, want 0", chunks[0].SourceOffset)
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	text := "first paragraph body.\n\nsecond paragraph body that keeps going for a while."
	s := NewRecursiveSplitter(40, 0)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, "first paragraph body.\n\n") {
		t.Errorf("first chunk = %q, want it to end at the paragraph break", chunks[0].Text)
	}
}

func TestSplitReconstructsOriginal(t *testing.T) {
	texts := []string{
		"Cats are mammals. Dogs are mammals.",
		strings.Repeat("word ", 500),
		"line one\nline two\nline three\n\npara two\nmore text here",
		strings.Repeat("x", 347), // no separators at all, hard cuts only
	}
	profiles := []struct{ size, overlap int }{
		{20, 0},
		{50, 10},
		{2000, 500},
	}
	for _, text := range texts {
		for _, p := range profiles {
			s := NewRecursiveSplitter(p.size, p.overlap)
			chunks := s.Split(text)
			if len(chunks) == 0 {
				t.Fatalf("size=%d overlap=%d: no chunks for non-empty text", p.size, p.overlap)
			}
			for i, c := range chunks {
				if len(c.Text) > p.size {
					t.Errorf("size=%d overlap=%d: chunk %d has length %d", p.size, p.overlap, i, len(c.Text))
				}
				if text[c.SourceOffset:c.SourceOffset+len(c.Text)] != c.Text {
					t.Errorf("size=%d overlap=%d: chunk %d is not a substring at its offset", p.size, p.overlap, i)
				}
			}
			if got := reconstruct(chunks); got != text {
				t.Errorf("size=%d overlap=%d: reconstruction mismatch:\ngot  %q\nwant %q", p.size, p.overlap, got, text)
			}
		}
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 30)
	s := NewRecursiveSplitter(100, 25)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevEnd := chunks[i-1].SourceOffset + len(chunks[i-1].Text)
		overlap := prevEnd - chunks[i].SourceOffset
		if overlap != s.Overlap {
			t.Errorf("chunks %d/%d overlap by %d characters, want %d", i-1, i, overlap, s.Overlap)
		}
	}
}

func TestSplitMultibyteTextKeepsRuneBoundaries(t *testing.T) {
	texts := []string{
		strings.Repeat("héllo wörld ünïcode ", 30), // overlap steps land between runes
		strings.Repeat("日本語テキスト", 40),              // no separators, hard cuts only
	}
	for _, text := range texts {
		s := NewRecursiveSplitter(25, 7)
		chunks := s.Split(text)
		if len(chunks) < 2 {
			t.Fatalf("expected multiple chunks, got %d", len(chunks))
		}
		for i, c := range chunks {
			if !utf8.ValidString(c.Text) {
				t.Errorf("chunk %d starts or ends mid-rune: %q", i, c.Text)
			}
			if text[c.SourceOffset:c.SourceOffset+len(c.Text)] != c.Text {
				t.Errorf("chunk %d is not a substring at its offset", i)
			}
		}
		if got := reconstruct(chunks); got != text {
			t.Errorf("reconstruction mismatch:\ngot  %q\nwant %q", got, text)
		}
	}
}

func TestSplitOrderIsPreserved(t *testing.T) {
	text := strings.Repeat("sentence one. sentence two. ", 40)
	chunks := NewRecursiveSplitter(64, 16).Split(text)
	for i := 1; i < len(chunks); i++ {
		if chunks[i].SourceOffset <= chunks[i-1].SourceOffset {
			t.Fatalf("chunk %d offset %d not after chunk %d offset %d",
				i, chunks[i].SourceOffset, i-1, chunks[i-1].SourceOffset)
		}
	}
}
