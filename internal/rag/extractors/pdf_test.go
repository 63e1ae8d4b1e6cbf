package extractors

import (
	"context"
	"errors"
	"testing"

	"docuchat/internal/apperr"
)

func TestExtractRejectsWrongExtension(t *testing.T) {
	e := NewPDFExtractor()
	_, err := e.Extract(File{Name: "notes.txt", Data: []byte("plain text")})
	if !errors.Is(err, apperr.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractRejectsMismatchedContent(t *testing.T) {
	e := NewPDFExtractor()
	// Right extension, but the bytes are not a PDF.
	_, err := e.Extract(File{Name: "fake.pdf", Data: []byte("plain text pretending")})
	if !errors.Is(err, apperr.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	e := NewPDFExtractor()
	// A valid PDF magic header followed by garbage.
	data := append([]byte("%PDF-1.4\n"), []byte("garbage that is not a body")...)
	_, err := e.Extract(File{Name: "corrupt.pdf", Data: data})
	if err == nil {
		t.Fatal("expected an error for a corrupt stream")
	}
	if errors.Is(err, apperr.ErrUnsupportedFormat) {
		t.Fatalf("corrupt but recognized PDF must not map to unsupported format: %v", err)
	}
}

func TestExtractAllRecordsPerFileFailures(t *testing.T) {
	e := NewPDFExtractor()
	files := []File{
		{Name: "a.txt", Data: []byte("not a pdf")},
		{Name: "b.txt", Data: []byte("also not a pdf")},
	}

	results := e.ExtractAll(context.Background(), files)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if r.Name != files[i].Name {
			t.Errorf("result %d out of order: %q", i, r.Name)
		}
		if r.Err == nil {
			t.Errorf("result %d should carry an error", i)
		}
	}
}

func TestCombineTextsSkipsFailures(t *testing.T) {
	results := []Result{
		{Name: "a.pdf", Text: "first "},
		{Name: "bad.pdf", Err: apperr.ErrExtraction},
		{Name: "c.pdf", Text: "second"},
	}
	if got := CombineTexts(results); got != "first second" {
		t.Errorf("combined = %q", got)
	}
}
