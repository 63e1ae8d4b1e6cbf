// Package extractors turns uploaded document byte streams into raw text.
package extractors

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"docuchat/internal/apperr"
)

// File is one uploaded document: an opaque byte stream tagged with its
// filename. It is transient and exists only within a single request.
type File struct {
	Name string
	Data []byte
}

// Result is the extraction outcome for one document. Err is set for
// documents that could not be processed; the batch itself never fails.
type Result struct {
	Name string
	Text string
	Err  error
}

// extractConcurrency bounds the number of PDFs parsed in parallel per batch.
const extractConcurrency = 4

// PDFExtractor extracts plain text from PDF documents.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the concatenated text of every page of one document, in
// page order. A page that yields no text contributes an empty string. A file
// that is not a PDF fails with ErrUnsupportedFormat; a stream the decoder
// cannot parse fails with ErrExtraction.
func (e *PDFExtractor) Extract(f File) (string, error) {
	if ext := strings.ToLower(filepath.Ext(f.Name)); ext != ".pdf" {
		return "", fmt.Errorf("%w: '%s' has extension '%s', expected '.pdf'", apperr.ErrUnsupportedFormat, f.Name, ext)
	}
	if mt := mimetype.Detect(f.Data); !mt.Is("application/pdf") {
		return "", fmt.Errorf("%w: '%s' content is %s, expected application/pdf", apperr.ErrUnsupportedFormat, f.Name, mt)
	}

	reader, err := pdf.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return "", fmt.Errorf("%w: '%s': %v", apperr.ErrExtraction, f.Name, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page contributes no text; it does
			// not fail the document.
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// ExtractAll extracts every file in the batch, preserving input order.
// Per-document failures are recorded in the corresponding Result and never
// abort the batch.
func (e *PDFExtractor) ExtractAll(ctx context.Context, files []File) []Result {
	results := make([]Result, len(files))
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(extractConcurrency)
	for i, f := range files {
		eg.Go(func() error {
			text, err := e.Extract(f)
			results[i] = Result{Name: f.Name, Text: text, Err: err}
			return nil
		})
	}
	_ = eg.Wait() // workers record failures in results, never return them
	return results
}

// CombineTexts concatenates the text of every successful result in input
// order, mirroring how a multi-document upload is treated as one text blob.
func CombineTexts(results []Result) string {
	var sb strings.Builder
	for _, r := range results {
		if r.Err == nil {
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}
