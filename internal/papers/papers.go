// Package papers discovers academic papers related to a set of keywords by
// querying arXiv and Semantic Scholar.
package papers

import (
	"context"
	"fmt"
	"strings"

	"docuchat/pkg/logger"
)

// Default values substituted for missing record fields.
const (
	defaultTitle    = "Untitled"
	defaultAbstract = "No abstract available."
	unknownAuthor   = "Unknown"
)

// Record is a normalized paper from any source.
type Record struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	URL           string   `json:"url"`
	PDFURL        string   `json:"pdf_url,omitempty"`
	Abstract      string   `json:"abstract"`
	PublishedDate string   `json:"published_date,omitempty"`
	DOI           string   `json:"doi,omitempty"`
	Source        string   `json:"source"`
	ExternalID    string   `json:"external_id,omitempty"`
}

// Clean trims every field and substitutes defaults for missing title,
// authors, and abstract.
func (r *Record) Clean() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = defaultTitle
	}

	authors := r.Authors[:0]
	for _, a := range r.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	if len(authors) == 0 {
		authors = []string{unknownAuthor}
	}
	r.Authors = authors

	r.Abstract = strings.TrimSpace(r.Abstract)
	if r.Abstract == "" {
		r.Abstract = defaultAbstract
	}

	r.URL = strings.TrimSpace(r.URL)
	r.PDFURL = strings.TrimSpace(r.PDFURL)
	r.PublishedDate = strings.TrimSpace(r.PublishedDate)
	r.DOI = strings.TrimSpace(r.DOI)
	r.ExternalID = strings.TrimSpace(r.ExternalID)
}

// Valid reports whether a cleaned record carries enough substance to show a
// user: a real title plus at least a link or an abstract.
func (r *Record) Valid() bool {
	return r.Title != defaultTitle && (r.URL != "" || r.Abstract != defaultAbstract)
}

// Searcher is one paper source.
type Searcher interface {
	Search(ctx context.Context, keywords []string, max int) ([]Record, error)
}

// Discovery fans a keyword query out to every configured source and merges
// the results. A failing source is logged and skipped, never fatal.
type Discovery struct {
	sources    []Searcher
	maxResults int
	log        *logger.Logger
}

// NewDiscovery creates a Discovery over the given sources, capped at
// maxResults records total.
func NewDiscovery(maxResults int, log *logger.Logger, sources ...Searcher) *Discovery {
	return &Discovery{sources: sources, maxResults: maxResults, log: log}
}

// SearchRelated returns papers related to the keywords, cleaned and
// validated. Empty keywords short-circuit to an empty result without any
// network call.
func (d *Discovery) SearchRelated(ctx context.Context, keywords []string) []Record {
	if len(keywords) == 0 {
		return []Record{}
	}

	records := make([]Record, 0, d.maxResults)
	for _, source := range d.sources {
		if len(records) >= d.maxResults {
			break
		}
		found, err := source.Search(ctx, keywords, d.maxResults-len(records))
		if err != nil {
			d.log.Warn(fmt.Sprintf("Paper source failed, continuing with remaining sources: %v", err))
			continue
		}
		for _, rec := range found {
			rec.Clean()
			if !rec.Valid() {
				continue
			}
			records = append(records, rec)
			if len(records) >= d.maxResults {
				break
			}
		}
	}
	return records
}
