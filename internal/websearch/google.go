// Package websearch provides the internet fallback used when the indexed
// documents cannot answer a question.
package websearch

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"docuchat/internal/apperr"
	"docuchat/internal/rag/interfaces"
	"docuchat/pkg/logger"
)

// NoResultSentinel is returned when the search completes but finds nothing
// relevant. Callers treat it as answer text, not as an error.
const NoResultSentinel = "No relevant information found on the internet."

// GoogleSearcher queries the Google Custom Search API and condenses the top
// hit into a short snippet.
type GoogleSearcher struct {
	svc      *customsearch.Service
	engineID string
	log      *logger.Logger
}

// NewGoogleSearcher creates a GoogleSearcher bound to the given programmable
// search engine. Extra client options are passed through to the underlying
// service, which lets tests point it at a local server.
func NewGoogleSearcher(ctx context.Context, apiKey, engineID string, log *logger.Logger, opts ...option.ClientOption) (*GoogleSearcher, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleSearcher{svc: svc, engineID: engineID, log: log}, nil
}

// Search runs the query and returns the first result formatted as
// "Title - Snippet (URL)". A search with no hits returns NoResultSentinel
// and a nil error.
func (s *GoogleSearcher) Search(ctx context.Context, query string) (string, error) {
	resp, err := s.svc.Cse.List().Cx(s.engineID).Q(query).Num(1).Context(ctx).Do()
	if err != nil {
		s.log.Error(fmt.Sprintf("Web search failed: %v", err))
		return "", fmt.Errorf("%w: %v", apperr.ErrExternalAPI, err)
	}
	if len(resp.Items) == 0 {
		return NoResultSentinel, nil
	}

	item := resp.Items[0]
	return fmt.Sprintf("%s - %s (%s)", item.Title, item.Snippet, item.Link), nil
}

var _ interfaces.WebSearcher = (*GoogleSearcher)(nil)
