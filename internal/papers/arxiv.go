package papers

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"docuchat/internal/apperr"
	"docuchat/pkg/logger"
)

const defaultArxivBaseURL = "http://export.arxiv.org/api/query"

// ArxivClient searches the arXiv Atom API. Requests are paced with a rate
// limiter because arXiv asks clients to stay around one request every three
// seconds.
type ArxivClient struct {
	hc         *http.Client
	baseURL    string
	limiter    *rate.Limiter
	pageSize   int
	maxRetries int
	log        *logger.Logger
}

// NewArxivClient creates an ArxivClient. requestDelay is the minimum gap
// between requests; baseURL may be overridden for tests.
func NewArxivClient(hc *http.Client, baseURL string, pageSize, maxRetries int, requestDelay time.Duration, log *logger.Logger) *ArxivClient {
	if baseURL == "" {
		baseURL = defaultArxivBaseURL
	}
	return &ArxivClient{
		hc:         hc,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Every(requestDelay), 1),
		pageSize:   pageSize,
		maxRetries: maxRetries,
		log:        log,
	}
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	DOI       string `xml:"doi"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Links []struct {
		Href  string `xml:"href,attr"`
		Rel   string `xml:"rel,attr"`
		Title string `xml:"title,attr"`
	} `xml:"link"`
}

// Search queries arXiv with a disjunction over the keywords and pages
// through results until max records are collected or the feed runs dry.
func (c *ArxivClient) Search(ctx context.Context, keywords []string, max int) ([]Record, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	terms := make([]string, len(keywords))
	for i, kw := range keywords {
		terms[i] = fmt.Sprintf("all:%q", kw)
	}
	query := strings.Join(terms, " OR ")

	var records []Record
	for start := 0; len(records) < max; start += c.pageSize {
		feed, err := c.fetchPage(ctx, query, start)
		if err != nil {
			return nil, err
		}
		if len(feed.Entries) == 0 {
			break
		}
		for _, entry := range feed.Entries {
			records = append(records, entryToRecord(entry))
			if len(records) >= max {
				break
			}
		}
		if len(feed.Entries) < c.pageSize {
			break
		}
	}
	return records, nil
}

func (c *ArxivClient) fetchPage(ctx context.Context, query string, start int) (*atomFeed, error) {
	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", fmt.Sprintf("%d", start))
	params.Set("max_results", fmt.Sprintf("%d", c.pageSize))
	reqURL := c.baseURL + "?" + params.Encode()

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: malformed arxiv feed: %v", apperr.ErrExternalAPI, err)
	}
	return &feed, nil
}

// get fetches reqURL with pacing and a bounded retry on transport errors and
// server-side status codes.
func (c *ArxivClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrExternalAPI, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrExternalAPI, err)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = err
			c.log.Warn(fmt.Sprintf("arXiv request failed (attempt %d/%d): %v", attempt+1, c.maxRetries+1, err))
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				lastErr = readErr
				continue
			}
			return body, nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			c.log.Warn(fmt.Sprintf("arXiv returned %d (attempt %d/%d)", resp.StatusCode, attempt+1, c.maxRetries+1))
			continue
		default:
			return nil, fmt.Errorf("%w: arxiv returned status %d", apperr.ErrExternalAPI, resp.StatusCode)
		}
	}
	return nil, fmt.Errorf("%w: arxiv unreachable after %d attempts: %v", apperr.ErrExternalAPI, c.maxRetries+1, lastErr)
}

func entryToRecord(entry atomEntry) Record {
	rec := Record{
		Title:         strings.Join(strings.Fields(entry.Title), " "),
		Abstract:      strings.TrimSpace(entry.Summary),
		URL:           strings.TrimSpace(entry.ID),
		PublishedDate: entry.Published,
		DOI:           entry.DOI,
		Source:        "arxiv",
		ExternalID:    strings.TrimPrefix(strings.TrimSpace(entry.ID), "http://arxiv.org/abs/"),
	}
	for _, author := range entry.Authors {
		rec.Authors = append(rec.Authors, author.Name)
	}
	for _, link := range entry.Links {
		if link.Title == "pdf" {
			rec.PDFURL = link.Href
			break
		}
	}
	return rec
}

var _ Searcher = (*ArxivClient)(nil)
