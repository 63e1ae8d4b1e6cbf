package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"docuchat/internal/apperr"
	"docuchat/pkg/logger"
)

const defaultScholarBaseURL = "https://api.semanticscholar.org/graph/v1"

// scholarFields is the field set requested from the Semantic Scholar graph
// API.
const scholarFields = "title,authors,year,abstract,openAccessPdf,externalIds,url"

// ScholarClient searches the Semantic Scholar graph API.
type ScholarClient struct {
	hc      *http.Client
	baseURL string
	log     *logger.Logger
}

// NewScholarClient creates a ScholarClient. baseURL may be overridden for
// tests.
func NewScholarClient(hc *http.Client, baseURL string, log *logger.Logger) *ScholarClient {
	if baseURL == "" {
		baseURL = defaultScholarBaseURL
	}
	return &ScholarClient{hc: hc, baseURL: baseURL, log: log}
}

type scholarResponse struct {
	Total int            `json:"total"`
	Data  []scholarPaper `json:"data"`
}

type scholarPaper struct {
	PaperID  string `json:"paperId"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Year     int    `json:"year"`
	URL      string `json:"url"`
	Authors  []struct {
		Name string `json:"name"`
	} `json:"authors"`
	OpenAccessPdf *struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
	ExternalIDs struct {
		DOI string `json:"DOI"`
	} `json:"externalIds"`
}

// Search queries Semantic Scholar with the keywords joined into one query
// string and returns at most max records.
func (c *ScholarClient) Search(ctx context.Context, keywords []string, max int) ([]Record, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", strings.Join(keywords, " "))
	params.Set("fields", scholarFields)
	params.Set("limit", fmt.Sprintf("%d", max))
	reqURL := c.baseURL + "/paper/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrExternalAPI, err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrExternalAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: semantic scholar returned status %d", apperr.ErrExternalAPI, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrExternalAPI, err)
	}
	var parsed scholarResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed semantic scholar response: %v", apperr.ErrExternalAPI, err)
	}

	records := make([]Record, 0, len(parsed.Data))
	for _, paper := range parsed.Data {
		records = append(records, paperToRecord(paper))
	}
	return records, nil
}

func paperToRecord(paper scholarPaper) Record {
	rec := Record{
		Title:      paper.Title,
		Abstract:   paper.Abstract,
		URL:        paper.URL,
		DOI:        paper.ExternalIDs.DOI,
		Source:     "semantic_scholar",
		ExternalID: paper.PaperID,
	}
	if paper.Year > 0 {
		rec.PublishedDate = fmt.Sprintf("%d", paper.Year)
	}
	for _, author := range paper.Authors {
		rec.Authors = append(rec.Authors, author.Name)
	}
	if paper.OpenAccessPdf != nil {
		rec.PDFURL = paper.OpenAccessPdf.URL
	}
	return rec
}

var _ Searcher = (*ScholarClient)(nil)
