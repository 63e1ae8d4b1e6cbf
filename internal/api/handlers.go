// Package api exposes the document Q&A service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat/internal/apperr"
	"docuchat/internal/keywords"
	"docuchat/internal/papers"
	"docuchat/internal/rag/extractors"
	"docuchat/internal/rag/interfaces"
	"docuchat/internal/rag/pipeline"
	"docuchat/internal/rag/schema"
	"docuchat/pkg/logger"
)

// Handler wires every endpoint to the underlying pipelines.
type Handler struct {
	extractor       *extractors.PDFExtractor
	indexing        *pipeline.IndexingPipeline
	retrieval       *pipeline.RetrievalPipeline
	qa              *pipeline.QAPipeline
	summary         *pipeline.SummaryPipeline
	summarySplitter interfaces.Splitter
	docKeywords     *keywords.Extractor
	summaryKeywords *keywords.Extractor
	discovery       *papers.Discovery
	probeDiscovery  *papers.Discovery
	transcriber     interfaces.Transcriber
	indexName       string
	log             *logger.Logger
}

// HandlerDeps collects the collaborators a Handler needs.
type HandlerDeps struct {
	Extractor       *extractors.PDFExtractor
	Indexing        *pipeline.IndexingPipeline
	Retrieval       *pipeline.RetrievalPipeline
	QA              *pipeline.QAPipeline
	Summary         *pipeline.SummaryPipeline
	SummarySplitter interfaces.Splitter
	DocKeywords     *keywords.Extractor
	SummaryKeywords *keywords.Extractor
	Discovery       *papers.Discovery
	ProbeDiscovery  *papers.Discovery
	Transcriber     interfaces.Transcriber
	IndexName       string
	Log             *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		extractor:       deps.Extractor,
		indexing:        deps.Indexing,
		retrieval:       deps.Retrieval,
		qa:              deps.QA,
		summary:         deps.Summary,
		summarySplitter: deps.SummarySplitter,
		docKeywords:     deps.DocKeywords,
		summaryKeywords: deps.SummaryKeywords,
		discovery:       deps.Discovery,
		probeDiscovery:  deps.ProbeDiscovery,
		transcriber:     deps.Transcriber,
		indexName:       deps.IndexName,
		log:             deps.Log,
	}
}

// fail maps the error taxonomy to HTTP status codes and emits a uniform
// error body. The failing pipeline step is included when known.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrUnsupportedFormat),
		errors.Is(err, apperr.ErrIndexNotFound),
		errors.Is(err, apperr.ErrSpeechNotUnderstood):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrSpeechUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrEmbeddingService),
		errors.Is(err, apperr.ErrSynthesis),
		errors.Is(err, apperr.ErrExternalAPI):
		status = http.StatusBadGateway
	}

	body := gin.H{"error": err.Error()}
	if step := apperr.StepOf(err); step != "" {
		body["step"] = step
	}
	c.JSON(status, body)
}

// formFiles reads every uploaded file from the "files" multipart field.
func formFiles(c *gin.Context) ([]extractors.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, errors.New("no files uploaded under field 'files'")
	}

	files := make([]extractors.File, 0, len(headers))
	for _, header := range headers {
		data, err := readFile(header)
		if err != nil {
			return nil, fmt.Errorf("failed to read '%s': %w", header.Filename, err)
		}
		files = append(files, extractors.File{Name: header.Filename, Data: data})
	}
	return files, nil
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// fileReport summarizes one document's extraction outcome for the client.
type fileReport struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

func buildReports(results []extractors.Result) (reports []fileReport, succeeded int) {
	reports = make([]fileReport, len(results))
	for i, r := range results {
		if r.Err != nil {
			reports[i] = fileReport{Filename: r.Name, Status: "failed", Error: r.Err.Error()}
			continue
		}
		reports[i] = fileReport{Filename: r.Name, Status: "processed"}
		succeeded++
	}
	return reports, succeeded
}

// Upload ingests one or more PDF documents into the index. Extraction
// failures are reported per document; the upload succeeds as long as at
// least one document yields text.
func (h *Handler) Upload(c *gin.Context) {
	files, err := formFiles(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := h.extractor.ExtractAll(c.Request.Context(), files)
	reports, succeeded := buildReports(results)
	if succeeded == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "no uploaded document could be processed",
			"files": reports,
		})
		return
	}

	combined := extractors.CombineTexts(results)
	indexed, err := h.indexing.Run(c.Request.Context(), h.indexName, combined)
	if err != nil {
		h.fail(c, err)
		return
	}
	if indexed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "uploaded documents contained no usable text",
			"files": reports,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "documents indexed",
		"indexed_chunks": indexed,
		"files":          reports,
	})
}

// answer runs the full retrieval plus synthesis flow for one question. The
// question is normalized once here so retrieval, the synthesis prompt, and
// the fallback search all see the same form.
func (h *Handler) answer(ctx context.Context, question string) (schema.Answer, error) {
	normalized := pipeline.NormalizeQuestion(question)
	retrieved, err := h.retrieval.Run(ctx, h.indexName, normalized)
	if err != nil {
		return schema.Answer{}, err
	}
	return h.qa.Run(ctx, normalized, retrieved)
}

// Ask answers a typed question against the uploaded documents.
func (h *Handler) Ask(c *gin.Context) {
	question := strings.TrimSpace(c.PostForm("question"))
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'question' field"})
		return
	}

	ans, err := h.answer(c.Request.Context(), question)
	if err != nil {
		if errors.Is(err, apperr.ErrIndexNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no documents have been uploaded yet"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":      ans.Text,
		"used_fallback": ans.UsedFallback,
	})
}

// summarizeFiles runs the shared extract-chunk-summarize flow and writes the
// error response itself on failure. The bool result reports success.
func (h *Handler) summarizeFiles(c *gin.Context) (string, []fileReport, bool) {
	files, err := formFiles(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", nil, false
	}

	results := h.extractor.ExtractAll(c.Request.Context(), files)
	reports, succeeded := buildReports(results)
	if succeeded == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "no uploaded document could be processed",
			"files": reports,
		})
		return "", nil, false
	}

	combined := extractors.CombineTexts(results)
	chunks := h.summarySplitter.Split(combined)
	if len(chunks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "uploaded documents contained no usable text",
			"files": reports,
		})
		return "", nil, false
	}

	summaryText, err := h.summary.Run(c.Request.Context(), chunks)
	if err != nil {
		h.fail(c, err)
		return "", nil, false
	}
	return summaryText, reports, true
}

// Summarize extracts the uploaded documents and produces a single summary.
// Summarization never touches the index.
func (h *Handler) Summarize(c *gin.Context) {
	summaryText, reports, ok := h.summarizeFiles(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": summaryText,
		"files":   reports,
	})
}

// ExtractKeywordsRequest is the JSON body of the keywords-only endpoint.
type ExtractKeywordsRequest struct {
	Summary string `json:"summary" binding:"required"`
}

// ExtractKeywords returns the top keywords of a previously produced summary.
func (h *Handler) ExtractKeywords(c *gin.Context) {
	var req ExtractKeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keywords": h.summaryKeywords.Extract(req.Summary)})
}

// SearchRelated summarizes the uploaded documents, extracts keywords from
// the summary, and finds related academic papers. Empty keywords stop before
// discovery and say so instead of issuing a pointless query.
func (h *Handler) SearchRelated(c *gin.Context) {
	summaryText, _, ok := h.summarizeFiles(c)
	if !ok {
		return
	}

	kws := h.summaryKeywords.Extract(summaryText)
	if len(kws) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"summary":        summaryText,
			"keywords":       []string{},
			"related_papers": []papers.Record{},
			"message":        "no keywords could be extracted from the summary",
		})
		return
	}

	records := h.discovery.SearchRelated(c.Request.Context(), kws)
	c.JSON(http.StatusOK, gin.H{
		"summary":        summaryText,
		"keywords":       kws,
		"related_papers": records,
	})
}

// probeReport is the per-document outcome of a probe: related articles on
// success, an error message otherwise.
type probeReport struct {
	Filename string          `json:"filename"`
	Articles []papers.Record `json:"articles,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Probe extracts keywords from each uploaded document independently and
// finds related papers per document. One unreadable document never blocks
// the others.
func (h *Handler) Probe(c *gin.Context) {
	files, err := formFiles(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := h.extractor.ExtractAll(c.Request.Context(), files)
	reports := make([]probeReport, len(results))
	for i, r := range results {
		if r.Err != nil {
			reports[i] = probeReport{Filename: r.Name, Error: r.Err.Error()}
			continue
		}
		kws := h.docKeywords.Extract(r.Text)
		articles := h.probeDiscovery.SearchRelated(c.Request.Context(), kws)
		reports[i] = probeReport{Filename: r.Name, Articles: articles}
	}

	c.JSON(http.StatusOK, gin.H{"results": reports})
}

// VoiceAsk captures a spoken question through the speech sidecar and answers
// it like Ask does. The transcript is echoed back so the user can see what
// was understood.
func (h *Handler) VoiceAsk(c *gin.Context) {
	if h.transcriber == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "voice input is not configured"})
		return
	}

	question, err := h.transcriber.Transcribe(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	ans, err := h.answer(c.Request.Context(), question)
	if err != nil {
		if errors.Is(err, apperr.ErrIndexNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no documents have been uploaded yet"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transcribed_text": question,
		"response":         ans.Text,
		"used_fallback":    ans.UsedFallback,
	})
}
