package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docuchat/internal/rag/interfaces"
	"docuchat/internal/rag/schema"
	"docuchat/pkg/logger"
)

const summaryPromptTemplate = `Please provide a comprehensive summary of the following text. Focus on the main points and key insights:

%s

Summary:`

// SummaryPipeline condenses document chunks into a single summary. It does
// not retrieve: summarization always sees the full chunked text.
type SummaryPipeline struct {
	llm     interfaces.LLM
	timeout time.Duration
	log     *logger.Logger
}

// NewSummaryPipeline creates a SummaryPipeline.
func NewSummaryPipeline(llm interfaces.LLM, timeout time.Duration, log *logger.Logger) *SummaryPipeline {
	return &SummaryPipeline{llm: llm, timeout: timeout, log: log}
}

// Run summarizes the given chunks. Chunk texts are joined with a single
// space before prompting so the model sees one continuous passage.
func (p *SummaryPipeline) Run(ctx context.Context, chunks []schema.Chunk) (string, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	prompt := fmt.Sprintf(summaryPromptTemplate, strings.Join(texts, " "))

	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	output, err := p.llm.Generate(genCtx, prompt)
	if err != nil {
		p.log.Error(fmt.Sprintf("Summarization failed: %v", err))
		return "", err
	}

	return strings.TrimSpace(output), nil
}
