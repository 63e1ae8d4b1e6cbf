package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docuchat/internal/rag/interfaces"
	"docuchat/internal/rag/schema"
	"docuchat/internal/websearch"
	"docuchat/pkg/logger"
)

// answerPromptTemplate frames the retrieved chunks as the only reference
// material. The model is steered to admit when the context cannot answer,
// which is what triggers the internet fallback.
const answerPromptTemplate = `You are a helpful and informative bot that answers questions using text from the reference Context included below. Be sure to respond in a complete sentence, being comprehensive, including all relevant background information. However, you are talking to a non-technical audience, so be sure to break down complicated concepts and strike a friendly and conversational tone. If the Context is irrelevant to the answer, reply exactly with "The provided documents do not contain this information".

Context:
%s

Question:
%s

Answer:`

// insufficientContextMarker is the phrase the model emits when the retrieved
// chunks cannot answer the question.
const insufficientContextMarker = "The provided documents do not contain this information"

// fallbackHeader separates the grounded answer from appended internet
// results.
const fallbackHeader = "\n\nInternet Search Result:\n"

// QAPipeline synthesizes an answer from retrieved chunks and falls back to a
// web search when the documents are insufficient.
type QAPipeline struct {
	llm        interfaces.LLM
	web        interfaces.WebSearcher
	genTimeout time.Duration
	webTimeout time.Duration
	log        *logger.Logger
}

// NewQAPipeline creates a QAPipeline. genTimeout bounds the model call and
// webTimeout bounds the fallback search. web may be nil, in which case the
// fallback degrades to the no-result sentinel.
func NewQAPipeline(llm interfaces.LLM, web interfaces.WebSearcher, genTimeout, webTimeout time.Duration, log *logger.Logger) *QAPipeline {
	return &QAPipeline{llm: llm, web: web, genTimeout: genTimeout, webTimeout: webTimeout, log: log}
}

// Run produces an answer for question given the retrieved chunks. When the
// model signals the context is insufficient, or returns nothing at all, the
// internet fallback result is appended and UsedFallback is set. A failing
// fallback never fails the request: the sentinel stands in for the result.
func (p *QAPipeline) Run(ctx context.Context, question string, retrieved schema.RetrievalResult) (schema.Answer, error) {
	contextText := strings.Join(retrieved.Texts(), "\n\n")
	prompt := fmt.Sprintf(answerPromptTemplate, contextText, question)

	genCtx, cancel := context.WithTimeout(ctx, p.genTimeout)
	defer cancel()
	output, err := p.llm.Generate(genCtx, prompt)
	if err != nil {
		p.log.Error(fmt.Sprintf("Answer synthesis failed: %v", err))
		return schema.Answer{}, err
	}

	if !p.insufficient(output) {
		return schema.Answer{Text: output}, nil
	}

	p.log.Info("Context insufficient, falling back to internet search")
	result := p.searchWeb(ctx, question)
	return schema.Answer{
		Text:         output + fallbackHeader + result,
		UsedFallback: true,
	}, nil
}

func (p *QAPipeline) insufficient(output string) bool {
	return strings.TrimSpace(output) == "" || strings.Contains(output, insufficientContextMarker)
}

func (p *QAPipeline) searchWeb(ctx context.Context, question string) string {
	if p.web == nil {
		return websearch.NoResultSentinel
	}

	searchCtx, cancel := context.WithTimeout(ctx, p.webTimeout)
	defer cancel()
	result, err := p.web.Search(searchCtx, question)
	if err != nil {
		p.log.Warn(fmt.Sprintf("Internet fallback failed: %v", err))
		return websearch.NoResultSentinel
	}
	return result
}
