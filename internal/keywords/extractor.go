// Package keywords extracts the most salient terms from text. Keywords drive
// the academic paper discovery queries, so the extractor favors content
// words (nouns and adjectives) over everything else.
package keywords

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"

	"docuchat/pkg/logger"
)

// Extractor picks the top-N keywords from text by part-of-speech filtering
// and frequency ranking. Extraction is fully deterministic: equal-frequency
// words keep their first-occurrence order.
type Extractor struct {
	count      int
	minWordLen int
	log        *logger.Logger
}

// NewExtractor creates an Extractor returning at most count keywords and
// ignoring words of minWordLen characters or fewer.
func NewExtractor(count, minWordLen int, log *logger.Logger) *Extractor {
	return &Extractor{count: count, minWordLen: minWordLen, log: log}
}

// Extract returns up to count keywords from text, most frequent first. An
// empty result is valid, not an error. If part-of-speech tagging fails, a
// plain frequency ranking over whitespace-split words is used instead.
func (e *Extractor) Extract(text string) []string {
	text = strings.ToLower(text)

	words, err := e.tagContentWords(text)
	if err != nil {
		e.log.Warn(fmt.Sprintf("POS tagging failed, falling back to plain tokenization: %v", err))
		words = strings.Fields(text)
	}

	return e.rank(words)
}

// tagContentWords tokenizes and tags text, keeping only nouns (NN*) and
// adjectives (JJ*).
func (e *Extractor) tagContentWords(text string) ([]string, error) {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false), prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}

	var words []string
	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "NN") || strings.HasPrefix(tok.Tag, "JJ") {
			words = append(words, tok.Text)
		}
	}
	return words, nil
}

// rank filters candidates and returns the top-count words by frequency,
// breaking ties by first occurrence in the input.
func (e *Extractor) rank(words []string) []string {
	freq := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, word := range words {
		if !e.eligible(word) {
			continue
		}
		if _, seen := freq[word]; !seen {
			firstSeen[word] = i
		}
		freq[word]++
	}

	ranked := make([]string, 0, len(freq))
	for word := range freq {
		ranked = append(ranked, word)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if freq[ranked[i]] != freq[ranked[j]] {
			return freq[ranked[i]] > freq[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})

	if len(ranked) > e.count {
		ranked = ranked[:e.count]
	}
	return ranked
}

// eligible reports whether a word can be a keyword: strictly alphanumeric,
// longer than the minimum length, and not a stopword.
func (e *Extractor) eligible(word string) bool {
	if len(word) <= e.minWordLen {
		return false
	}
	if isStopword(word) {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
