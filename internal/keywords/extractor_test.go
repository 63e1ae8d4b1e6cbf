package keywords

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"docuchat/pkg/logger"
)

func testLogger() *logger.Logger {
	logger.Init(logrus.ErrorLevel)
	return logger.New("keywords-test")
}

func TestExtractRanksFrequentContentWords(t *testing.T) {
	e := NewExtractor(3, 3, testLogger())

	text := "The quick brown fox jumps over the lazy dog. " +
		"The quick brown fox likes the quick brown rabbit."
	got := e.Extract(text)

	if len(got) > 3 {
		t.Fatalf("got %d keywords, want at most 3", len(got))
	}
	for _, kw := range got {
		if kw == "the" || kw == "over" {
			t.Errorf("stopword %q leaked into keywords", kw)
		}
		if kw != strings.ToLower(kw) {
			t.Errorf("keyword %q not lower-cased", kw)
		}
	}
	if len(got) < 2 || got[0] != "quick" || got[1] != "brown" {
		t.Errorf("expected [quick brown ...] leading the ranking, got %v", got)
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := NewExtractor(5, 3, testLogger())
	text := "Neural networks learn representations. Neural architectures shape representations and training."

	first := e.Extract(text)
	for i := 0; i < 5; i++ {
		if got := e.Extract(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}

func TestExtractTieBreakByFirstOccurrence(t *testing.T) {
	e := NewExtractor(5, 3, testLogger())
	// Each content word appears exactly once, so ranking is by position.
	got := e.Extract("zebra apple mango")

	want := []string{"zebra", "apple", "mango"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	e := NewExtractor(5, 3, testLogger())
	if got := e.Extract(""); len(got) != 0 {
		t.Errorf("expected no keywords from empty input, got %v", got)
	}
	if got := e.Extract("the and of to in"); len(got) != 0 {
		t.Errorf("expected no keywords from pure stopwords, got %v", got)
	}
}

func TestExtractMinWordLen(t *testing.T) {
	e := NewExtractor(5, 3, testLogger())
	got := e.Extract("cat cat cat elephant elephant")
	for _, kw := range got {
		if len(kw) <= 3 {
			t.Errorf("keyword %q shorter than minimum length", kw)
		}
	}
}

func TestExtractRejectsPunctuatedTokens(t *testing.T) {
	e := NewExtractor(10, 2, testLogger())
	got := e.Extract("self-driving self-driving vision vision")
	for _, kw := range got {
		if strings.ContainsAny(kw, "-.,!?") {
			t.Errorf("non-alphanumeric keyword %q", kw)
		}
	}
}

func TestExtractCountBound(t *testing.T) {
	e := NewExtractor(2, 3, testLogger())
	got := e.Extract("alpha beta gamma delta epsilon alpha beta gamma")
	if len(got) > 2 {
		t.Errorf("got %d keywords, want at most 2", len(got))
	}
}
