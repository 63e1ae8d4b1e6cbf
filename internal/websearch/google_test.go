package websearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"docuchat/internal/apperr"
	"docuchat/pkg/logger"
)

func testLogger() *logger.Logger {
	logger.Init(logrus.ErrorLevel)
	return logger.New("websearch-test")
}

func newSearcher(t *testing.T, baseURL string) *GoogleSearcher {
	t.Helper()
	s, err := NewGoogleSearcher(context.Background(), "test-key", "test-cx", testLogger(), option.WithEndpoint(baseURL))
	if err != nil {
		t.Fatalf("failed to create searcher: %v", err)
	}
	return s
}

func TestSearchFormatsTopHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cx := r.URL.Query().Get("cx"); cx != "test-cx" {
			t.Errorf("cx = %q", cx)
		}
		fmt.Fprint(w, `{"items": [{"title": "Cats", "link": "https://example.org/cats", "snippet": "Cats are mammals."}]}`)
	}))
	defer srv.Close()

	got, err := newSearcher(t, srv.URL).Search(context.Background(), "what are cats")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	want := "Cats - Cats are mammals. (https://example.org/cats)"
	if got != want {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestSearchNoHitsReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	got, err := newSearcher(t, srv.URL).Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if got != NoResultSentinel {
		t.Errorf("result = %q, want sentinel", got)
	}
}

func TestSearchAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": 403, "message": "quota exceeded"}}`)
	}))
	defer srv.Close()

	_, err := newSearcher(t, srv.URL).Search(context.Background(), "anything")
	if !errors.Is(err, apperr.ErrExternalAPI) {
		t.Fatalf("expected ErrExternalAPI, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota") && !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry API detail: %v", err)
	}
}
