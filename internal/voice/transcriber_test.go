package voice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"docuchat/internal/apperr"
	"docuchat/pkg/logger"
)

func testLogger() *logger.Logger {
	logger.Init(logrus.ErrorLevel)
	return logger.New("voice-test")
}

func newTranscriber(baseURL string) *HTTPTranscriber {
	hc := &http.Client{Timeout: 5 * time.Second}
	return NewHTTPTranscriber(hc, baseURL, 5*time.Second, 10*time.Second, testLogger())
}

func TestTranscribeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transcribe" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("timeout") != "5" {
			t.Errorf("timeout param = %q", r.URL.Query().Get("timeout"))
		}
		fmt.Fprint(w, `{"transcript": "  what are cats  "}`)
	}))
	defer srv.Close()

	got, err := newTranscriber(srv.URL).Transcribe(context.Background())
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if got != "what are cats" {
		t.Errorf("transcript = %q", got)
	}
}

func TestTranscribeEmptyTranscriptNotUnderstood(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"transcript": ""}`)
	}))
	defer srv.Close()

	_, err := newTranscriber(srv.URL).Transcribe(context.Background())
	if !errors.Is(err, apperr.ErrSpeechNotUnderstood) {
		t.Fatalf("expected ErrSpeechNotUnderstood, got %v", err)
	}
}

func TestTranscribeClientErrorNotUnderstood(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "could not understand audio"}`)
	}))
	defer srv.Close()

	_, err := newTranscriber(srv.URL).Transcribe(context.Background())
	if !errors.Is(err, apperr.ErrSpeechNotUnderstood) {
		t.Fatalf("expected ErrSpeechNotUnderstood, got %v", err)
	}
}

func TestTranscribeServerErrorUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTranscriber(srv.URL).Transcribe(context.Background())
	if !errors.Is(err, apperr.ErrSpeechUnavailable) {
		t.Fatalf("expected ErrSpeechUnavailable, got %v", err)
	}
}

func TestTranscribeUnreachableUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTranscriber(srv.URL).Transcribe(context.Background())
	if !errors.Is(err, apperr.ErrSpeechUnavailable) {
		t.Fatalf("expected ErrSpeechUnavailable, got %v", err)
	}
}
