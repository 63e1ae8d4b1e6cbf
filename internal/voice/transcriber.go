// Package voice turns microphone audio into question text by delegating to a
// speech-to-text sidecar service.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docuchat/internal/apperr"
	"docuchat/internal/rag/interfaces"
	"docuchat/pkg/logger"
)

// HTTPTranscriber calls the sidecar's /transcribe endpoint. The sidecar owns
// the microphone; this client only relays listen parameters and collects the
// transcript.
type HTTPTranscriber struct {
	hc          *http.Client
	baseURL     string
	listenLimit time.Duration
	phraseLimit time.Duration
	log         *logger.Logger
}

// NewHTTPTranscriber creates a transcriber client against baseURL.
// listenLimit bounds how long the sidecar waits for speech to start and
// phraseLimit bounds the length of the captured phrase.
func NewHTTPTranscriber(hc *http.Client, baseURL string, listenLimit, phraseLimit time.Duration, log *logger.Logger) *HTTPTranscriber {
	return &HTTPTranscriber{
		hc:          hc,
		baseURL:     strings.TrimRight(baseURL, "/"),
		listenLimit: listenLimit,
		phraseLimit: phraseLimit,
		log:         log,
	}
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
	Error      string `json:"error"`
}

// Transcribe asks the sidecar to listen once and returns the recognized
// text. Unintelligible speech maps to ErrSpeechNotUnderstood; an unreachable
// or failing sidecar maps to ErrSpeechUnavailable.
func (t *HTTPTranscriber) Transcribe(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("timeout", fmt.Sprintf("%.0f", t.listenLimit.Seconds()))
	params.Set("phrase_time_limit", fmt.Sprintf("%.0f", t.phraseLimit.Seconds()))
	reqURL := t.baseURL + "/transcribe?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrSpeechUnavailable, err)
	}
	resp, err := t.hc.Do(req)
	if err != nil {
		t.log.Error(fmt.Sprintf("Speech service unreachable: %v", err))
		return "", fmt.Errorf("%w: %v", apperr.ErrSpeechUnavailable, err)
	}
	defer resp.Body.Close()

	var parsed transcribeResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("%w: malformed response: %v", apperr.ErrSpeechUnavailable, decodeErr)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		transcript := strings.TrimSpace(parsed.Transcript)
		if transcript == "" {
			return "", apperr.ErrSpeechNotUnderstood
		}
		return transcript, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", fmt.Errorf("%w: %s", apperr.ErrSpeechNotUnderstood, parsed.Error)
	default:
		return "", fmt.Errorf("%w: speech service returned status %d", apperr.ErrSpeechUnavailable, resp.StatusCode)
	}
}

var _ interfaces.Transcriber = (*HTTPTranscriber)(nil)
