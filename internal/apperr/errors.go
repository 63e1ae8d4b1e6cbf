// Package apperr defines the error taxonomy shared by the pipelines and the
// HTTP layer. Handlers match these sentinels with errors.Is to pick a status
// code, so every fallible component wraps one of them instead of inventing
// ad-hoc error strings.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not an
	// accepted document type.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction is returned when a document stream cannot be parsed
	// (corrupt or encrypted input). It is reported per document, not for
	// the whole batch.
	ErrExtraction = errors.New("document text extraction failed")

	// ErrEmbeddingService is returned when the embedding backend fails or
	// rate-limits. An ingestion that hits it is rejected as a whole.
	ErrEmbeddingService = errors.New("embedding service failed")

	// ErrIndexNotFound is returned when no index snapshot exists under the
	// requested name. This is the expected state before any ingestion.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrSynthesis is returned when the generative backend fails to produce
	// an answer or summary.
	ErrSynthesis = errors.New("text synthesis failed")

	// ErrExternalAPI is returned on a non-success response from an academic
	// or search API.
	ErrExternalAPI = errors.New("external API request failed")

	// ErrSpeechNotUnderstood is returned when captured audio produced no
	// usable transcript.
	ErrSpeechNotUnderstood = errors.New("speech was not understood")

	// ErrSpeechUnavailable is returned when the speech service cannot be
	// reached.
	ErrSpeechUnavailable = errors.New("speech service unavailable")

	// ErrConfiguration is returned for missing credentials or invalid
	// settings. It aborts startup, never a single request.
	ErrConfiguration = errors.New("invalid configuration")
)

// StepError annotates an error with the pipeline step that produced it, so
// API responses can name the failing step without exposing internals.
type StepError struct {
	Step string
	Err  error
}

// Step wraps err with the name of the failing step. A nil err yields nil.
func Step(step string, err error) error {
	if err == nil {
		return nil
	}
	return &StepError{Step: step, Err: err}
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepOf extracts the step name from an error chain, or "" if none is set.
func StepOf(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
