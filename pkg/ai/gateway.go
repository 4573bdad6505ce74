// Package ai provides a uniform gateway over text-transformation
// backends. Callers pick a backend once at startup and never branch on
// which one is active.
package ai

import (
	"context"
	"errors"
	"strings"

	"edumate/pkg/domain"
)

// Input and backend failure sentinels.
var (
	// ErrEmptyInput is returned when the input text is empty after
	// trimming. The 10-character minimum is the caller's check; the
	// gateway only rejects truly empty input.
	ErrEmptyInput = errors.New("empty input text")
	// ErrBackendUnavailable is returned when no usable backend is
	// configured.
	ErrBackendUnavailable = errors.New("no transformation backend available")
	// ErrUnknownOperation is returned for operation kinds outside the
	// supported set.
	ErrUnknownOperation = errors.New("unknown operation kind")
)

// BackendError reports that the backend executed but signaled failure.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string { return "backend error: " + e.Message }

// Phase labels one step of a transformation's lifecycle.
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	// PhaseDownloading is reserved for backends that fetch model
	// weights before processing.
	PhaseDownloading Phase = "downloading"
	PhaseProcessing  Phase = "processing"
	PhaseDone        Phase = "done"
	PhaseError       Phase = "error"
)

// ProgressEvent is one entry in the ordered progress sequence emitted
// during a transformation: initializing precedes processing, which
// precedes done or error. Timing between events is not guaranteed.
type ProgressEvent struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
}

// ProgressFunc observes progress events. A nil ProgressFunc is valid.
type ProgressFunc func(ProgressEvent)

// Options tunes an operation. Unrecognized values fall back to
// documented defaults instead of failing.
type Options struct {
	// Style applies to summarize: key-points, tl;dr, teaser, headline.
	Style string `json:"style,omitempty"`
	// Length applies to summarize: short, medium, long.
	Length string `json:"length,omitempty"`
	// Tone applies to simplify: more-casual, more-formal, as-is.
	Tone string `json:"tone,omitempty"`
	// QuestionCount applies to question generation; defaults to 5.
	QuestionCount int `json:"questionCount,omitempty"`
}

// Map flattens options for persistence alongside the record.
func (o Options) Map() map[string]string {
	m := make(map[string]string, 3)
	if o.Style != "" {
		m["style"] = o.Style
	}
	if o.Length != "" {
		m["length"] = o.Length
	}
	if o.Tone != "" {
		m["tone"] = o.Tone
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// Request is the backend-facing call shape: text in, operation kind,
// options. The response is a single string; backends never return
// partial results.
type Request struct {
	Kind    domain.OperationKind `json:"operationKind"`
	Text    string               `json:"text"`
	Options Options              `json:"options"`
}

// Backend executes one transformation to completion or failure. A
// conforming implementation may call a hosted API, an on-device model,
// or a deterministic stand-in.
type Backend interface {
	Transform(ctx context.Context, req Request, progress ProgressFunc) (string, error)
}

// Gateway validates input, frames the progress sequence, and delegates
// to the configured backend. It performs no retries and supports no
// cancellation beyond ctx propagation; a call runs to completion or
// failure.
type Gateway struct {
	backend Backend
}

// NewGateway wraps a backend. A nil backend yields a gateway whose
// calls fail with ErrBackendUnavailable.
func NewGateway(backend Backend) *Gateway {
	return &Gateway{backend: backend}
}

// Transform runs one operation over text and returns the transformed
// string.
func (g *Gateway) Transform(ctx context.Context, kind domain.OperationKind, text string, opts Options, progress ProgressFunc) (string, error) {
	emit := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}
	if !kind.Known() {
		return "", ErrUnknownOperation
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	if g == nil || g.backend == nil {
		return "", ErrBackendUnavailable
	}

	emit(ProgressEvent{Phase: PhaseInitializing, Message: "preparing " + string(kind)})
	emit(ProgressEvent{Phase: PhaseProcessing, Message: "running " + string(kind)})

	result, err := g.backend.Transform(ctx, Request{Kind: kind, Text: text, Options: opts}, progress)
	if err != nil {
		emit(ProgressEvent{Phase: PhaseError, Message: err.Error()})
		var be *BackendError
		if errors.As(err, &be) {
			return "", err
		}
		return "", &BackendError{Message: err.Error()}
	}

	emit(ProgressEvent{Phase: PhaseDone, Message: string(kind) + " complete"})
	return result, nil
}
