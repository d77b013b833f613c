// Package stt wraps the external speech-to-text capability behind a retrying
// client. Callers get a transcript or the ErrNoResult sentinel, never a
// partial result.
package stt

import (
	"context"
	"errors"
	"io"
)

// ErrNoResult is the definitive-failure sentinel: every retry attempt was
// exhausted or the asset could not be read at all.
var ErrNoResult = errors.New("transcription produced no result")

// Transcriber is one attempt against the speech-to-text capability.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}
