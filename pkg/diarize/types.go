// Package diarize wraps the external speaker-diarization capability and the
// alignment step that distributes transcript words across speaker turns.
package diarize

import (
	"context"
	"errors"
	"io"
)

// ErrNoResult is the definitive-failure sentinel shared with the
// transcription client: bounded retries are exhausted, whatever the
// underlying sub-step failure was.
var ErrNoResult = errors.New("diarization produced no result")

// Turn is one contiguous time span the capability attributed to a single
// speaker. Times are seconds from the start of the audio segment.
type Turn struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

func (t Turn) Duration() float64 {
	return t.End - t.Start
}

// Diarizer is one attempt against the diarization capability. Turns come
// back in chronological order.
type Diarizer interface {
	Diarize(ctx context.Context, audio io.Reader, filename string) ([]Turn, error)
}
