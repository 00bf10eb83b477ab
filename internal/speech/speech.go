// Package speech defines the synthesis and transcription collaborators and
// their local implementations.
package speech

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrSynthesis marks failures of a Synthesizer.
	ErrSynthesis = errors.New("speech synthesis failed")
	// ErrTranscription marks failures of a Transcriber.
	ErrTranscription = errors.New("transcription failed")
)

// Audio is synthesized speech stored on disk.
type Audio struct {
	Path            string
	DurationSeconds float64
}

// Synthesizer turns text into audio. DurationSeconds must be the duration of
// the produced audio, not an estimate.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}

// Transcriber turns a recording into text. Errors wrap ErrTranscription.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}
