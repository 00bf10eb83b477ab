package speech

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand"
)

// samplePhrases are returned by MockTranscriber.
var samplePhrases = []string{
	"Hello, my name is John. Nice to meet you.",
	"I like to study English every day.",
	"The weather is beautiful today.",
	"Can you help me with this problem?",
	"I'm learning to speak more fluently.",
	"Practice makes perfect.",
	"Good morning! How are you today?",
	"Thank you very much for your help.",
	"I enjoy reading books in English.",
	"Let's have a great conversation.",
}

// MockTranscriber returns plausible phrases instead of recognizing speech.
// The choice is seeded by the recording content so the same audio always
// yields the same transcript.
type MockTranscriber struct{}

// Transcribe implements Transcriber.
func (MockTranscriber) Transcribe(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}
	h := fnv.New64a()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read audio: %w", ErrTranscription, err)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: audio is empty", ErrTranscription)
	}
	rnd := rand.New(rand.NewSource(int64(h.Sum64())))
	first := samplePhrases[rnd.Intn(len(samplePhrases))]
	if rnd.Float64() < 0.7 {
		return first, nil
	}
	return first + " " + samplePhrases[rnd.Intn(len(samplePhrases))], nil
}
