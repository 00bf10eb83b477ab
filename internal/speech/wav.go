package speech

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

const (
	// DefaultWordsPerMinute is the assumed speaking rate of synthesized speech.
	DefaultWordsPerMinute = 150
	// DefaultSampleRate of generated WAV files.
	DefaultSampleRate = 22050

	bitDepth    = 16
	pcmFormat   = 1
	numChannels = 1
)

// SilentSynthesizer writes silent mono PCM WAV files whose length matches the
// time a speaker needs for the text. It stands in for a real voice service.
type SilentSynthesizer struct {
	Dir            string
	WordsPerMinute int
	SampleRate     int
}

// NewSilentSynthesizer returns a synthesizer writing into dir.
func NewSilentSynthesizer(dir string, wordsPerMinute, sampleRate int) *SilentSynthesizer {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &SilentSynthesizer{Dir: dir, WordsPerMinute: wordsPerMinute, SampleRate: sampleRate}
}

// EstimateSeconds returns the whole seconds needed to speak text, at least 1.
func EstimateSeconds(text string, wordsPerMinute int) int {
	words := len(strings.Fields(text))
	seconds := int(float64(words) / float64(wordsPerMinute) * 60)
	return max(seconds, 1)
}

// Synthesize implements Synthesizer.
func (s *SilentSynthesizer) Synthesize(ctx context.Context, text string) (Audio, error) {
	if err := ctx.Err(); err != nil {
		return Audio{}, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	if strings.TrimSpace(text) == "" {
		return Audio{}, fmt.Errorf("%w: text is empty", ErrSynthesis)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return Audio{}, fmt.Errorf("%w: failed to create audio dir: %w", ErrSynthesis, err)
	}
	path := filepath.Join(s.Dir, uuid.NewString()+".wav")
	seconds := EstimateSeconds(text, s.WordsPerMinute)
	if err := writeSilence(path, s.SampleRate, seconds); err != nil {
		_ = os.Remove(path)
		return Audio{}, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	duration, err := Duration(path)
	if err != nil {
		_ = os.Remove(path)
		return Audio{}, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	return Audio{Path: path, DurationSeconds: duration}, nil
}

func writeSilence(path string, sampleRate, seconds int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav: %w", err)
	}
	enc := wav.NewEncoder(f, sampleRate, bitDepth, numChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: sampleRate},
		Data:           make([]int, sampleRate*seconds*numChannels),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return f.Close()
}

// Duration reads the playback length of a WAV file in seconds, rounded to
// milliseconds.
func Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("invalid wav file: %s", path)
	}
	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("failed to read wav duration: %w", err)
	}
	return math.Round(d.Seconds()*1000) / 1000, nil
}
