// Package practice orchestrates materials, evaluation and progression.
package practice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/shadow/internal/feedback"
	"github.com/verte-zerg/shadow/internal/model"
	"github.com/verte-zerg/shadow/internal/progression"
	"github.com/verte-zerg/shadow/internal/speech"
	"github.com/verte-zerg/shadow/internal/stats"
	"github.com/verte-zerg/shadow/internal/store"
	"github.com/verte-zerg/shadow/internal/timestamp"
)

// maxTitleLength bounds material titles in runes.
const maxTitleLength = 255

// Store is the persistence used by the service.
type Store interface {
	stats.Source
	ApplyPractice(ctx context.Context, userID string, rec store.PracticeRecord, now time.Time, transition store.Transition) (store.AppliedPractice, error)
	InsertMaterial(ctx context.Context, m model.Material, timestamps []model.SentenceTimestamp) (model.Material, error)
	GetMaterial(ctx context.Context, id string) (model.Material, error)
	ListMaterials(ctx context.Context, filter model.MaterialFilter) ([]model.MaterialSummary, error)
	DeleteMaterial(ctx context.Context, id, userID string) (string, error)
}

// Options configures a Service. Store is required; other zero fields get
// local defaults.
type Options struct {
	Store               Store
	Synthesizer         speech.Synthesizer
	Transcriber         speech.Transcriber
	Feedback            feedback.Writer
	Engine              *progression.Engine
	Now                 func() time.Time
	Logger              zerolog.Logger
	DegradeOnStoreError bool
}

// Service is the single entry point used by the CLI and screens.
type Service struct {
	store       Store
	synth       speech.Synthesizer
	transcriber speech.Transcriber
	writer      feedback.Writer
	engine      *progression.Engine
	now         func() time.Time
	log         zerolog.Logger
	degrade     bool
}

// New builds a Service.
func New(opts Options) *Service {
	s := &Service{
		store:       opts.Store,
		synth:       opts.Synthesizer,
		transcriber: opts.Transcriber,
		writer:      opts.Feedback,
		engine:      opts.Engine,
		now:         opts.Now,
		log:         opts.Logger,
		degrade:     opts.DegradeOnStoreError,
	}
	if s.transcriber == nil {
		s.transcriber = speech.MockTranscriber{}
	}
	if s.writer == nil {
		s.writer = feedback.Template{}
	}
	if s.engine == nil {
		s.engine = progression.New(progression.DefaultConfig())
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// NewMaterial describes a material to create.
type NewMaterial struct {
	Title       string
	Description string
	Difficulty  model.Difficulty
	Sentences   []string
	CreatedBy   string
}

// CreateMaterial synthesizes audio for the sentences, allocates sentence
// timestamps over the measured audio duration and stores the material.
func (s *Service) CreateMaterial(ctx context.Context, in NewMaterial) (model.Material, error) {
	sentences := make([]string, 0, len(in.Sentences))
	for _, sentence := range in.Sentences {
		if trimmed := strings.TrimSpace(sentence); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return model.Material{}, invalid("title", "must not be empty")
	case utf8.RuneCountInString(title) > maxTitleLength:
		return model.Material{}, invalid("title", "must be at most %d characters", maxTitleLength)
	case !in.Difficulty.Valid():
		return model.Material{}, invalid("difficulty", "unknown difficulty %q", in.Difficulty)
	case len(sentences) == 0:
		return model.Material{}, invalid("sentences", "at least one sentence is required")
	case strings.TrimSpace(in.CreatedBy) == "":
		return model.Material{}, invalid("user", "must not be empty")
	}
	if s.synth == nil {
		return model.Material{}, fmt.Errorf("%w: no synthesizer configured", speech.ErrSynthesis)
	}

	audio, err := s.synth.Synthesize(ctx, strings.Join(sentences, " "))
	if err != nil {
		return model.Material{}, fmt.Errorf("failed to synthesize material audio: %w", err)
	}
	timestamps := timestamp.Allocate(sentences, audio.DurationSeconds)

	m, err := s.store.InsertMaterial(ctx, model.Material{
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		Difficulty:      in.Difficulty,
		AudioPath:       audio.Path,
		DurationSeconds: audio.DurationSeconds,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       s.now(),
	}, timestamps)
	if err != nil {
		s.removeAudio(audio.Path)
		return model.Material{}, fmt.Errorf("failed to store material: %w", err)
	}
	s.log.Info().
		Str("material", m.ID).
		Int("sentences", len(m.Sentences)).
		Float64("duration", m.DurationSeconds).
		Msg("material created")
	return m, nil
}

// Material returns a stored material.
func (s *Service) Material(ctx context.Context, id string) (model.Material, error) {
	m, err := s.store.GetMaterial(ctx, id)
	if err != nil {
		return model.Material{}, fmt.Errorf("failed to load material: %w", err)
	}
	return m, nil
}

// ListMaterials returns material rows matching filter.
func (s *Service) ListMaterials(ctx context.Context, filter model.MaterialFilter) ([]model.MaterialSummary, error) {
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, invalid("difficulty", "unknown difficulty %q", filter.Difficulty)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, invalid("page", "limit and offset must be >= 0")
	}
	list, err := s.store.ListMaterials(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return list, nil
}

// DeleteMaterial removes a material owned by userID and its audio file.
func (s *Service) DeleteMaterial(ctx context.Context, id, userID string) error {
	audioPath, err := s.store.DeleteMaterial(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	s.removeAudio(audioPath)
	return nil
}

func (s *Service) removeAudio(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Str("path", path).Msg("failed to remove audio file")
	}
}

// Transcribe turns a recording into text. Failures are returned, never
// replaced by an empty transcript.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	return text, nil
}
