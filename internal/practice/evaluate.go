package practice

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/shadow/internal/feedback"
	"github.com/verte-zerg/shadow/internal/model"
	"github.com/verte-zerg/shadow/internal/progression"
	"github.com/verte-zerg/shadow/internal/scoring"
	"github.com/verte-zerg/shadow/internal/store"
)

// Evaluation is a scored transcript of a material.
type Evaluation struct {
	MaterialID string
	Expected   string
	Transcript string
	Result     model.ScoreResult
	Analysis   []model.WordAnalysis
	NearMisses []scoring.NearMiss
	Feedback   string
	// DurationSeconds is the practice duration used for XPPreview.
	DurationSeconds int
	XPPreview       int
}

// Evaluate scores transcript against the material text. A durationSeconds of
// zero uses the material audio length. Nothing is persisted.
func (s *Service) Evaluate(ctx context.Context, materialID, transcript string, durationSeconds int) (Evaluation, error) {
	if durationSeconds < 0 {
		return Evaluation{}, invalid("duration", "must be >= 0, got %d", durationSeconds)
	}
	m, err := s.Material(ctx, materialID)
	if err != nil {
		return Evaluation{}, err
	}
	if durationSeconds == 0 {
		durationSeconds = int(math.Round(m.DurationSeconds))
	}

	expected := m.Text()
	result := scoring.Score(expected, transcript)
	eval := Evaluation{
		MaterialID:      m.ID,
		Expected:        expected,
		Transcript:      transcript,
		Result:          result,
		Analysis:        scoring.Analyze(expected, transcript),
		NearMisses:      scoring.NearMisses(result),
		DurationSeconds: durationSeconds,
		XPPreview:       progression.XPGain(result.Score, durationSeconds),
	}

	in := feedback.Input{ExpectedText: expected, UserText: transcript, Result: result, NearMisses: eval.NearMisses}
	text, err := s.writer.Write(ctx, in)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn().Err(err).Str("material", m.ID).Msg("feedback writer failed; using template")
		text = feedback.Compose(in)
	}
	eval.Feedback = text

	s.log.Debug().
		Str("material", m.ID).
		Float64("score", result.Score).
		Int("missed", len(result.MissedWords)).
		Int("extra", len(result.ExtraWords)).
		Msg("transcript evaluated")
	return eval, nil
}

// Attempt is a scored practice ready to be recorded.
type Attempt struct {
	MaterialID      string
	Score           float64
	DurationSeconds int
	Transcript      string
	Feedback        string
	MissedWords     []string
}

// Outcome is the committed result of a practice.
type Outcome struct {
	Log      model.PracticeLog
	Previous model.ProgressionSnapshot
	Snapshot model.ProgressionSnapshot
	Unlocked []model.Achievement
	Level    progression.LevelProgress
	Goal     model.DailyGoal
	// LeveledUp is set when the practice crossed a level threshold.
	LeveledUp bool
}

// XPGained is the XP earned by the practice.
func (o Outcome) XPGained() int {
	return o.Log.XPGained
}

// GoalJustCompleted reports whether this practice completed the daily goal.
func (o Outcome) GoalJustCompleted() bool {
	return o.Goal.Done() && o.Goal.CompletedCount == o.Goal.TargetCount
}

// Record applies an attempt to the user's progression. The read of the
// stored snapshot, the transition and all writes happen in one transaction,
// so the attempt is either fully recorded or not at all.
func (s *Service) Record(ctx context.Context, userID string, a Attempt) (Outcome, error) {
	switch {
	case strings.TrimSpace(userID) == "":
		return Outcome{}, invalid("user", "must not be empty")
	case strings.TrimSpace(a.MaterialID) == "":
		return Outcome{}, invalid("material", "must not be empty")
	case math.IsNaN(a.Score) || a.Score < 0 || a.Score > 100:
		return Outcome{}, invalid("score", "must be within [0, 100], got %v", a.Score)
	case a.DurationSeconds < 0:
		return Outcome{}, invalid("duration", "must be >= 0, got %d", a.DurationSeconds)
	}

	now := s.now()
	result := model.PracticeResult{Score: a.Score, DurationSeconds: a.DurationSeconds}
	rec := store.PracticeRecord{
		MaterialID:      a.MaterialID,
		Score:           a.Score,
		DurationSeconds: a.DurationSeconds,
		UserTranscript:  a.Transcript,
		Feedback:        a.Feedback,
		MissedWords:     a.MissedWords,
	}
	applied, err := s.store.ApplyPractice(ctx, userID, rec, now, func(prev model.ProgressionSnapshot) (model.ProgressionSnapshot, []model.AchievementDefinition) {
		return s.engine.Submit(prev, result, model.DateOf(now.Local()))
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to record practice: %w", err)
	}

	out := Outcome{
		Log:      applied.Log,
		Previous: applied.Previous,
		Snapshot: applied.Snapshot,
		Unlocked: applied.Unlocked,
		Level:    s.engine.Progress(applied.Snapshot.TotalXP),
		Goal:     applied.Snapshot.DailyGoal,
	}
	out.LeveledUp = out.Level.Level > s.engine.Level(applied.Previous.TotalXP)

	unlocked := make([]string, len(out.Unlocked))
	for i, ach := range out.Unlocked {
		unlocked[i] = ach.Type
	}
	s.log.Info().
		Str("user", userID).
		Str("material", a.MaterialID).
		Float64("score", a.Score).
		Int("xp", out.XPGained()).
		Int("level", out.Snapshot.Level).
		Int("streak", out.Snapshot.CurrentStreak).
		Strs("unlocked", unlocked).
		Msg("practice recorded")
	return out, nil
}

// Submission is the outcome of evaluating and recording a transcript.
type Submission struct {
	Evaluation
	Outcome
}

// Submit evaluates transcript against the material and records the attempt.
func (s *Service) Submit(ctx context.Context, userID, materialID, transcript string, durationSeconds int) (Submission, error) {
	eval, err := s.Evaluate(ctx, materialID, transcript, durationSeconds)
	if err != nil {
		return Submission{}, err
	}
	out, err := s.Record(ctx, userID, Attempt{
		MaterialID:      eval.MaterialID,
		Score:           eval.Result.Score,
		DurationSeconds: eval.DurationSeconds,
		Transcript:      transcript,
		Feedback:        eval.Feedback,
		MissedWords:     eval.Result.MissedWords,
	})
	if err != nil {
		return Submission{}, err
	}
	return Submission{Evaluation: eval, Outcome: out}, nil
}

// Today is the calendar date used for progression.
func (s *Service) Today() time.Time {
	return model.DateOf(s.now().Local())
}
