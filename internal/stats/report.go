// Package stats contains progress reporting and text rendering.
package stats

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/shadow/internal/model"
	"github.com/verte-zerg/shadow/internal/progression"
)

// Source is the persistence needed to build a report.
type Source interface {
	LoadSnapshot(ctx context.Context, userID string) (model.ProgressionSnapshot, error)
	GetDailyGoal(ctx context.Context, userID string, date time.Time) (model.DailyGoal, bool, error)
	ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error)
	ListPracticeLogs(ctx context.Context, userID string, limit int) ([]model.PracticeLog, error)
}

// Options selects the report contents.
type Options struct {
	UserID       string
	Today        time.Time
	HistoryLimit int
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Snapshot     model.ProgressionSnapshot
	Level        progression.LevelProgress
	Goal         model.DailyGoal
	Achievements []model.Achievement
	// Logs are ordered newest first.
	Logs []model.PracticeLog
	// Degraded marks a report of defaults served because loading failed.
	Degraded bool
}

// BuildReport loads the report parts concurrently.
func BuildReport(ctx context.Context, src Source, engine *progression.Engine, opts Options) (Report, error) {
	var (
		snap    model.ProgressionSnapshot
		goal    model.DailyGoal
		hasGoal bool
		achs    []model.Achievement
		logs    []model.PracticeLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if snap, err = src.LoadSnapshot(gctx, opts.UserID); err != nil {
			return fmt.Errorf("failed to load progression: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if goal, hasGoal, err = src.GetDailyGoal(gctx, opts.UserID, opts.Today); err != nil {
			return fmt.Errorf("failed to load daily goal: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if achs, err = src.ListAchievements(gctx, opts.UserID); err != nil {
			return fmt.Errorf("failed to load achievements: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if logs, err = src.ListPracticeLogs(gctx, opts.UserID, opts.HistoryLimit); err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	if !hasGoal {
		goal = engine.NewDailyGoal(opts.Today)
	}
	return Report{
		Snapshot:     snap,
		Level:        engine.Progress(snap.TotalXP),
		Goal:         goal,
		Achievements: achs,
		Logs:         logs,
	}, nil
}

// DefaultReport is the report of a user without any stored progress.
func DefaultReport(engine *progression.Engine, today time.Time) Report {
	return Report{
		Snapshot: model.ProgressionSnapshot{UnlockedAchievementTypes: map[string]struct{}{}},
		Level:    engine.Progress(0),
		Goal:     engine.NewDailyGoal(today),
	}
}

// Scores returns the log scores oldest first.
func (r Report) Scores() []float64 {
	out := make([]float64, len(r.Logs))
	for i, log := range r.Logs {
		out[len(r.Logs)-1-i] = log.Score
	}
	return out
}
