// Package progression computes streaks, XP, levels, daily goals and
// achievements after a practice attempt.
//
// The Engine is a pure function of the previous snapshot and the new result.
// It never reads the clock and holds only immutable configuration, so a
// single instance may be shared between goroutines.
package progression

import (
	"math"
	"slices"
	"time"

	"github.com/verte-zerg/shadow/internal/model"
)

// DefaultDailyTarget is the practice count of a freshly created daily goal.
const DefaultDailyTarget = 5

// DefaultLevelThresholds is the cumulative XP needed for each level.
var DefaultLevelThresholds = []int{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000, 15000}

// Config holds the engine tuning.
type Config struct {
	LevelThresholds []int
	DailyTarget     int
}

// DefaultConfig returns the standard ladder and daily target.
func DefaultConfig() Config {
	return Config{
		LevelThresholds: slices.Clone(DefaultLevelThresholds),
		DailyTarget:     DefaultDailyTarget,
	}
}

// Engine applies practice results to progression snapshots.
type Engine struct {
	thresholds  []int
	dailyTarget int
	catalog     []rule
}

// New returns an Engine. Zero config fields fall back to defaults.
func New(cfg Config) *Engine {
	thresholds := slices.Clone(cfg.LevelThresholds)
	if len(thresholds) == 0 {
		thresholds = slices.Clone(DefaultLevelThresholds)
	}
	slices.Sort(thresholds)
	target := cfg.DailyTarget
	if target <= 0 {
		target = DefaultDailyTarget
	}
	return &Engine{
		thresholds:  thresholds,
		dailyTarget: target,
		catalog:     rules,
	}
}

// Submit applies one practice result made on today and returns the new
// snapshot together with achievements unlocked by it, in catalog order.
// prev is not modified.
func (e *Engine) Submit(prev model.ProgressionSnapshot, result model.PracticeResult, today time.Time) (model.ProgressionSnapshot, []model.AchievementDefinition) {
	today = model.DateOf(today)
	next := prev.Clone()

	next.CurrentStreak = NextStreak(prev.CurrentStreak, prev.LastPracticeDate, today)
	next.LongestStreak = max(prev.LongestStreak, next.CurrentStreak)
	next.LastPracticeDate = &today

	next.TotalXP += XPGain(result.Score, result.DurationSeconds)
	next.AverageScore = runningAverage(prev.AverageScore, prev.TotalPractices, result.Score)
	next.TotalPractices++
	next.TotalTimeSeconds += result.DurationSeconds
	next.Level = e.Level(next.TotalXP)

	next.DailyGoal = e.nextDailyGoal(prev.DailyGoal, today)

	unlocked := e.unlock(&next, result.Score)
	return next, unlocked
}

// XPGain is floor(score*duration/10), never less than 1.
func XPGain(score float64, durationSeconds int) int {
	xp := int(math.Floor(score * float64(durationSeconds) / 10))
	return max(xp, 1)
}

// NextStreak advances a streak for a practice on today given the previous
// practice date. Same-day practice keeps the streak, the next day extends
// it, anything else restarts it at 1.
func NextStreak(current int, last *time.Time, today time.Time) int {
	if last == nil {
		return 1
	}
	lastDay := model.DateOf(*last)
	today = model.DateOf(today)
	switch {
	case lastDay.Equal(today):
		return current
	case lastDay.AddDate(0, 0, 1).Equal(today):
		return current + 1
	default:
		return 1
	}
}

func (e *Engine) nextDailyGoal(prev model.DailyGoal, today time.Time) model.DailyGoal {
	if !prev.Date.IsZero() && model.DateOf(prev.Date).Equal(today) {
		prev.CompletedCount++
		return prev
	}
	return model.DailyGoal{
		TargetCount:    e.dailyTarget,
		CompletedCount: 1,
		Date:           today,
	}
}

// NewDailyGoal returns an untouched goal for date.
func (e *Engine) NewDailyGoal(date time.Time) model.DailyGoal {
	return model.DailyGoal{TargetCount: e.dailyTarget, Date: model.DateOf(date)}
}

func runningAverage(avg float64, count int, score float64) float64 {
	return round2((avg*float64(count) + score) / float64(count+1))
}

func round2(v float64) float64 {
	return model.Round(v, 2)
}
