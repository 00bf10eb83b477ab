package progression

import (
	"github.com/samber/lo"

	"github.com/verte-zerg/shadow/internal/model"
)

// Achievement types.
const (
	FirstPractice = "first_practice"
	Streak3       = "streak_3"
	Streak7       = "streak_7"
	Streak30      = "streak_30"
	Practice10    = "practice_10"
	Practice50    = "practice_50"
	Practice100   = "practice_100"
	PerfectScore  = "perfect_score"
	HighScorer    = "high_scorer"
	Level5        = "level_5"
	Level10       = "level_10"
)

// facts are the values achievement rules look at.
type facts struct {
	totalPractices int
	currentStreak  int
	score          float64
	averageScore   float64
	level          int
}

type rule struct {
	def  model.AchievementDefinition
	when func(facts) bool
}

var rules = []rule{
	{
		def:  model.AchievementDefinition{Type: FirstPractice, Title: "First Steps", Description: "Complete your first practice session", Icon: "🎯"},
		when: func(f facts) bool { return f.totalPractices >= 1 },
	},
	{
		def:  model.AchievementDefinition{Type: Streak3, Title: "Getting Started", Description: "Maintain a 3-day streak", Icon: "🔥"},
		when: func(f facts) bool { return f.currentStreak >= 3 },
	},
	{
		def:  model.AchievementDefinition{Type: Streak7, Title: "Week Warrior", Description: "Maintain a 7-day streak", Icon: "💪"},
		when: func(f facts) bool { return f.currentStreak >= 7 },
	},
	{
		def:  model.AchievementDefinition{Type: Streak30, Title: "Monthly Master", Description: "Maintain a 30-day streak", Icon: "👑"},
		when: func(f facts) bool { return f.currentStreak >= 30 },
	},
	{
		def:  model.AchievementDefinition{Type: Practice10, Title: "Dedicated Learner", Description: "Complete 10 practice sessions", Icon: "📚"},
		when: func(f facts) bool { return f.totalPractices >= 10 },
	},
	{
		def:  model.AchievementDefinition{Type: Practice50, Title: "Persistent Student", Description: "Complete 50 practice sessions", Icon: "🌟"},
		when: func(f facts) bool { return f.totalPractices >= 50 },
	},
	{
		def:  model.AchievementDefinition{Type: Practice100, Title: "Century Club", Description: "Complete 100 practice sessions", Icon: "💯"},
		when: func(f facts) bool { return f.totalPractices >= 100 },
	},
	{
		def:  model.AchievementDefinition{Type: PerfectScore, Title: "Perfectionist", Description: "Achieve a 100% score", Icon: "✨"},
		when: func(f facts) bool { return f.score >= 100 },
	},
	{
		def:  model.AchievementDefinition{Type: HighScorer, Title: "High Achiever", Description: "Average score above 90%", Icon: "⭐"},
		when: func(f facts) bool { return f.averageScore >= 90 },
	},
	{
		def:  model.AchievementDefinition{Type: Level5, Title: "Rising Star", Description: "Reach level 5", Icon: "🚀"},
		when: func(f facts) bool { return f.level >= 5 },
	},
	{
		def:  model.AchievementDefinition{Type: Level10, Title: "Expert Learner", Description: "Reach level 10", Icon: "🏆"},
		when: func(f facts) bool { return f.level >= 10 },
	},
}

// Catalog returns every achievement definition in catalog order.
func Catalog() []model.AchievementDefinition {
	return lo.Map(rules, func(r rule, _ int) model.AchievementDefinition {
		return r.def
	})
}

// Lookup returns the definition of an achievement type.
func Lookup(achievementType string) (model.AchievementDefinition, bool) {
	r, ok := lo.Find(rules, func(r rule) bool {
		return r.def.Type == achievementType
	})
	return r.def, ok
}

// CheckAchievements returns achievements whose condition holds for snap and
// the latest score but that snap has not unlocked yet.
func (e *Engine) CheckAchievements(snap model.ProgressionSnapshot, score float64) []model.AchievementDefinition {
	f := facts{
		totalPractices: snap.TotalPractices,
		currentStreak:  snap.CurrentStreak,
		score:          score,
		averageScore:   snap.AverageScore,
		level:          snap.Level,
	}
	var out []model.AchievementDefinition
	for _, r := range e.catalog {
		if snap.HasAchievement(r.def.Type) {
			continue
		}
		if r.when(f) {
			out = append(out, r.def)
		}
	}
	return out
}

func (e *Engine) unlock(snap *model.ProgressionSnapshot, score float64) []model.AchievementDefinition {
	unlocked := e.CheckAchievements(*snap, score)
	for _, def := range unlocked {
		snap.UnlockedAchievementTypes[def.Type] = struct{}{}
	}
	return unlocked
}
