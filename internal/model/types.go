// Package model defines shared data structures.
package model

import (
	"maps"
	"time"
)

// DateLayout is the persisted calendar-date format.
const DateLayout = "2006-01-02"

// WordStatus classifies a word in a transcript comparison.
type WordStatus string

// Word statuses reported by word analysis.
const (
	WordCorrect WordStatus = "correct"
	WordMissed  WordStatus = "missed"
	WordExtra   WordStatus = "extra"
)

// WordAnalysis is a single entry of the word-by-word comparison.
type WordAnalysis struct {
	Word   string     `json:"word"`
	Status WordStatus `json:"status"`
}

// ScoreResult is the outcome of comparing an expected text with a transcript.
type ScoreResult struct {
	Score              float64  `json:"score"`
	MatchedWords       []string `json:"matched_words"`
	MissedWords        []string `json:"missed_words"`
	ExtraWords         []string `json:"extra_words"`
	TotalExpectedWords int      `json:"total_expected_words"`
	MatchedCount       int      `json:"matched_count"`
	// TotalWords counts expected words including repeats.
	TotalWords int `json:"total_words"`
}

// SentenceTimestamp is a sentence window inside synthesized audio.
type SentenceTimestamp struct {
	Text          string  `json:"text"`
	StartTime     float64 `json:"start_time"`
	EndTime       float64 `json:"end_time"`
	SequenceOrder int     `json:"sequence_order"`
}

// DailyGoal tracks practice count for one calendar day.
type DailyGoal struct {
	TargetCount    int       `json:"target_count"`
	CompletedCount int       `json:"completed_count"`
	Date           time.Time `json:"goal_date"`
}

// Done reports whether the target was reached.
func (g DailyGoal) Done() bool {
	return g.TargetCount > 0 && g.CompletedCount >= g.TargetCount
}

// ProgressionSnapshot is a user's gamification state.
// The zero value is the default for a user who never practiced.
type ProgressionSnapshot struct {
	CurrentStreak            int                 `json:"current_streak"`
	LongestStreak            int                 `json:"longest_streak"`
	LastPracticeDate         *time.Time          `json:"last_practice_date"`
	TotalXP                  int                 `json:"total_xp"`
	TotalPractices           int                 `json:"total_practices"`
	TotalTimeSeconds         int                 `json:"total_time_seconds"`
	AverageScore             float64             `json:"average_score"`
	Level                    int                 `json:"level"`
	UnlockedAchievementTypes map[string]struct{} `json:"unlocked_achievement_types"`
	DailyGoal                DailyGoal           `json:"daily_goal"`
}

// Clone returns a deep copy of the snapshot.
func (s ProgressionSnapshot) Clone() ProgressionSnapshot {
	out := s
	if s.LastPracticeDate != nil {
		d := *s.LastPracticeDate
		out.LastPracticeDate = &d
	}
	out.UnlockedAchievementTypes = maps.Clone(s.UnlockedAchievementTypes)
	if out.UnlockedAchievementTypes == nil {
		out.UnlockedAchievementTypes = map[string]struct{}{}
	}
	return out
}

// HasAchievement reports whether the achievement type is unlocked.
func (s ProgressionSnapshot) HasAchievement(achievementType string) bool {
	_, ok := s.UnlockedAchievementTypes[achievementType]
	return ok
}

// AchievementDefinition describes an unlockable achievement.
type AchievementDefinition struct {
	Type        string `json:"achievement_type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Achievement is an unlocked achievement of a user.
type Achievement struct {
	ID string `json:"id"`
	AchievementDefinition
	UnlockedAt time.Time `json:"unlocked_at"`
}

// PracticeResult is the input of a progression transition.
type PracticeResult struct {
	Score           float64
	DurationSeconds int
}

// Difficulty labels a material.
type Difficulty string

// Supported difficulties.
const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	default:
		return false
	}
}

// Sentence is a stored sentence of a material.
type Sentence struct {
	ID string `json:"id"`
	SentenceTimestamp
}

// Material is a practice text with its synthesized audio.
type Material struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Difficulty      Difficulty `json:"difficulty"`
	AudioPath       string     `json:"audio_path"`
	DurationSeconds float64    `json:"duration_seconds"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	Sentences       []Sentence `json:"sentences"`
}

// Text joins the material sentences in sequence order.
func (m Material) Text() string {
	var out []byte
	for i, s := range m.Sentences {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, s.Text...)
	}
	return string(out)
}

// MaterialSummary is a material list row.
type MaterialSummary struct {
	ID              string
	Title           string
	Description     string
	Difficulty      Difficulty
	AudioPath       string
	DurationSeconds float64
	CreatedAt       time.Time
	PracticeCount   int
	BestScore       *float64
}

// MaterialFilter narrows material listings.
type MaterialFilter struct {
	CreatedBy  string
	Difficulty Difficulty
	Limit      int
	Offset     int
}

// PracticeLog is a stored practice attempt.
type PracticeLog struct {
	ID              string
	UserID          string
	MaterialID      string
	Score           float64
	DurationSeconds int
	XPGained        int
	UserTranscript  string
	Feedback        string
	MissedWords     []string
	CreatedAt       time.Time
}

// DateOf returns the calendar date of t as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a persisted calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}
