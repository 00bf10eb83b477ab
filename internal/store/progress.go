package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/shadow/internal/model"
)

// Transition computes the next snapshot from the stored one and reports the
// achievements it unlocked.
type Transition func(prev model.ProgressionSnapshot) (model.ProgressionSnapshot, []model.AchievementDefinition)

// PracticeRecord is the practice attempt stored alongside a transition.
type PracticeRecord struct {
	MaterialID      string
	Score           float64
	DurationSeconds int
	UserTranscript  string
	Feedback        string
	MissedWords     []string
}

// AppliedPractice is the committed outcome of ApplyPractice.
type AppliedPractice struct {
	Log      model.PracticeLog
	Previous model.ProgressionSnapshot
	Snapshot model.ProgressionSnapshot
	Unlocked []model.Achievement
}

// LoadSnapshot returns the stored progression of a user, or the zero
// snapshot when the user never practiced.
func (s *Store) LoadSnapshot(ctx context.Context, userID string) (model.ProgressionSnapshot, error) {
	return loadSnapshot(ctx, s.db, userID)
}

// ApplyPractice runs transition against the stored snapshot and persists the
// result, the unlocked achievements and the practice log in one transaction.
// Either every change is committed or none is.
func (s *Store) ApplyPractice(ctx context.Context, userID string, rec PracticeRecord, now time.Time, transition Transition) (AppliedPractice, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AppliedPractice{}, err
	}
	defer rollback(tx)

	prev, err := loadSnapshot(ctx, tx, userID)
	if err != nil {
		return AppliedPractice{}, err
	}
	next, defs := transition(prev.Clone())

	if err := saveStats(ctx, tx, userID, next); err != nil {
		return AppliedPractice{}, fmt.Errorf("failed to save stats: %w", err)
	}
	if err := saveDailyGoal(ctx, tx, userID, next.DailyGoal); err != nil {
		return AppliedPractice{}, fmt.Errorf("failed to save daily goal: %w", err)
	}
	unlocked := make([]model.Achievement, 0, len(defs))
	for _, def := range defs {
		ach := model.Achievement{ID: uuid.NewString(), AchievementDefinition: def, UnlockedAt: now}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO achievements (id, user_id, achievement_type, title, description, icon, unlocked_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, achievement_type) DO NOTHING`,
			ach.ID, userID, def.Type, def.Title, def.Description, def.Icon, formatTime(now),
		); err != nil {
			return AppliedPractice{}, fmt.Errorf("failed to save achievement: %w", err)
		}
		unlocked = append(unlocked, ach)
	}

	log := model.PracticeLog{
		ID:              uuid.NewString(),
		UserID:          userID,
		MaterialID:      rec.MaterialID,
		Score:           rec.Score,
		DurationSeconds: rec.DurationSeconds,
		XPGained:        next.TotalXP - prev.TotalXP,
		UserTranscript:  rec.UserTranscript,
		Feedback:        rec.Feedback,
		MissedWords:     rec.MissedWords,
		CreatedAt:       now,
	}
	if err := insertLog(ctx, tx, log); err != nil {
		return AppliedPractice{}, fmt.Errorf("failed to save practice log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return AppliedPractice{}, err
	}
	return AppliedPractice{Log: log, Previous: prev, Snapshot: next, Unlocked: unlocked}, nil
}

// GetDailyGoal returns the goal of a user for date. ok is false when no
// practice happened that day.
func (s *Store) GetDailyGoal(ctx context.Context, userID string, date time.Time) (goal model.DailyGoal, ok bool, err error) {
	var dateStr string
	err = s.db.QueryRowContext(ctx,
		`SELECT target_count, completed_count, goal_date FROM daily_goals WHERE user_id = ? AND goal_date = ?`,
		userID, model.DateOf(date).Format(model.DateLayout),
	).Scan(&goal.TargetCount, &goal.CompletedCount, &dateStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DailyGoal{}, false, nil
	}
	if err != nil {
		return model.DailyGoal{}, false, err
	}
	goal.Date, err = model.ParseDate(dateStr)
	if err != nil {
		return model.DailyGoal{}, false, err
	}
	return goal, true, nil
}

// ListAchievements returns the unlocked achievements of a user, oldest first.
func (s *Store) ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, achievement_type, title, description, icon, unlocked_at
		 FROM achievements WHERE user_id = ? ORDER BY unlocked_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var result []model.Achievement
	for rows.Next() {
		var ach model.Achievement
		var unlockedAt string
		if err := rows.Scan(&ach.ID, &ach.Type, &ach.Title, &ach.Description, &ach.Icon, &unlockedAt); err != nil {
			return nil, err
		}
		if ach.UnlockedAt, err = parseTime(unlockedAt); err != nil {
			return nil, err
		}
		result = append(result, ach)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListPracticeLogs returns the newest practice logs of a user.
func (s *Store) ListPracticeLogs(ctx context.Context, userID string, limit int) ([]model.PracticeLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, material_id, score, duration_seconds, xp_gained, user_transcript, ai_feedback, missed_words, created_at
		 FROM practice_logs WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var result []model.PracticeLog
	for rows.Next() {
		var log model.PracticeLog
		var missed, createdAt string
		if err := rows.Scan(&log.ID, &log.UserID, &log.MaterialID, &log.Score, &log.DurationSeconds, &log.XPGained,
			&log.UserTranscript, &log.Feedback, &missed, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(missed), &log.MissedWords); err != nil {
			return nil, fmt.Errorf("failed to decode missed words: %w", err)
		}
		if log.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func loadSnapshot(ctx context.Context, q queryer, userID string) (model.ProgressionSnapshot, error) {
	snap := model.ProgressionSnapshot{UnlockedAchievementTypes: map[string]struct{}{}}

	var lastPractice sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT current_streak, longest_streak, last_practice_date, total_xp, total_practices, total_time_seconds, average_score, level
		 FROM user_stats WHERE user_id = ?`, userID,
	).Scan(&snap.CurrentStreak, &snap.LongestStreak, &lastPractice, &snap.TotalXP, &snap.TotalPractices,
		&snap.TotalTimeSeconds, &snap.AverageScore, &snap.Level)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return model.ProgressionSnapshot{}, fmt.Errorf("failed to load stats: %w", err)
	case lastPractice.Valid:
		d, err := model.ParseDate(lastPractice.String)
		if err != nil {
			return model.ProgressionSnapshot{}, fmt.Errorf("failed to parse last practice date: %w", err)
		}
		snap.LastPracticeDate = &d
	}

	rows, err := q.QueryContext(ctx, `SELECT achievement_type FROM achievements WHERE user_id = ?`, userID)
	if err != nil {
		return model.ProgressionSnapshot{}, fmt.Errorf("failed to load achievements: %w", err)
	}
	defer closeRows(rows)
	for rows.Next() {
		var typ string
		if err := rows.Scan(&typ); err != nil {
			return model.ProgressionSnapshot{}, err
		}
		snap.UnlockedAchievementTypes[typ] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return model.ProgressionSnapshot{}, err
	}
	closeRows(rows)

	var goalDate string
	err = q.QueryRowContext(ctx,
		`SELECT target_count, completed_count, goal_date FROM daily_goals
		 WHERE user_id = ? ORDER BY goal_date DESC LIMIT 1`, userID,
	).Scan(&snap.DailyGoal.TargetCount, &snap.DailyGoal.CompletedCount, &goalDate)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return model.ProgressionSnapshot{}, fmt.Errorf("failed to load daily goal: %w", err)
	default:
		if snap.DailyGoal.Date, err = model.ParseDate(goalDate); err != nil {
			return model.ProgressionSnapshot{}, fmt.Errorf("failed to parse goal date: %w", err)
		}
	}
	return snap, nil
}

func saveStats(ctx context.Context, tx *sql.Tx, userID string, snap model.ProgressionSnapshot) error {
	var lastPractice any
	if snap.LastPracticeDate != nil {
		lastPractice = model.DateOf(*snap.LastPracticeDate).Format(model.DateLayout)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_stats (user_id, current_streak, longest_streak, last_practice_date, total_xp, total_practices, total_time_seconds, average_score, level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_practice_date = excluded.last_practice_date,
			total_xp = excluded.total_xp,
			total_practices = excluded.total_practices,
			total_time_seconds = excluded.total_time_seconds,
			average_score = excluded.average_score,
			level = excluded.level`,
		userID, snap.CurrentStreak, snap.LongestStreak, lastPractice, snap.TotalXP, snap.TotalPractices,
		snap.TotalTimeSeconds, snap.AverageScore, snap.Level,
	)
	return err
}

func saveDailyGoal(ctx context.Context, tx *sql.Tx, userID string, goal model.DailyGoal) error {
	if goal.Date.IsZero() {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO daily_goals (id, user_id, target_count, completed_count, goal_date)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, goal_date) DO UPDATE SET
			target_count = excluded.target_count,
			completed_count = excluded.completed_count`,
		uuid.NewString(), userID, goal.TargetCount, goal.CompletedCount, model.DateOf(goal.Date).Format(model.DateLayout),
	)
	return err
}

func insertLog(ctx context.Context, tx *sql.Tx, log model.PracticeLog) error {
	missed := log.MissedWords
	if missed == nil {
		missed = []string{}
	}
	missedJSON, err := json.Marshal(missed)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO practice_logs (id, user_id, material_id, score, duration_seconds, xp_gained, user_transcript, ai_feedback, missed_words, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.UserID, log.MaterialID, log.Score, log.DurationSeconds, log.XPGained,
		log.UserTranscript, log.Feedback, string(missedJSON), formatTime(log.CreatedAt),
	)
	return err
}
