package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/shadow/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "shadow.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadSnapshotDefaults(t *testing.T) {
	st := openTestStore(t)
	snap, err := st.LoadSnapshot(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snap.TotalPractices != 0 || snap.LastPracticeDate != nil || snap.CurrentStreak != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
	if snap.UnlockedAchievementTypes == nil {
		t.Fatalf("expected non-nil achievement set")
	}
	if !snap.DailyGoal.Date.IsZero() {
		t.Fatalf("expected no daily goal, got %+v", snap.DailyGoal)
	}
}

func TestApplyPracticeRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	today := day(2024, time.April, 2)
	now := today.Add(9 * time.Hour)

	applied, err := st.ApplyPractice(ctx, "u1", PracticeRecord{
		MaterialID:      "m1",
		Score:           80,
		DurationSeconds: 30,
		UserTranscript:  "hello",
		Feedback:        "nice",
		MissedWords:     []string{"my"},
	}, now, func(prev model.ProgressionSnapshot) (model.ProgressionSnapshot, []model.AchievementDefinition) {
		prev.CurrentStreak = 1
		prev.LongestStreak = 1
		prev.LastPracticeDate = &today
		prev.TotalXP += 240
		prev.TotalPractices++
		prev.TotalTimeSeconds += 30
		prev.AverageScore = 80
		prev.Level = 2
		prev.DailyGoal = model.DailyGoal{TargetCount: 5, CompletedCount: 1, Date: today}
		def := model.AchievementDefinition{Type: "first_practice", Title: "First Steps", Description: "d", Icon: "i"}
		prev.UnlockedAchievementTypes[def.Type] = struct{}{}
		return prev, []model.AchievementDefinition{def}
	})
	if err != nil {
		t.Fatalf("apply practice: %v", err)
	}
	if applied.Log.XPGained != 240 {
		t.Fatalf("expected xp gained 240, got %d", applied.Log.XPGained)
	}
	if len(applied.Unlocked) != 1 || applied.Unlocked[0].Type != "first_practice" {
		t.Fatalf("unexpected unlocked: %+v", applied.Unlocked)
	}

	snap, err := st.LoadSnapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snap.TotalXP != 240 || snap.Level != 2 || snap.TotalPractices != 1 || snap.TotalTimeSeconds != 30 {
		t.Fatalf("unexpected stored snapshot: %+v", snap)
	}
	if snap.LastPracticeDate == nil || !snap.LastPracticeDate.Equal(today) {
		t.Fatalf("unexpected last practice date: %v", snap.LastPracticeDate)
	}
	if !snap.HasAchievement("first_practice") {
		t.Fatalf("expected stored achievement")
	}
	if snap.DailyGoal.CompletedCount != 1 || !snap.DailyGoal.Date.Equal(today) {
		t.Fatalf("unexpected stored goal: %+v", snap.DailyGoal)
	}

	goal, ok, err := st.GetDailyGoal(ctx, "u1", now)
	if err != nil || !ok {
		t.Fatalf("get daily goal: ok=%v err=%v", ok, err)
	}
	if goal.TargetCount != 5 || goal.CompletedCount != 1 {
		t.Fatalf("unexpected goal: %+v", goal)
	}
	if _, ok, err := st.GetDailyGoal(ctx, "u1", today.AddDate(0, 0, 1)); err != nil || ok {
		t.Fatalf("expected no goal tomorrow: ok=%v err=%v", ok, err)
	}

	logs, err := st.ListPracticeLogs(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 || logs[0].MaterialID != "m1" || logs[0].MissedWords[0] != "my" || !logs[0].CreatedAt.Equal(now) {
		t.Fatalf("unexpected logs: %+v", logs)
	}

	achievements, err := st.ListAchievements(ctx, "u1")
	if err != nil {
		t.Fatalf("list achievements: %v", err)
	}
	if len(achievements) != 1 || achievements[0].Title != "First Steps" {
		t.Fatalf("unexpected achievements: %+v", achievements)
	}
}

func TestApplyPracticeSeesPreviousState(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bump := func(prev model.ProgressionSnapshot) (model.ProgressionSnapshot, []model.AchievementDefinition) {
		prev.TotalPractices++
		prev.TotalXP += 10
		return prev, nil
	}
	for i := 0; i < 3; i++ {
		applied, err := st.ApplyPractice(ctx, "u1", PracticeRecord{MaterialID: "m"}, time.Now(), bump)
		if err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
		if applied.Previous.TotalPractices != i || applied.Snapshot.TotalPractices != i+1 {
			t.Fatalf("apply %d: unexpected transition %d -> %d", i, applied.Previous.TotalPractices, applied.Snapshot.TotalPractices)
		}
	}
	logs, err := st.ListPracticeLogs(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(logs))
	}
}

func TestApplyPracticeRollsBackOnFailure(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	ctxCanceled, cancel := context.WithCancel(ctx)
	_, err := st.ApplyPractice(ctxCanceled, "u1", PracticeRecord{MaterialID: "m"}, time.Now(),
		func(prev model.ProgressionSnapshot) (model.ProgressionSnapshot, []model.AchievementDefinition) {
			prev.TotalPractices = 99
			cancel()
			return prev, nil
		})
	if err == nil {
		t.Fatalf("expected error after context cancellation")
	}
	snap, err := st.LoadSnapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snap.TotalPractices != 0 {
		t.Fatalf("expected no partial write, got %+v", snap)
	}
	logs, err := st.ListPracticeLogs(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected no logs, got %d", len(logs))
	}
}

func TestMaterialLifecycle(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, time.April, 1, 10, 0, 0, 0, time.UTC)

	m, err := st.InsertMaterial(ctx, model.Material{
		Title:           "Greetings",
		Difficulty:      model.Beginner,
		AudioPath:       "/tmp/a.wav",
		DurationSeconds: 9,
		CreatedBy:       "u1",
		CreatedAt:       created,
	}, []model.SentenceTimestamp{
		{Text: "hi there", StartTime: 0, EndTime: 3.6, SequenceOrder: 0},
		{Text: "how are you", StartTime: 3.6, EndTime: 9, SequenceOrder: 1},
	})
	if err != nil {
		t.Fatalf("insert material: %v", err)
	}
	if m.ID == "" || len(m.Sentences) != 2 {
		t.Fatalf("unexpected inserted material: %+v", m)
	}

	got, err := st.GetMaterial(ctx, m.ID)
	if err != nil {
		t.Fatalf("get material: %v", err)
	}
	if got.Title != "Greetings" || got.Difficulty != model.Beginner || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected material: %+v", got)
	}
	if got.Text() != "hi there how are you" {
		t.Fatalf("unexpected text: %q", got.Text())
	}
	if got.Sentences[1].StartTime != 3.6 || got.Sentences[1].EndTime != 9 {
		t.Fatalf("unexpected sentence timing: %+v", got.Sentences[1])
	}

	if _, err := st.GetMaterial(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := st.DeleteMaterial(ctx, m.ID, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	path, err := st.DeleteMaterial(ctx, m.ID, "u1")
	if err != nil {
		t.Fatalf("delete material: %v", err)
	}
	if path != "/tmp/a.wav" {
		t.Fatalf("unexpected audio path: %q", path)
	}
	if _, err := st.GetMaterial(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted material to be gone, got %v", err)
	}
}

func TestListMaterials(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i, diff := range []model.Difficulty{model.Beginner, model.Advanced, model.Beginner} {
		m, err := st.InsertMaterial(ctx, model.Material{
			Title:      "m",
			Difficulty: diff,
			CreatedBy:  "u1",
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}, nil)
		if err != nil {
			t.Fatalf("insert material: %v", err)
		}
		ids = append(ids, m.ID)
	}
	if _, err := st.InsertMaterial(ctx, model.Material{Title: "other", Difficulty: model.Beginner, CreatedBy: "u2", CreatedAt: base}, nil); err != nil {
		t.Fatalf("insert material: %v", err)
	}
	noop := func(prev model.ProgressionSnapshot) (model.ProgressionSnapshot, []model.AchievementDefinition) {
		return prev, nil
	}
	for _, score := range []float64{40, 75.5} {
		if _, err := st.ApplyPractice(ctx, "u1", PracticeRecord{MaterialID: ids[0], Score: score}, time.Now(), noop); err != nil {
			t.Fatalf("apply practice: %v", err)
		}
	}

	all, err := st.ListMaterials(ctx, model.MaterialFilter{CreatedBy: "u1"})
	if err != nil {
		t.Fatalf("list materials: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 materials, got %d", len(all))
	}
	if all[0].ID != ids[2] || all[2].ID != ids[0] {
		t.Fatalf("expected newest first: %+v", all)
	}
	if all[2].PracticeCount != 2 || all[2].BestScore == nil || *all[2].BestScore != 75.5 {
		t.Fatalf("unexpected practice figures: %+v", all[2])
	}
	if all[0].PracticeCount != 0 || all[0].BestScore != nil {
		t.Fatalf("expected no practice figures: %+v", all[0])
	}

	beginner, err := st.ListMaterials(ctx, model.MaterialFilter{CreatedBy: "u1", Difficulty: model.Beginner, Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list materials: %v", err)
	}
	if len(beginner) != 1 || beginner[0].ID != ids[0] {
		t.Fatalf("unexpected filtered page: %+v", beginner)
	}
}
