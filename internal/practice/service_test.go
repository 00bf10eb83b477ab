package practice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/shadow/internal/feedback"
	"github.com/verte-zerg/shadow/internal/model"
	"github.com/verte-zerg/shadow/internal/progression"
	"github.com/verte-zerg/shadow/internal/speech"
	"github.com/verte-zerg/shadow/internal/store"
)

var fixedNow = time.Date(2024, 5, 2, 10, 0, 0, 0, time.Local)

type testEnv struct {
	svc      *Service
	store    *store.Store
	audioDir string
}

func newTestEnv(t *testing.T, mutate func(*Options)) testEnv {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "shadow.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	audioDir := filepath.Join(dir, "audio")
	opts := Options{
		Store:               st,
		Synthesizer:         speech.NewSilentSynthesizer(audioDir, 0, 8000),
		Transcriber:         speech.MockTranscriber{},
		Feedback:            feedback.Template{},
		Engine:              progression.New(progression.DefaultConfig()),
		Now:                 func() time.Time { return fixedNow },
		Logger:              zerolog.Nop(),
		DegradeOnStoreError: true,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return testEnv{svc: New(opts), store: st, audioDir: audioDir}
}

func createMaterial(t *testing.T, svc *Service) model.Material {
	t.Helper()
	m, err := svc.CreateMaterial(context.Background(), NewMaterial{
		Title:      "Daily English",
		Difficulty: model.Beginner,
		Sentences:  []string{"I like to study English every day.", "Practice makes perfect."},
		CreatedBy:  "u1",
	})
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	return m
}

func TestCreateMaterialAllocatesTimestamps(t *testing.T) {
	env := newTestEnv(t, nil)
	m := createMaterial(t, env.svc)

	if len(m.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(m.Sentences))
	}
	if _, err := os.Stat(m.AudioPath); err != nil {
		t.Fatalf("expected audio file: %v", err)
	}
	first, last := m.Sentences[0], m.Sentences[1]
	if first.StartTime != 0 || first.EndTime != last.StartTime {
		t.Fatalf("timestamps are not contiguous: %+v", m.Sentences)
	}
	if last.EndTime != m.DurationSeconds {
		t.Fatalf("last end %v must equal duration %v", last.EndTime, m.DurationSeconds)
	}

	stored, err := env.svc.Material(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("get material: %v", err)
	}
	if stored.Text() != "I like to study English every day. Practice makes perfect." {
		t.Fatalf("unexpected text %q", stored.Text())
	}
}

func TestCreateMaterialValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	long := make([]byte, maxTitleLength+1)
	for i := range long {
		long[i] = 'a'
	}
	cases := []struct {
		field string
		in    NewMaterial
	}{
		{"title", NewMaterial{Title: " ", Difficulty: model.Beginner, Sentences: []string{"Hi."}, CreatedBy: "u1"}},
		{"title", NewMaterial{Title: string(long), Difficulty: model.Beginner, Sentences: []string{"Hi."}, CreatedBy: "u1"}},
		{"difficulty", NewMaterial{Title: "T", Difficulty: "expert", Sentences: []string{"Hi."}, CreatedBy: "u1"}},
		{"sentences", NewMaterial{Title: "T", Difficulty: model.Advanced, Sentences: []string{"  "}, CreatedBy: "u1"}},
		{"user", NewMaterial{Title: "T", Difficulty: model.Advanced, Sentences: []string{"Hi."}}},
	}
	for _, tc := range cases {
		_, err := env.svc.CreateMaterial(context.Background(), tc.in)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %s, got %v", tc.field, err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != tc.field {
			t.Fatalf("expected field %q, got %v", tc.field, err)
		}
	}
	if entries, err := os.ReadDir(env.audioDir); err == nil && len(entries) > 0 {
		t.Fatalf("rejected input must not synthesize audio")
	}
}

type failingSynth struct{}

func (failingSynth) Synthesize(context.Context, string) (speech.Audio, error) {
	return speech.Audio{}, speech.ErrSynthesis
}

func TestCreateMaterialSynthesisFailure(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Synthesizer = failingSynth{} })
	_, err := env.svc.CreateMaterial(context.Background(), NewMaterial{
		Title: "T", Difficulty: model.Beginner, Sentences: []string{"Hi."}, CreatedBy: "u1",
	})
	if !errors.Is(err, speech.ErrSynthesis) {
		t.Fatalf("expected ErrSynthesis, got %v", err)
	}
	list, err := env.svc.ListMaterials(context.Background(), model.MaterialFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected nothing stored, got %d", len(list))
	}
}

func TestEvaluate(t *testing.T) {
	env := newTestEnv(t, nil)
	m := createMaterial(t, env.svc)

	eval, err := env.svc.Evaluate(context.Background(), m.ID, "I like to study every day. Practice makes perfect!", 30)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Result.Score != 90 {
		t.Fatalf("expected 90, got %v", eval.Result.Score)
	}
	if len(eval.Result.MissedWords) != 1 || eval.Result.MissedWords[0] != "english" {
		t.Fatalf("unexpected missed words %v", eval.Result.MissedWords)
	}
	if eval.XPPreview != 270 {
		t.Fatalf("expected xp preview 270, got %d", eval.XPPreview)
	}
	if eval.Feedback == "" || len(eval.Analysis) != 10 {
		t.Fatalf("unexpected evaluation: %+v", eval)
	}

	snap, err := env.store.LoadSnapshot(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snap.TotalPractices != 0 {
		t.Fatalf("evaluate must not persist progress")
	}
}

func TestEvaluateUsesMaterialDuration(t *testing.T) {
	env := newTestEnv(t, nil)
	m := createMaterial(t, env.svc)
	eval, err := env.svc.Evaluate(context.Background(), m.ID, m.Text(), 0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.DurationSeconds != 4 {
		t.Fatalf("expected material duration 4s, got %d", eval.DurationSeconds)
	}
	if eval.XPPreview != progression.XPGain(100, 4) {
		t.Fatalf("unexpected xp preview %d", eval.XPPreview)
	}
}

type failingWriter struct{}

func (failingWriter) Write(context.Context, feedback.Input) (string, error) {
	return "", errors.New("backend down")
}

func TestEvaluateFallsBackToTemplateFeedback(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Feedback = failingWriter{} })
	m := createMaterial(t, env.svc)
	eval, err := env.svc.Evaluate(context.Background(), m.ID, m.Text(), 10)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := feedback.Compose(feedback.Input{Result: eval.Result})
	if eval.Feedback != want {
		t.Fatalf("expected template feedback %q, got %q", want, eval.Feedback)
	}
}

func TestEvaluateUnknownMaterial(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.svc.Evaluate(context.Background(), "missing", "hello", 10)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitFirstPractice(t *testing.T) {
	env := newTestEnv(t, nil)
	m := createMaterial(t, env.svc)

	sub, err := env.svc.Submit(context.Background(), "u1", m.ID, m.Text(), 30)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.XPGained() != 300 || sub.Snapshot.TotalXP != 300 {
		t.Fatalf("expected 300 xp, got %d/%d", sub.XPGained(), sub.Snapshot.TotalXP)
	}
	if sub.Snapshot.Level != 3 || !sub.LeveledUp {
		t.Fatalf("expected level up to 3, got %d (%v)", sub.Snapshot.Level, sub.LeveledUp)
	}
	if sub.Snapshot.CurrentStreak != 1 || sub.Goal.CompletedCount != 1 || sub.Goal.TargetCount != 5 {
		t.Fatalf("unexpected snapshot %+v", sub.Snapshot)
	}
	var types []string
	for _, a := range sub.Unlocked {
		types = append(types, a.Type)
	}
	want := []string{progression.FirstPractice, progression.PerfectScore, progression.HighScorer}
	if len(types) != len(want) {
		t.Fatalf("unexpected unlocks %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("unexpected unlocks %v", types)
		}
	}
	if sub.Log.Feedback != sub.Feedback || sub.Log.UserTranscript != m.Text() {
		t.Fatalf("log must carry transcript and feedback: %+v", sub.Log)
	}
}

func TestRecordRejectsInvalidInputWithoutSideEffects(t *testing.T) {
	env := newTestEnv(t, nil)
	cases := []Attempt{
		{MaterialID: "m", Score: 100.5, DurationSeconds: 10},
		{MaterialID: "m", Score: -1, DurationSeconds: 10},
		{MaterialID: "m", Score: 50, DurationSeconds: -5},
		{Score: 50, DurationSeconds: 5},
	}
	for _, a := range cases {
		if _, err := env.svc.Record(context.Background(), "u1", a); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", a, err)
		}
	}
	snap, err := env.store.LoadSnapshot(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snap.TotalPractices != 0 || snap.TotalXP != 0 {
		t.Fatalf("expected untouched snapshot, got %+v", snap)
	}
}

func TestConcurrentRecordsDoNotLoseUpdates(t *testing.T) {
	env := newTestEnv(t, nil)
	const n = 12
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Record(context.Background(), "u1", Attempt{MaterialID: "m", Score: 50, DurationSeconds: 10})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	snap, err := env.store.LoadSnapshot(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snap.TotalPractices != n || snap.TotalXP != n*50 || snap.DailyGoal.CompletedCount != n {
		t.Fatalf("lost updates: %+v", snap)
	}
	achs, err := env.store.ListAchievements(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list achievements: %v", err)
	}
	if len(achs) != 2 {
		t.Fatalf("expected first_practice and practice_10 once each, got %d", len(achs))
	}
}

type brokenStore struct {
	*store.Store
}

func (brokenStore) LoadSnapshot(context.Context, string) (model.ProgressionSnapshot, error) {
	return model.ProgressionSnapshot{}, errors.New("disk on fire")
}

func TestOverviewDegradesOnStoreError(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := New(Options{Store: brokenStore{env.store}, Now: func() time.Time { return fixedNow }, Logger: zerolog.Nop(), DegradeOnStoreError: true})
	report, err := svc.Overview(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("expected degraded report, got %v", err)
	}
	if !report.Degraded || report.Level.Level != 1 || report.Goal.TargetCount != progression.DefaultDailyTarget {
		t.Fatalf("unexpected degraded report %+v", report)
	}

	strict := New(Options{Store: brokenStore{env.store}, Logger: zerolog.Nop()})
	if _, err := strict.Overview(context.Background(), "u1", 10); err == nil {
		t.Fatalf("expected error without degradation")
	}
}

func TestOverviewAfterPractice(t *testing.T) {
	env := newTestEnv(t, nil)
	m := createMaterial(t, env.svc)
	if _, err := env.svc.Submit(context.Background(), "u1", m.ID, "practice makes", 20); err != nil {
		t.Fatalf("submit: %v", err)
	}
	report, err := env.svc.Overview(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if report.Degraded || report.Snapshot.TotalPractices != 1 || len(report.Logs) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Goal.CompletedCount != 1 {
		t.Fatalf("expected today's goal, got %+v", report.Goal)
	}
}

func TestDeleteMaterialRemovesAudio(t *testing.T) {
	env := newTestEnv(t, nil)
	m := createMaterial(t, env.svc)

	if err := env.svc.DeleteMaterial(context.Background(), m.ID, "someone-else"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if err := env.svc.DeleteMaterial(context.Background(), m.ID, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(m.AudioPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected audio removed, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestTranscribeSurfacesFailures(t *testing.T) {
	env := newTestEnv(t, nil)
	if _, err := env.svc.Transcribe(context.Background(), bytes.NewReader(nil)); !errors.Is(err, speech.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	if _, err := env.svc.Transcribe(context.Background(), failingReader{}); !errors.Is(err, speech.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	text, err := env.svc.Transcribe(context.Background(), bytes.NewReader([]byte("audio")))
	if err != nil || text == "" {
		t.Fatalf("expected transcript, got %q, %v", text, err)
	}
}
