package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shadow/internal/model"
	"github.com/verte-zerg/shadow/internal/practice"
	"github.com/verte-zerg/shadow/internal/stats"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func printMaterial(w io.Writer, m model.Material) error {
	lines := []string{
		headingStyle.Render(m.Title),
		mutedStyle.Render(fmt.Sprintf("%s  %s  %s", m.ID, m.Difficulty, stats.FormatDuration(int(m.DurationSeconds+0.5)))),
	}
	if m.Description != "" {
		lines = append(lines, m.Description)
	}
	lines = append(lines, "")
	for _, s := range m.Sentences {
		lines = append(lines, fmt.Sprintf("%2d  %6.2f-%6.2f  %s", s.SequenceOrder+1, s.StartTime, s.EndTime, s.Text))
	}
	return writeOut(w, lines)
}

func printMaterialList(w io.Writer, list []model.MaterialSummary) error {
	if len(list) == 0 {
		return writeOut(w, []string{"No materials found."})
	}
	lines := make([]string, 0, len(list))
	for _, m := range list {
		best := "-"
		if m.BestScore != nil {
			best = fmt.Sprintf("%.1f", *m.BestScore)
		}
		lines = append(lines, fmt.Sprintf("%s  %-12s  %5s  %3dx  best %5s  %s",
			m.ID, m.Difficulty, stats.FormatDuration(int(m.DurationSeconds+0.5)), m.PracticeCount, best, m.Title))
	}
	return writeOut(w, lines)
}

func printEvaluation(w io.Writer, e practice.Evaluation) error {
	res := e.Result
	lines := []string{
		headingStyle.Render(fmt.Sprintf("Score: %.2f%%", res.Score)),
		fmt.Sprintf("Matched %d of %d words", res.MatchedCount, res.TotalExpectedWords),
	}
	if len(res.MissedWords) > 0 {
		lines = append(lines, badStyle.Render("Missed: "+strings.Join(res.MissedWords, ", ")))
	}
	if len(res.ExtraWords) > 0 {
		lines = append(lines, mutedStyle.Render("Extra: "+strings.Join(res.ExtraWords, ", ")))
	}
	lines = append(lines, "", e.Feedback, "")
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("Worth %d XP for %s of practice.", e.XPPreview, stats.FormatDuration(e.DurationSeconds))))
	return writeOut(w, lines)
}

func printSubmission(w io.Writer, s practice.Submission) error {
	if err := printEvaluation(w, s.Evaluation); err != nil {
		return err
	}
	snap := s.Snapshot
	lines := []string{
		"",
		goodStyle.Render(fmt.Sprintf("+%d XP", s.XPGained())) + fmt.Sprintf("  total %d  level %d", snap.TotalXP, s.Level.Level),
		fmt.Sprintf("Streak: %d days  Goal: %d/%d", snap.CurrentStreak, s.Goal.CompletedCount, s.Goal.TargetCount),
	}
	if s.LeveledUp {
		lines = append(lines, goodStyle.Render(fmt.Sprintf("Level up! You reached level %d.", s.Level.Level)))
	}
	if s.GoalJustCompleted() {
		lines = append(lines, goodStyle.Render("Daily goal complete."))
	}
	for _, a := range s.Unlocked {
		lines = append(lines, goodStyle.Render(fmt.Sprintf("%s Achievement unlocked: %s", a.Icon, a.Title)))
	}
	return writeOut(w, lines)
}

func writeOut(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
