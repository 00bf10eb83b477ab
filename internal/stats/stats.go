package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/shadow/internal/model"
	"github.com/verte-zerg/shadow/internal/progression"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	barWidth            = 20
	trendWindow         = 5
)

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// ProgressBar renders fraction in [0,1] as a fixed width bar.
func ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(min(max(fraction, 0), 1) * float64(width)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// TerminalWidth returns the stdout width or a fallback.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderSummary prints level, streak, totals and the daily goal.
func RenderSummary(w io.Writer, r Report, width int) error {
	snap := r.Snapshot
	lines := []string{"Summary"}
	if r.Degraded {
		lines = append(lines, "(progress unavailable; showing defaults)")
	}
	levelLine := fmt.Sprintf("Level: %d  XP: %d", r.Level.Level, snap.TotalXP)
	if r.Level.Max {
		levelLine += "  (max level)"
	} else {
		levelLine += fmt.Sprintf("  %s %d/%d", ProgressBar(r.Level.Fraction(snap.TotalXP), barWidth), snap.TotalXP, r.Level.Ceiling)
	}
	lines = append(lines,
		levelLine,
		fmt.Sprintf("Streak: %d days (longest %d)", snap.CurrentStreak, snap.LongestStreak),
		fmt.Sprintf("Practices: %d  Time: %s", snap.TotalPractices, FormatDuration(snap.TotalTimeSeconds)),
		fmt.Sprintf("Average score: %.2f", snap.AverageScore),
		goalLine(r.Goal),
	)
	if scores := r.Scores(); len(scores) > 1 {
		if width <= 0 {
			width = TerminalWidth()
		}
		limit := max(width-len("Trend: "), 1)
		if len(scores) > limit {
			scores = scores[len(scores)-limit:]
		}
		lines = append(lines, "Trend: "+Sparkline(MovingAverage(scores, trendWindow)))
	}
	return writeLines(w, append(lines, ""))
}

func goalLine(goal model.DailyGoal) string {
	status := ""
	if goal.Done() {
		status = "  done"
	}
	return fmt.Sprintf("Daily goal: %d/%d%s", goal.CompletedCount, goal.TargetCount, status)
}

// RenderGoal prints the daily goal of the report.
func RenderGoal(w io.Writer, r Report) error {
	fraction := 0.0
	if r.Goal.TargetCount > 0 {
		fraction = float64(r.Goal.CompletedCount) / float64(r.Goal.TargetCount)
	}
	return writeLines(w, []string{
		fmt.Sprintf("%s  %s", r.Goal.Date.Format(model.DateLayout), goalLine(r.Goal)),
		ProgressBar(fraction, barWidth),
	})
}

// RenderAchievements prints the catalog with unlock state.
func RenderAchievements(w io.Writer, unlocked []model.Achievement) error {
	byType := make(map[string]model.Achievement, len(unlocked))
	for _, a := range unlocked {
		byType[a.Type] = a
	}
	rows := make([][]string, 0, len(progression.Catalog()))
	for _, def := range progression.Catalog() {
		when := "locked"
		if a, ok := byType[def.Type]; ok {
			when = a.UnlockedAt.Format(model.DateLayout)
		}
		rows = append(rows, []string{def.Icon, def.Title, def.Description, when})
	}
	lines := []string{fmt.Sprintf("Achievements (%d/%d)", len(byType), len(rows))}
	lines = append(lines, formatTable([]string{"", "Title", "Description", "Unlocked"}, rows, nil)...)
	return writeLines(w, append(lines, ""))
}

// RenderHistory prints practice logs newest first.
func RenderHistory(w io.Writer, logs []model.PracticeLog) error {
	if len(logs) == 0 {
		_, err := fmt.Fprintln(w, "No practice found.")
		return err
	}
	rows := make([][]string, 0, len(logs))
	for _, log := range logs {
		rows = append(rows, []string{
			log.CreatedAt.Local().Format("2006-01-02 15:04"),
			shortID(log.MaterialID),
			fmt.Sprintf("%.2f", log.Score),
			FormatDuration(log.DurationSeconds),
			fmt.Sprintf("+%d", log.XPGained),
			fmt.Sprintf("%d", len(log.MissedWords)),
		})
	}
	lines := []string{"History"}
	lines = append(lines, formatTable(
		[]string{"When", "Material", "Score", "Time", "XP", "Missed"},
		rows,
		map[int]bool{2: true, 3: true, 4: true, 5: true},
	)...)
	return writeLines(w, append(lines, ""))
}

// RenderMissedWords prints the most frequently missed words.
func RenderMissedWords(w io.Writer, logs []model.PracticeLog, n int) error {
	top := TopMissedWords(logs, n)
	if len(top) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(top))
	for _, wc := range top {
		rows = append(rows, []string{wc.Word, fmt.Sprintf("%d", wc.Count)})
	}
	lines := []string{"Most missed words"}
	lines = append(lines, formatTable([]string{"Word", "Times"}, rows, map[int]bool{1: true})...)
	return writeLines(w, append(lines, ""))
}

// FormatDuration renders seconds as h:mm:ss or m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		return fmt.Sprintf("-%s", FormatDuration(-seconds))
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
